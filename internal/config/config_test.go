package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimingFor(t *testing.T) {
	tests := []struct {
		fps  int
		want Timing
	}{
		{30, Timing{FPS: 30, Typing: 45, Display: 60, Transition: 15, Intro: 30, Outro: 60}},
		{60, Timing{FPS: 60, Typing: 90, Display: 120, Transition: 30, Intro: 60, Outro: 120}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimingFor(tt.fps))
	}
}

func TestSecondsToFrames(t *testing.T) {
	tests := []struct {
		seconds float64
		fps     int
		want    int
	}{
		{4, 30, 120},
		{1.1, 30, 33},
		{1.01, 30, 31},
		{0.01, 30, 1},
		{0, 30, 0},
		{-2, 30, 0},
		{2.5, 60, 150},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SecondsToFrames(tt.seconds, tt.fps), "%v s @ %d", tt.seconds, tt.fps)
	}
}

func TestSectionDefaultSeconds(t *testing.T) {
	s, ok := SectionDefaultSeconds("bullet_list")
	assert.True(t, ok)
	assert.Equal(t, 6.0, s)

	s, ok = SectionDefaultSeconds("foo")
	assert.False(t, ok)
	assert.Equal(t, 4.0, s)

	s, ok = SectionDefaultSeconds("Bullet_List")
	assert.False(t, ok, "tags match exactly")
	assert.Equal(t, 4.0, s)
}

func TestResolutionFor(t *testing.T) {
	tests := []struct {
		format  Format
		quality Quality
		w, h    int
	}{
		{FormatLandscape, QualityHD, 1280, 720},
		{FormatLandscape, QualityFHD, 1920, 1080},
		{FormatLandscape, Quality4K, 3840, 2160},
		{FormatLandscape, QualitySD, 854, 480},
		{FormatStory, QualityFHD, 1080, 1920},
		{FormatSquare, Quality2K, 1440, 1440},
		{FormatPortrait, QualityHD, 720, 900},
	}
	for _, tt := range tests {
		w, h, err := ResolutionFor(tt.format, tt.quality)
		require.NoError(t, err)
		assert.Equal(t, tt.w, w, "%s/%s", tt.format, tt.quality)
		assert.Equal(t, tt.h, h, "%s/%s", tt.format, tt.quality)
	}

	_, _, err := ResolutionFor("cinema", QualityHD)
	assert.Error(t, err)
}

func TestResolutionsTableIsComplete(t *testing.T) {
	rows := Resolutions()
	assert.Len(t, rows, 20)
	for _, r := range rows {
		assert.Zero(t, r.Width%2)
		assert.Zero(t, r.Height%2)
	}
	assert.Equal(t, QualitySD, rows[0].Quality)
	assert.Equal(t, Quality4K, rows[4].Quality)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.FPS = 24
	cfg.Codec = "mpeg2"
	cfg.CRF = 90
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fps")
	assert.Contains(t, err.Error(), "codec")
	assert.Contains(t, err.Error(), "crf")
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "render.toml")
	data := "fps = 60\nformat = \" Story \"\nquality = \"FHD\"\ncrf = 18\nworkers = 0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.FPS)
	assert.Equal(t, FormatStory, cfg.Format)
	assert.Equal(t, QualityFHD, cfg.Quality)
	assert.Equal(t, 18, cfg.CRF)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, CodecH264, cfg.Codec)
	require.NoError(t, cfg.Validate())

	w, h, err := cfg.Resolution()
	require.NoError(t, err)
	assert.Equal(t, 1080, w)
	assert.Equal(t, 1920, h)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
