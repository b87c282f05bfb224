package video

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFmpegArgs(t *testing.T) {
	s := &FFmpegSink{opts: FFmpegOptions{Encoder: "libx264", CRF: 23, FPS: 30, Width: 1280, Height: 720, Output: "out.mp4"}}
	args := s.Args()
	assert.Contains(t, args, "rawvideo")
	assert.Contains(t, args, "1280x720")
	assert.Equal(t, "out.mp4", args[len(args)-1])
	assert.Subset(t, args, []string{"-crf", "23", "-preset", "medium"})
}

func TestQualityArgs(t *testing.T) {
	assert.Equal(t, []string{"-cq", "19"}, QualityArgs("h264_nvenc", 19))
	assert.Equal(t, []string{"-b:v", "7250k"}, QualityArgs("h264_videotoolbox", 23))
	assert.Equal(t, []string{"-crf", "31", "-b:v", "0"}, QualityArgs("libvpx-vp9", 31))
}

func TestMemorySinkOrdering(t *testing.T) {
	s := &MemorySink{}
	frame := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, s.WriteFrame(0, frame))
	frame.Pix[0] = 7
	require.NoError(t, s.WriteFrame(1, frame))
	assert.Equal(t, uint8(0), s.Frames[0].Pix[0], "frames are copied")

	assert.ErrorIs(t, s.WriteFrame(3, frame), ErrOutOfOrder)
	assert.ErrorIs(t, s.WriteFrame(1, frame), ErrOutOfOrder)

	require.NoError(t, s.Abort())
	assert.False(t, s.Complete)
}

func TestPNGSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	s, err := NewPNGSink(dir)
	require.NoError(t, err)

	frame := image.NewRGBA(image.Rect(0, 0, 3, 2))
	require.NoError(t, s.WriteFrame(0, frame))
	require.NoError(t, s.WriteFrame(1, frame))

	f, err := os.Open(s.FramePath(1))
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Width)

	require.NoError(t, s.Abort())
	data, err := os.ReadFile(filepath.Join(dir, IncompleteMarker))
	require.NoError(t, err)
	assert.Contains(t, string(data), "2 frames")

	_, err = NewPNGSink(dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, IncompleteMarker))
	assert.True(t, os.IsNotExist(err))
}
