package engine

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/metrics"
	"github.com/ivlev/scenereel/internal/source"
	"github.com/ivlev/scenereel/internal/video"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Format = config.FormatSquare
	cfg.Quality = config.QualitySD
	cfg.Workers = 2
	return cfg
}

func chatProject(n int) *content.Project {
	p := &content.Project{Version: "1.0", Kind: content.KindChat, Messages: []content.Message{}}
	for i := range n {
		sender := content.SenderMe
		if i%2 == 1 {
			sender = content.SenderThem
		}
		p.Messages = append(p.Messages, content.Message{ID: string(rune('a' + i)), Text: "hello", Sender: sender})
	}
	return p
}

func counter(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestRunEmitsEveryFrameInOrder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg, nil)
	require.NoError(t, err)

	var seen []int
	job := NewJob(testConfig(), chatProject(0), Options{
		Recorder:   rec,
		OnProgress: func(p Progress) { seen = append(seen, p.Frame) },
	})
	sink := &video.MemorySink{}
	res, err := job.Run(context.Background(), sink)
	require.NoError(t, err)

	// Scenario A: intro plus outro only.
	assert.Equal(t, 90, res.Total)
	assert.Equal(t, 90, res.Frames)
	assert.Len(t, sink.Frames, 90)
	assert.True(t, sink.Complete)
	assert.Equal(t, job.ID, res.JobID)
	require.Len(t, seen, 90)
	for i, f := range seen {
		assert.Equal(t, i+1, f)
	}

	assert.Equal(t, 90.0, counter(t, reg, "scenereel_frames_rendered_total"))
	assert.Equal(t, 1.0, counter(t, reg, "scenereel_renders_total"))
	assert.Equal(t, 480, sink.Frames[0].Rect.Dx())
}

func TestRunCancelMarksIncomplete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := NewJob(testConfig(), chatProject(2), Options{
		OnProgress: func(p Progress) {
			if p.Frame == 10 {
				cancel()
			}
		},
	})
	sink := &video.MemorySink{}
	res, err := job.Run(ctx, sink)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 10, res.Frames)
	assert.Len(t, sink.Frames, 10)
	assert.True(t, sink.Aborted)
	assert.False(t, sink.Complete)
}

func TestRunRejectsInvalidProject(t *testing.T) {
	p := &content.Project{Kind: content.KindChat}
	sink := &video.MemorySink{}
	_, err := NewJob(testConfig(), p, Options{}).Run(context.Background(), sink)
	assert.ErrorIs(t, err, content.ErrInvalidProject)
	assert.True(t, sink.Aborted)
	assert.Empty(t, sink.Frames)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.FPS = 24
	sink := &video.MemorySink{}
	_, err := NewJob(cfg, chatProject(1), Options{}).Run(context.Background(), sink)
	assert.Error(t, err)
	assert.True(t, sink.Aborted)
}

func TestRunMissingAssetUsesPlaceholder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg, nil)
	require.NoError(t, err)

	p := &content.Project{Kind: content.KindExplainer, Sections: []content.Section{
		{ID: "h", Type: content.SectionImageHero, Headline: "Look", Duration: 0.5,
			Image: &content.Image{URL: "missing.png"}},
		{ID: "x", Type: "foo", Headline: "Fallback", Duration: 0.5},
	}}
	sink := &video.MemorySink{}
	res, err := NewJob(testConfig(), p, Options{
		Loader:   source.NewFileLoader(t.TempDir(), 72),
		Recorder: rec,
	}).Run(context.Background(), sink)
	require.NoError(t, err)

	assert.Equal(t, 30, res.Frames)
	assert.True(t, sink.Complete)
	assert.Equal(t, 1.0, counter(t, reg, "scenereel_asset_failures_total"))
	assert.Equal(t, 1.0, counter(t, reg, "scenereel_fallback_total"))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "section_type", res.Warnings[0].Kind)
}

func TestStatsAndBenchmarkLog(t *testing.T) {
	cfg := testConfig()
	cfg.ShowStats = true
	cfg.BuildVersion = "test"
	logPath := filepath.Join(t.TempDir(), "benchmark.log")

	job := NewJob(cfg, chatProject(0), Options{BenchmarkLog: logPath})
	res, err := job.Run(context.Background(), &video.MemorySink{})
	require.NoError(t, err)

	report := res.Report(cfg.BuildVersion)
	assert.Contains(t, report, "Frames: 90/90")
	assert.Contains(t, report, "Build: test")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), job.ID)
}

func TestHeroRefs(t *testing.T) {
	p := &content.Project{Sections: []content.Section{
		{Type: content.SectionImageHero, Image: &content.Image{URL: "a.png"}},
		{Type: content.SectionHeadline, Image: &content.Image{URL: "ignored.png"}},
		{Type: content.SectionImageHero},
		{Type: content.SectionImageHero, Image: &content.Image{URL: "deck.pdf#page=2"}},
	}}
	assert.Equal(t, []string{"a.png", "deck.pdf#page=2"}, HeroRefs(p))
}

type failingSink struct{ video.MemorySink }

func (s *failingSink) WriteFrame(index int, _ *image.RGBA) error {
	if index == 3 {
		return errors.New("disk full")
	}
	return nil
}

func TestRunSinkFailure(t *testing.T) {
	sink := &failingSink{}
	res, err := NewJob(testConfig(), chatProject(0), Options{}).Run(context.Background(), sink)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 3, res.Frames)
	assert.True(t, sink.Aborted)
}

type unfinishedSink struct{ video.MemorySink }

func (s *unfinishedSink) Close() error { return errors.New("moov atom not written") }

type brokenCloseSink struct{ *video.PNGSink }

func (s *brokenCloseSink) Close() error { return errors.New("sync failed") }

func TestRunFinalizeFailureAbortsSink(t *testing.T) {
	sink := &unfinishedSink{}
	res, err := NewJob(testConfig(), chatProject(0), Options{}).Run(context.Background(), sink)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "finalize output")
	assert.Equal(t, 90, res.Frames)
	assert.True(t, sink.Aborted)
	assert.False(t, sink.Complete)
}

func TestRunFinalizeFailureMarksPNGDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	png, err := video.NewPNGSink(dir)
	require.NoError(t, err)
	sink := &brokenCloseSink{PNGSink: png}

	_, err = NewJob(testConfig(), chatProject(0), Options{}).Run(context.Background(), sink)
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, video.IncompleteMarker))
}

func TestPreviewRendersOneFrame(t *testing.T) {
	p := &content.Project{Kind: content.KindExplainer, Sections: []content.Section{
		{ID: "a", Type: content.SectionHeadline, Headline: "One", Duration: 1},
		{ID: "b", Type: content.SectionQuote, Quote: "Two", Duration: 1},
	}}
	job := NewJob(testConfig(), p, Options{})

	img, res, err := job.Preview(context.Background(), 10_000)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 480, 480), img.Rect)
	assert.Equal(t, 60, res.Total)
	assert.Equal(t, 1, res.Frames)

	last, _, err := job.Preview(context.Background(), 59)
	require.NoError(t, err)
	assert.Equal(t, last.Pix, img.Pix, "out-of-range frames clamp to the last one")
}

func TestPreviewRejectsInvalidProject(t *testing.T) {
	_, _, err := NewJob(testConfig(), &content.Project{Kind: content.KindChat}, Options{}).Preview(context.Background(), 0)
	assert.ErrorIs(t, err, content.ErrInvalidProject)
}
