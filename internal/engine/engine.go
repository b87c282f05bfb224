// Package engine runs one render job: it lays out the timeline, resolves
// assets, composes frames on a worker pool and emits them to a sink in
// strict frame order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scenereel/internal/config"
	"github.com/ivlev/scenereel/internal/content"
	"github.com/ivlev/scenereel/internal/metrics"
	"github.com/ivlev/scenereel/internal/scene"
	"github.com/ivlev/scenereel/internal/source"
	"github.com/ivlev/scenereel/internal/system"
	"github.com/ivlev/scenereel/internal/timeline"
	"github.com/ivlev/scenereel/internal/video"
)

// ErrIncomplete is returned when a render stops before its last frame. The
// sink has been aborted.
var ErrIncomplete = errors.New("render incomplete")

// Render outcomes reported to metrics.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
	StatusFailed     = "failed"
)

// Progress is reported after every emitted frame.
type Progress struct {
	JobID string
	Frame int
	Total int
}

// Options carries a job's collaborators. Everything is optional.
type Options struct {
	Loader       source.Loader
	Logger       *zap.Logger
	Recorder     *metrics.Recorder
	Pool         *system.FramePool
	OnProgress   func(Progress)
	BenchmarkLog string // appended to when the config asks for stats
}

// Stats is the timing breakdown of a finished job.
type Stats struct {
	Total     time.Duration
	Assets    time.Duration
	Rendering time.Duration
	Encoding  time.Duration
}

// Result describes a job after Run returns.
type Result struct {
	JobID    string
	Frames   int
	Total    int
	Workers  int
	Warnings []scene.Warning
	Stats    Stats
}

// Job renders one project with one config.
type Job struct {
	ID      string
	cfg     config.Config
	project *content.Project
	opts    Options
	logger  *zap.Logger
}

// NewJob assigns the job an id.
func NewJob(cfg config.Config, p *content.Project, opts Options) *Job {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Pool == nil {
		opts.Pool = system.NewFramePool()
	}
	return &Job{
		ID:      id,
		cfg:     cfg,
		project: p,
		opts:    opts,
		logger:  logger.With(zap.String("component", "engine"), zap.String("job_id", id)),
	}
}

// fallbackObserver keeps a nil recorder from becoming a non-nil interface.
func (j *Job) fallbackObserver() timeline.FallbackObserver {
	if j.opts.Recorder == nil {
		return nil
	}
	return j.opts.Recorder
}

func (j *Job) failureObserver() source.FailureObserver {
	if j.opts.Recorder == nil {
		return nil
	}
	return j.opts.Recorder
}

func (j *Job) finish(status string) {
	if j.opts.Recorder != nil {
		j.opts.Recorder.RenderFinished(status)
	}
}

// Timeline validates the project and lays it out at the job's fps.
func (j *Job) Timeline() (*timeline.Timeline, error) {
	return timeline.NewBuilder(j.logger, j.fallbackObserver()).Build(j.project, j.cfg.FPS)
}

// HeroRefs lists the image references a project needs before rendering.
func HeroRefs(p *content.Project) []string {
	var refs []string
	for _, s := range p.Sections {
		if s.Type == content.SectionImageHero && s.Image != nil && s.Image.URL != "" {
			refs = append(refs, s.Image.URL)
		}
	}
	return refs
}

// Run renders every frame into sink. On success the sink is closed; on any
// failure it is aborted. Cancelling ctx stops the job between frames with
// ErrIncomplete.
func (j *Job) Run(ctx context.Context, sink video.Sink) (Result, error) {
	start := time.Now()
	res := Result{JobID: j.ID}

	fail := func(status string, err error) (Result, error) {
		if aerr := sink.Abort(); aerr != nil {
			j.logger.Warn("abort sink", zap.Error(aerr))
		}
		j.finish(status)
		res.Stats.Total = time.Since(start)
		return res, err
	}
	incomplete := func(cause error) (Result, error) {
		j.logger.Warn("render stopped", zap.Int("frames", res.Frames), zap.Int("total", res.Total), zap.Error(cause))
		return fail(StatusIncomplete, fmt.Errorf("%w after %d of %d frames: %w", ErrIncomplete, res.Frames, res.Total, cause))
	}

	comp, _, err := j.prepare(ctx, &res)
	if err != nil {
		if ctx.Err() != nil {
			return incomplete(err)
		}
		return fail(StatusFailed, err)
	}
	width, height := comp.Bounds().Dx(), comp.Bounds().Dy()

	res.Workers = system.RecommendWorkers(j.cfg.Workers, int64(width)*int64(height)*4)
	j.logger.Info("render started",
		zap.Int("frames", res.Total),
		zap.Int("fps", j.cfg.FPS),
		zap.String("resolution", fmt.Sprintf("%dx%d", width, height)),
		zap.Int("workers", res.Workers),
	)

	// Frames are rendered in batches in parallel and emitted in order, so at
	// most one batch of buffers is in flight.
	batch := res.Workers * 2
	bounds := comp.Bounds()
	for first := 0; first < res.Total; first += batch {
		if err := ctx.Err(); err != nil {
			return incomplete(err)
		}
		n := min(batch, res.Total-first)
		renderStart := time.Now()
		frames, err := j.renderBatch(ctx, comp, bounds, first, n, res.Workers)
		res.Stats.Rendering += time.Since(renderStart)
		if err != nil {
			return incomplete(err)
		}

		writeStart := time.Now()
		for i, frame := range frames {
			if err := ctx.Err(); err != nil {
				j.release(frames[i:])
				return incomplete(err)
			}
			if err := sink.WriteFrame(first+i, frame); err != nil {
				j.release(frames[i:])
				return fail(StatusFailed, fmt.Errorf("write frame %d: %w", first+i, err))
			}
			j.opts.Pool.Put(frame)
			res.Frames++
			if j.opts.Recorder != nil {
				j.opts.Recorder.FrameRendered()
			}
			if j.opts.OnProgress != nil {
				j.opts.OnProgress(Progress{JobID: j.ID, Frame: res.Frames, Total: res.Total})
			}
		}
		res.Stats.Encoding += time.Since(writeStart)
	}

	closeStart := time.Now()
	if err := sink.Close(); err != nil {
		return fail(StatusFailed, fmt.Errorf("finalize output: %w", err))
	}
	res.Stats.Encoding += time.Since(closeStart)
	res.Stats.Total = time.Since(start)
	j.finish(StatusComplete)

	j.logger.Info("render finished",
		zap.Int("frames", res.Frames),
		zap.Duration("elapsed", res.Stats.Total),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int64("buffers", j.opts.Pool.Allocated()),
	)
	if j.cfg.ShowStats && j.opts.BenchmarkLog != "" {
		if err := j.appendBenchmark(res); err != nil {
			j.logger.Warn("write benchmark log", zap.String("path", j.opts.BenchmarkLog), zap.Error(err))
		}
	}
	return res, nil
}

// prepare validates the inputs, lays out the timeline, resolves assets and
// builds the compositor.
func (j *Job) prepare(ctx context.Context, res *Result) (*scene.Compositor, *timeline.Timeline, error) {
	if err := j.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	width, height, err := j.cfg.Resolution()
	if err != nil {
		return nil, nil, err
	}
	tl, err := j.Timeline()
	if err != nil {
		return nil, nil, err
	}
	res.Total = tl.TotalFrames

	assetStart := time.Now()
	var assets scene.Assets
	if refs := HeroRefs(j.project); len(refs) > 0 {
		loader := j.opts.Loader
		if loader == nil {
			loader = source.NewFileLoader("", j.cfg.PDFDPI)
		}
		timeout := time.Duration(j.cfg.AssetTimeout * float64(time.Second))
		gate := source.NewGate(loader, timeout, j.logger, j.failureObserver())
		if err := gate.Resolve(ctx, refs); err != nil {
			return nil, nil, err
		}
		assets = gate
	}
	res.Stats.Assets = time.Since(assetStart)

	opts := []scene.Option{scene.WithLogger(j.logger), scene.WithBuffers(j.opts.Pool)}
	if j.opts.Recorder != nil {
		opts = append(opts, scene.WithObserver(j.opts.Recorder))
	}
	if assets != nil {
		opts = append(opts, scene.WithAssets(assets))
	}
	comp := scene.New(j.project, tl, width, height, opts...)
	res.Warnings = comp.Warnings()
	return comp, tl, nil
}

// Preview renders the single frame at index, clamped to the timeline.
func (j *Job) Preview(ctx context.Context, frame int) (*image.RGBA, Result, error) {
	res := Result{JobID: j.ID, Workers: 1}
	comp, tl, err := j.prepare(ctx, &res)
	if err != nil {
		return nil, res, err
	}
	img := image.NewRGBA(comp.Bounds())
	comp.Render(img, tl.Clamp(frame))
	res.Frames = 1
	return img, res, nil
}

func (j *Job) renderBatch(ctx context.Context, comp *scene.Compositor, bounds image.Rectangle, first, n, workers int) ([]*image.RGBA, error) {
	frames := make([]*image.RGBA, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buf := j.opts.Pool.Get(bounds)
			comp.Render(buf, first+i)
			frames[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		j.release(frames)
		return nil, err
	}
	return frames, nil
}

func (j *Job) release(frames []*image.RGBA) {
	for _, f := range frames {
		if f != nil {
			j.opts.Pool.Put(f)
		}
	}
}

// Report is the human-readable performance summary.
func (r Result) Report(build string) string {
	fps := 0.0
	if s := r.Stats.Total.Seconds(); s > 0 {
		fps = float64(r.Frames) / s
	}
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Job: %s\n"+
			"Frames: %d/%d (workers %d)\n"+
			"Total Time: %.2fs\n"+
			"Assets: %.2fs\n"+
			"Rendering: %.2fs\n"+
			"Encoding: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"----------------------------\n",
		build, r.JobID, r.Frames, r.Total, r.Workers, r.Stats.Total.Seconds(),
		r.Stats.Assets.Seconds(), r.Stats.Rendering.Seconds(), r.Stats.Encoding.Seconds(), fps,
	)
}

func (j *Job) appendBenchmark(r Result) error {
	entry := fmt.Sprintf("[%s] Build: %s | Job: %s | Title: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs\n",
		time.Now().Format("2006-01-02 15:04:05"),
		j.cfg.BuildVersion,
		r.JobID,
		j.project.Title,
		r.Frames,
		r.Stats.Total.Seconds(),
		r.Stats.Rendering.Seconds(),
		r.Stats.Encoding.Seconds(),
	)
	f, err := os.OpenFile(j.opts.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(entry)
	return err
}
