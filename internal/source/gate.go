package source

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FailureObserver is told about every asset that degraded to a placeholder.
type FailureObserver interface {
	AssetFailure(reason string)
}

// Asset is the resolved state of one reference.
type Asset struct {
	Ref         string
	Image       image.Image
	Placeholder bool
	Err         error
}

// Gate resolves every asset before any frame is scheduled. After Resolve
// returns, lookups never block and never fail.
type Gate struct {
	loader   Loader
	timeout  time.Duration
	parallel int
	logger   *zap.Logger
	observer FailureObserver

	mu     sync.RWMutex
	assets map[string]Asset
}

// NewGate returns a gate that waits at most timeout per asset. observer may
// be nil.
func NewGate(loader Loader, timeout time.Duration, logger *zap.Logger, observer FailureObserver) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		loader:   loader,
		timeout:  timeout,
		parallel: 4,
		logger:   logger.With(zap.String("component", "assets")),
		observer: observer,
		assets:   make(map[string]Asset),
	}
}

// Resolve loads refs concurrently. Individual failures and timeouts become
// placeholders; only cancellation of ctx is returned as an error.
func (g *Gate) Resolve(ctx context.Context, refs []string) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallel)
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		eg.Go(func() error {
			a := g.load(ctx, ref)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.mu.Lock()
			g.assets[ref] = a
			g.mu.Unlock()
			return nil
		})
	}
	return eg.Wait()
}

func (g *Gate) load(ctx context.Context, ref string) Asset {
	lctx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := g.loader.Load(lctx, ref)
		done <- result{img, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-lctx.Done():
		res.err = lctx.Err()
	}
	if res.err == nil && res.img != nil {
		return Asset{Ref: ref, Image: res.img}
	}
	if res.err == nil {
		res.err = errors.New("loader returned no image")
	}
	if ctx.Err() == nil {
		reason := failureReason(res.err)
		g.logger.Warn("asset unavailable, using placeholder",
			zap.String("url", ref), zap.String("reason", reason), zap.Error(res.err))
		if g.observer != nil {
			g.observer.AssetFailure(reason)
		}
	}
	return Asset{Ref: ref, Image: Placeholder(), Placeholder: true, Err: res.err}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrUnsupportedAsset):
		return "unsupported"
	default:
		return "error"
	}
}

// Image returns the resolved image for ref, or the placeholder when ref was
// never resolved or failed. placeholder reports which.
func (g *Gate) Image(ref string) (img image.Image, placeholder bool) {
	g.mu.RLock()
	a, ok := g.assets[ref]
	g.mu.RUnlock()
	if !ok {
		return Placeholder(), true
	}
	return a.Image, a.Placeholder
}

// Assets returns a snapshot of every resolved reference.
func (g *Gate) Assets() []Asset {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Asset, 0, len(g.assets))
	for _, a := range g.assets {
		out = append(out, a)
	}
	return out
}

var (
	placeholderOnce sync.Once
	placeholderImg  image.Image
)

// Placeholder is the shared stand-in for a missing image.
func Placeholder() image.Image {
	placeholderOnce.Do(func() {
		const w, h = 640, 360
		dc := gg.NewContext(w, h)
		dc.SetColor(color.NRGBA{R: 0x33, G: 0x3a, B: 0x48, A: 0xff})
		dc.Clear()
		dc.SetColor(color.NRGBA{R: 0x5b, G: 0x64, B: 0x75, A: 0xff})
		dc.SetLineWidth(4)
		dc.DrawRectangle(2, 2, w-4, h-4)
		dc.DrawLine(0, 0, w, h)
		dc.DrawLine(w, 0, 0, h)
		dc.Stroke()
		placeholderImg = dc.Image()
	})
	return placeholderImg
}
