package source

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{"images/a.png", Ref{Scheme: "file", Path: "images/a.png"}, false},
		{"file:///tmp/a.png", Ref{Scheme: "file", Path: "/tmp/a.png"}, false},
		{"deck.pdf#page=3", Ref{Scheme: "file", Path: "deck.pdf", Page: 2}, false},
		{"https://x.test/a.jpg", Ref{Scheme: "https", Path: "https://x.test/a.jpg"}, false},
		{"deck.pdf#page=0", Ref{}, true},
		{"ftp://x.test/a.png", Ref{}, true},
		{"  ", Ref{}, true},
	}
	for _, tt := range tests {
		got, err := ParseRef(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedAsset, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFileLoaderLocalAndRemote(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "dot.png"), 4, 3)

	l := NewFileLoader(dir, 0)
	img, err := l.Load(context.Background(), "dot.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dot.png" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "dot.png"))
	}))
	defer srv.Close()

	img, err = l.Load(context.Background(), srv.URL+"/dot.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = l.Load(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)

	_, err = l.Load(context.Background(), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedAsset)
}

func TestGateResolvesAndFallsBack(t *testing.T) {
	good := image.NewRGBA(image.Rect(0, 0, 2, 2))
	loader := &fakeLoader{images: map[string]image.Image{"good.png": good}}
	core, logs := observer.New(zap.WarnLevel)
	obs := &fakeFailures{}
	g := NewGate(loader, time.Second, zap.New(core), obs)

	require.NoError(t, g.Resolve(context.Background(), []string{"good.png", "bad.png", "good.png", ""}))
	assert.Equal(t, 2, loader.calls(), "duplicates are loaded once")

	img, ph := g.Image("good.png")
	assert.False(t, ph)
	assert.Same(t, good, img)

	img, ph = g.Image("bad.png")
	assert.True(t, ph)
	assert.Equal(t, Placeholder(), img)

	_, ph = g.Image("never-asked.png")
	assert.True(t, ph)

	assert.Equal(t, []string{"error"}, obs.reasons)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "bad.png", logs.All()[0].ContextMap()["url"])
	assert.Len(t, g.Assets(), 2)
}

func TestGateTimeoutUsesPlaceholder(t *testing.T) {
	loader := &fakeLoader{block: true}
	obs := &fakeFailures{}
	g := NewGate(loader, 20*time.Millisecond, nil, obs)

	start := time.Now()
	require.NoError(t, g.Resolve(context.Background(), []string{"slow.png"}))
	assert.Less(t, time.Since(start), 2*time.Second)

	_, ph := g.Image("slow.png")
	assert.True(t, ph)
	assert.Equal(t, []string{"timeout"}, obs.reasons)
}

func TestGateCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGate(&fakeLoader{block: true}, time.Minute, nil, nil)
	err := g.Resolve(ctx, []string{"a.png"})
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeLoader struct {
	mu     sync.Mutex
	n      int
	images map[string]image.Image
	block  bool
}

func (f *fakeLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	f.mu.Lock()
	f.n++
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if img, ok := f.images[ref]; ok {
		return img, nil
	}
	return nil, errors.New("boom")
}

func (f *fakeLoader) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

type fakeFailures struct {
	mu      sync.Mutex
	reasons []string
}

func (f *fakeFailures) AssetFailure(reason string) {
	f.mu.Lock()
	f.reasons = append(f.reasons, reason)
	f.mu.Unlock()
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.White)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestCappedDPI(t *testing.T) {
	// A4 portrait is 595x842pt.
	assert.Equal(t, 150, CappedDPI(595, 842, 150))
	assert.Equal(t, 350, CappedDPI(595, 842, 600))
	assert.Equal(t, 72, CappedDPI(MaxPageSide, 100, 300))
	assert.Equal(t, 150, CappedDPI(0, 0, 150))
}
