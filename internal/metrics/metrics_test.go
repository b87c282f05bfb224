package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg, nil)
	require.NoError(t, err)

	r.Fallback("section_type", "foo")
	r.Fallback("section_type", "foo")
	r.Fallback("display_mode", "carousel")
	r.FrameRendered()
	r.AssetFailure("timeout")
	r.RenderFinished("complete")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fallbacks.WithLabelValues("section_type", "foo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fallbacks.WithLabelValues("display_mode", "carousel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.framesRendered))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.assetFailures.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.renders.WithLabelValues("complete")))

	_, err = NewRecorder(reg, nil)
	assert.Error(t, err, "duplicate registration")
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg, nil)
	require.NoError(t, err)
	r.RenderFinished("incomplete")

	path := filepath.Join(t.TempDir(), "render.prom")
	require.NoError(t, WriteTextfile(path, reg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `scenereel_renders_total{status="incomplete"} 1`)
}
