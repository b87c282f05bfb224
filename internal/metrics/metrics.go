// Package metrics counts render outcomes and degraded paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const namespace = "scenereel"

// Recorder owns the render counters. It satisfies timeline.FallbackObserver,
// scene.FallbackObserver and source.FailureObserver.
type Recorder struct {
	fallbacks      *prometheus.CounterVec
	framesRendered prometheus.Counter
	assetFailures  *prometheus.CounterVec
	renders        *prometheus.CounterVec

	logger *zap.Logger
}

// NewRecorder registers the counters on reg.
func NewRecorder(reg prometheus.Registerer, logger *zap.Logger) (*Recorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_total",
			Help:      "Unknown tags replaced by a default, by kind and value",
		}, []string{"kind", "value"}),
		framesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Frames emitted to a sink",
		}),
		assetFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_failures_total",
			Help:      "Assets replaced by a placeholder, by reason",
		}, []string{"reason"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Render jobs by final status",
		}, []string{"status"}),
		logger: logger.With(zap.String("component", "metrics")),
	}
	for _, c := range []prometheus.Collector{r.fallbacks, r.framesRendered, r.assetFailures, r.renders} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Fallback counts a default substituted for an unknown tag.
func (r *Recorder) Fallback(kind, value string) {
	r.fallbacks.WithLabelValues(kind, value).Inc()
}

// FrameRendered counts one emitted frame.
func (r *Recorder) FrameRendered() {
	r.framesRendered.Inc()
}

// AssetFailure counts an asset that degraded to a placeholder.
func (r *Recorder) AssetFailure(reason string) {
	r.assetFailures.WithLabelValues(reason).Inc()
}

// RenderFinished counts a job by status: complete, incomplete or failed.
func (r *Recorder) RenderFinished(status string) {
	r.renders.WithLabelValues(status).Inc()
	r.logger.Debug("render finished", zap.String("status", status))
}

// WriteTextfile dumps every metric gathered by g to path in the text
// exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
