// Package metrics exposes frame-loop counters to Prometheus.
//
// All methods are safe on a nil *Metrics, so components can be built without
// instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons and placement outcomes used as label values.
const (
	SkipNoPose = "no_pose"
	SkipRender = "render_error"
	SkipPanic  = "panic"

	Placed  = "placed"
	Ignored = "ignored"
	Failed  = "failed"
)

type Metrics struct {
	frames        prometheus.Counter
	skipped       *prometheus.CounterVec
	hits          prometheus.Histogram
	placements    *prometheus.CounterVec
	assetFailures *prometheus.CounterVec
	clamped       prometheus.Counter
	dropped       prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sparkxr_frames_total",
			Help: "Frame callbacks processed.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sparkxr_frames_skipped_total",
			Help: "Frames whose render was skipped, by reason.",
		}, []string{"reason"}),
		hits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sparkxr_hit_results",
			Help:    "Hit-test results per frame.",
			Buckets: []float64{0, 1, 2, 4, 8},
		}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sparkxr_placements_total",
			Help: "Placement commands applied, by outcome.",
		}, []string{"outcome"}),
		assetFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sparkxr_asset_failures_total",
			Help: "Asset loads that failed, by asset kind.",
		}, []string{"kind"}),
		clamped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sparkxr_animation_delta_clamped_total",
			Help: "Animation ticks whose delta was capped.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sparkxr_select_dropped_total",
			Help: "Select events dropped because the command queue was full or closed.",
		}),
	}
	for _, c := range []prometheus.Collector{m.frames, m.skipped, m.hits, m.placements, m.assetFailures, m.clamped, m.dropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Frame() {
	if m != nil {
		m.frames.Inc()
	}
}

func (m *Metrics) FrameSkipped(reason string) {
	if m != nil {
		m.skipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) HitResults(n int) {
	if m != nil {
		m.hits.Observe(float64(n))
	}
}

func (m *Metrics) Placement(outcome string) {
	if m != nil {
		m.placements.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) AssetFailure(kind string) {
	if m != nil {
		m.assetFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) DeltaClamped() {
	if m != nil {
		m.clamped.Inc()
	}
}

func (m *Metrics) SelectDropped() {
	if m != nil {
		m.dropped.Inc()
	}
}
