// Package metrics exposes moderation decisions as Prometheus metrics.
package metrics

import (
	"github.com/PancyStudios/CapsFridayBot/pkg/moderation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is a moderation.Observer that updates Prometheus collectors
type Recorder struct {
	Decisions     *prometheus.CounterVec
	Scores        prometheus.Histogram
	StorageErrors prometheus.Counter
	GateActive    prometheus.Gauge
}

// NewRecorder registers the collectors on reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "capsfriday_decisions_total",
			Help: "Messages handled by the moderation engine, by outcome",
		}, []string{"outcome"}),
		Scores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "capsfriday_score",
			Help:    "Capital letter percentage of scored messages",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		StorageErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "capsfriday_storage_errors_total",
			Help: "Messages dropped because the warning store failed",
		}),
		GateActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "capsfriday_gate_active",
			Help: "1 while the policy is enforced, 0 otherwise, as of the last message",
		}),
	}
}

// Observe implements moderation.Observer
func (r *Recorder) Observe(d moderation.Decision) {
	r.Decisions.WithLabelValues(string(d.Outcome)).Inc()

	switch d.Outcome {
	case moderation.OutcomeInactive:
		r.GateActive.Set(0)
		return
	case moderation.OutcomeWhitelisted:
		r.GateActive.Set(1)
		return
	case moderation.OutcomeAborted:
		r.StorageErrors.Inc()
	}

	r.GateActive.Set(1)
	r.Scores.Observe(d.Score)
}
