// Package metrics exposes prometheus counters for fetch outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
)

const namespace = "services"

// Recorder tracks fetch outcomes on its own registry.
type Recorder struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Completed services fetches by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time from trigger to completion of services fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
	}
	r.registry.MustRegister(r.fetches, r.duration)
	return r
}

// Observe records one outcome.
func (r *Recorder) Observe(o domain.Outcome) {
	result := apicall.Kind(o.Err)
	r.fetches.WithLabelValues(result).Inc()
	if d := o.Duration(); d > 0 {
		r.duration.WithLabelValues(result).Observe(d.Seconds())
	}
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
