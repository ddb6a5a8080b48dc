// Package metrics exports signature verification outcomes to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"xhub/internal/signature"
)

const namespace = "xhub"

// Recorder implements signature.Recorder on its own registry.
type Recorder struct {
	registry      *prometheus.Registry
	verifications *prometheus.CounterVec
	bodyBytes     prometheus.Histogram
}

// NewRecorder creates a recorder. With runtime set the Go and process
// collectors are registered as well.
func NewRecorder(runtime bool) *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Signature checks by outcome.",
		}, []string{"outcome"}),
		bodyBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "verified_body_bytes",
			Help:      "Size of request bodies buffered for digest computation.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}

	registry.MustRegister(r.verifications, r.bodyBytes)
	if runtime {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// Expose every label from the start so dashboards see zeros.
	for _, outcome := range []signature.Outcome{
		signature.OutcomeMissing,
		signature.OutcomeValid,
		signature.OutcomeInvalid,
		signature.OutcomeRejected,
	} {
		r.verifications.WithLabelValues(string(outcome))
	}

	return r
}

// RecordOutcome counts one verification outcome.
func (r *Recorder) RecordOutcome(outcome signature.Outcome) {
	r.verifications.WithLabelValues(string(outcome)).Inc()
}

// RecordBodySize observes the size of a buffered body.
func (r *Recorder) RecordBodySize(n int) {
	r.bodyBytes.Observe(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

var _ signature.Recorder = (*Recorder)(nil)
