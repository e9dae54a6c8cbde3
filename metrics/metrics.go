package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// ResultSuccess is the label value reported for invocations
	// that completed successfully
	ResultSuccess = "success"

	// ResultFailure is the label value reported for invocations
	// that failed, either on preconditions or on the transport
	ResultFailure = "failure"
)

// Invocations collects prometheus metrics on the proxied
// invocations issued through an engine
type Invocations struct {
	total   *prometheus.CounterVec
	latency prometheus.Histogram
}

// NewInvocations creates the invocation collectors and registers
// them on the provided registerer
func NewInvocations(registerer prometheus.Registerer) (*Invocations, error) {
	c := &Invocations{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guild_gateway",
			Name:      "invocations_total",
			Help:      "Number of proxied invocations issued, by result.",
		}, []string{"result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "guild_gateway",
			Name:      "invocation_latency_seconds",
			Help:      "Latency of proxied invocations from submission to response.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if err := registerer.Register(c.total); err != nil {
		return nil, err
	}

	if err := registerer.Register(c.latency); err != nil {
		return nil, err
	}

	return c, nil
}

// Observe records the outcome of a single invocation
func (c *Invocations) Observe(result string, elapsed time.Duration) {
	c.total.WithLabelValues(result).Inc()
	c.latency.Observe(elapsed.Seconds())
}
