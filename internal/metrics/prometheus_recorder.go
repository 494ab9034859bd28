package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	invocationDuration *prom.HistogramVec
	invocationOutcomes *prom.CounterVec
	failures           *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.invocationDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "stagehand",
			Name:      "invocation_duration_seconds",
			Help:      "Duration of handler invocations by stage and cache outcome",
			Buckets:   prom.DefBuckets,
		}, []string{"stage", "outcome"})
		pr.invocationOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "stagehand",
			Name:      "invocation_outcomes_total",
			Help:      "Invocation counts by stage and cache outcome",
		}, []string{"stage", "outcome"})
		pr.failures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "stagehand",
			Name:      "invocation_failures_total",
			Help:      "Failed invocations by stage",
		}, []string{"stage"})
		reg.MustRegister(pr.invocationDuration, pr.invocationOutcomes, pr.failures)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveInvocation(stage, outcome string, d time.Duration) {
	if p == nil || p.invocationDuration == nil {
		return
	}
	p.invocationDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
	p.invocationOutcomes.WithLabelValues(stage, outcome).Inc()
}

func (p *PrometheusRecorder) IncFailure(stage string) {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.WithLabelValues(stage).Inc()
}
