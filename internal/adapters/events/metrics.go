package events

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quotedesk/internal/app"
)

const namespace = "quotedesk"

// Outcomes used as metric labels.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics holds the Prometheus collectors for quote workflows.
type Metrics struct {
	published    *prometheus.CounterVec
	saves        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
}

var _ app.StepObserver = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events published, by type.",
		}, []string{"type"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_saves_total",
			Help:      "Quote save attempts, by outcome.",
		}, []string{"outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_step_duration_seconds",
			Help:      "Duration of workflow steps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "step", "outcome"}),
	}

	for _, c := range []prometheus.Collector{m.published, m.saves, m.stepDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveStep implements app.StepObserver.
func (m *Metrics) ObserveStep(operation string, step app.ExecutionStep, d time.Duration, err error) {
	m.stepDuration.WithLabelValues(operation, string(step), outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) observeEvent(eventType string) {
	m.published.WithLabelValues(eventType).Inc()

	switch eventType {
	case app.EventQuoteSaved:
		m.saves.WithLabelValues(outcomeSuccess).Inc()
	case app.EventQuoteSaveFailed:
		m.saves.WithLabelValues(outcomeFailure).Inc()
	}
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}

	return outcomeSuccess
}
