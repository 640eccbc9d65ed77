package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"equitystek/server/internal/domainerr"
)

const (
	OutcomeOK           = "ok"
	OutcomeInvalidInput = "invalid_input"
	OutcomePlanLimit    = "plan_limit"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Metrics holds the engine's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	valuations          *prometheus.CounterVec
	valuationWarnings   prometheus.Counter
	quotes              *prometheus.CounterVec
	revaluationBatches  *prometheus.CounterVec
	revaluationDuration prometheus.Histogram
	requests            *prometheus.CounterVec
}

// New creates the collectors and registers them on registerer. Passing nil
// uses the default registerer.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		valuations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equitystek",
			Name:      "valuations_total",
			Help:      "Property valuations computed, by outcome.",
		}, []string{"outcome"}),
		valuationWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "equitystek",
			Name:      "valuation_warnings_total",
			Help:      "Derived valuation figures clamped to zero.",
		}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equitystek",
			Name:      "price_quotes_total",
			Help:      "Subscription price quotes, by outcome.",
		}, []string{"outcome"}),
		revaluationBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equitystek",
			Name:      "revaluation_batches_total",
			Help:      "Revaluation batches processed, by outcome.",
		}, []string{"outcome"}),
		revaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "equitystek",
			Name:      "revaluation_batch_duration_seconds",
			Help:      "Time spent revaluing one batch including retries.",
			Buckets:   prometheus.DefBuckets,
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "equitystek",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
	}

	registerer.MustRegister(
		m.valuations,
		m.valuationWarnings,
		m.quotes,
		m.revaluationBatches,
		m.revaluationDuration,
		m.requests,
	)
	return m
}

// Outcome classifies err into one of the Outcome labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case domainerr.IsInvalidInput(err):
		return OutcomeInvalidInput
	case errors.Is(err, domainerr.ErrNotFound):
		return OutcomeNotFound
	}
	if _, ok := domainerr.AsPlanLimit(err); ok {
		return OutcomePlanLimit
	}
	return OutcomeError
}

func (m *Metrics) ObserveValuation(err error, warnings int) {
	if m == nil {
		return
	}
	m.valuations.WithLabelValues(Outcome(err)).Inc()
	if warnings > 0 {
		m.valuationWarnings.Add(float64(warnings))
	}
}

func (m *Metrics) ObserveQuote(err error) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(Outcome(err)).Inc()
}

func (m *Metrics) ObserveRevaluationBatch(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.revaluationBatches.WithLabelValues(Outcome(err)).Inc()
	m.revaluationDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
}
