// Package metrics holds the Prometheus collectors for story generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bedtime"

// Recorder groups the collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	LLMCalls           *prometheus.CounterVec
	LLMCallDuration    *prometheus.HistogramVec
	DecodeFallbacks    *prometheus.CounterVec
	RefinementOutcomes *prometheus.CounterVec
	RefinementRounds   prometheus.Histogram
	FinalScore         prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers all collectors on reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: g,
		LLMCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "calls_total",
				Help:      "Total number of generation calls by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		LLMCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "call_duration_seconds",
				Help:      "Generation call duration in seconds",
				Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"stage"},
		),
		DecodeFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decode",
				Name:      "fallbacks_total",
				Help:      "Structured responses replaced by their default value",
			},
			[]string{"stage"},
		),
		RefinementOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "refinement",
				Name:      "outcomes_total",
				Help:      "Refinement loop terminal states",
			},
			[]string{"outcome"},
		),
		RefinementRounds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "refinement",
				Name:      "iterations",
				Help:      "Refinements performed per loop",
				Buckets:   prometheus.LinearBuckets(0, 1, 11),
			},
		),
		FinalScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "refinement",
				Name:      "final_score",
				Help:      "Overall score of the story returned by the loop",
				Buckets:   prometheus.LinearBuckets(0, 1, 11),
			},
		),
	}
}

// ObserveCall records one generation call.
func (r *Recorder) ObserveCall(stage string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.LLMCalls.WithLabelValues(stage, outcome).Inc()
	r.LLMCallDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveFallback records a decode fallback for stage.
func (r *Recorder) ObserveFallback(stage string) {
	if r == nil {
		return
	}
	r.DecodeFallbacks.WithLabelValues(stage).Inc()
}

// ObserveRefinement records a finished refinement loop.
func (r *Recorder) ObserveRefinement(outcome string, refinements int, score float64) {
	if r == nil {
		return
	}
	r.RefinementOutcomes.WithLabelValues(outcome).Inc()
	r.RefinementRounds.Observe(float64(refinements))
	r.FinalScore.Observe(score)
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil || r.gatherer == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
