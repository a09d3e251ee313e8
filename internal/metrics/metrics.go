// GoodWatch - One-Pick Movie Night Decision Engine
// Copyright 2026 GoodWatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/goodwatch/goodwatch

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodwatch/goodwatch/internal/engine"
)

var (
	// Selection Metrics
	SelectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "selection_duration_seconds",
			Help:    "Duration of one selection pass in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"outcome"}, // "picks", "no_matches"
	)

	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "selections_total",
			Help: "Total number of selection passes",
		},
		[]string{"outcome"},
	)

	SelectionPickTier = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "selection_pick_tier",
			Help:    "Pick count the progressive tier policy produced",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	SelectionPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "selection_eligible_pool_size",
			Help:    "Number of candidates surviving the eligibility gates",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	CandidateRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_rejections_total",
			Help: "Total number of candidates rejected by the eligibility gates",
		},
		[]string{"reason"},
	)

	// Flow Metrics
	FlowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_transitions_total",
			Help: "Total number of interaction flow transitions taken",
		},
		[]string{"from", "event", "to"},
	)

	FlowIllegalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flow_illegal_transitions_total",
			Help: "Total number of rejected interaction flow transitions",
		},
		[]string{"from", "event"},
	)

	// Feedback and Learning Metrics
	FeedbackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_total",
			Help: "Total number of interaction events recorded",
		},
		[]string{"kind"},
	)

	MoodFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_table_fallbacks_total",
			Help: "Total number of selections served from the builtin mood table",
		},
		[]string{"mood"},
	)

	// Catalog Metrics
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB catalog queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB catalog query errors",
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Session Metrics
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of live sessions in the registry",
		},
	)

	SessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_swept_total",
			Help: "Total number of idle sessions removed by the sweeper",
		},
	)
)

// RecordSelectionResult records the tier and pool size of a completed
// selection pass. Outcome and latency flow through the observer.
func RecordSelectionResult(pickTier, poolSize int) {
	SelectionPickTier.Observe(float64(pickTier))
	SelectionPoolSize.Observe(float64(poolSize))
}

// RecordIllegalTransition records a transition the flow machine refused.
func RecordIllegalTransition(from engine.State, event engine.FlowEvent) {
	FlowIllegalTransitions.WithLabelValues(string(from), string(event)).Inc()
}

// RecordCatalogQuery records one catalog query.
func RecordCatalogQuery(operation string, duration time.Duration, err error) {
	CatalogQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		CatalogQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetActiveSessions sets the current registry occupancy.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}

// RecordSweep records idle sessions removed in one sweeper pass.
func RecordSweep(removed int) {
	SessionsSwept.Add(float64(removed))
}

// EngineObserver adapts the Prometheus collectors to the decision
// core's observer hooks.
type EngineObserver struct{}

// NewEngineObserver returns an observer backed by the package
// collectors.
func NewEngineObserver() *EngineObserver {
	return &EngineObserver{}
}

// SelectionDone records the outcome and latency of a selection pass.
func (*EngineObserver) SelectionDone(outcome engine.Outcome, latency time.Duration) {
	SelectionsTotal.WithLabelValues(outcome.String()).Inc()
	SelectionDuration.WithLabelValues(outcome.String()).Observe(latency.Seconds())
}

// CandidateRejected records n candidates filtered for the given reason.
func (*EngineObserver) CandidateRejected(reason engine.RejectReason, n int) {
	CandidateRejections.WithLabelValues(reason.String()).Add(float64(n))
}

// TransitionTaken records an accepted flow transition.
func (*EngineObserver) TransitionTaken(from engine.State, event engine.FlowEvent, to engine.State) {
	FlowTransitions.WithLabelValues(string(from), string(event), string(to)).Inc()
}

// MoodFallback records a selection served from the builtin mood table.
func (*EngineObserver) MoodFallback(mood engine.Mood) {
	MoodFallbacks.WithLabelValues(string(mood)).Inc()
}

// FeedbackApplied records one recorded interaction event.
func (*EngineObserver) FeedbackApplied(kind engine.EventKind) {
	FeedbackEvents.WithLabelValues(kind.String()).Inc()
}
