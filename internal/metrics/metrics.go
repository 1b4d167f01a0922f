// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_leads_created_total",
			Help: "Total number of leads created",
		},
	)

	leadCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_lead_commits_total",
			Help: "Total number of lead replace attempts by result",
		},
		[]string{"result"},
	)

	timelineEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_timeline_events_total",
			Help: "Total number of timeline events appended",
		},
		[]string{"category"},
	)

	draftOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_draft_sessions_total",
			Help: "Total number of draft edit sessions by outcome",
		},
		[]string{"outcome"},
	)
)

// Commit results.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Draft outcomes.
const (
	DraftOpened    = "opened"
	DraftSaved     = "saved"
	DraftCancelled = "cancelled"
	DraftFailed    = "failed"
)

func RecordLeadCreated() {
	leadsCreated.Inc()
}

func RecordLeadCommit(result string) {
	leadCommits.WithLabelValues(result).Inc()
}

func RecordTimelineEvent(category string) {
	timelineEvents.WithLabelValues(category).Inc()
}

func RecordDraft(outcome string) {
	draftOutcomes.WithLabelValues(outcome).Inc()
}
