package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransitionsTotal counts executed transition requests by outcome
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Name:      "transitions_total",
		Help:      "Status transition requests by from/to status and outcome",
	}, []string{"from", "to", "outcome"})

	// TransitionDuration observes transition execution time
	TransitionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "events",
		Name:      "transition_duration_seconds",
		Help:      "Time spent executing a status transition",
		Buckets:   prometheus.DefBuckets,
	})

	// IngestedTotal counts events created by the scraper ingest path
	IngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "events",
		Name:      "ingested_total",
		Help:      "Events ingested from the scraper",
	})

	// DBQueryDuration observes database query time by operation
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "events",
		Name:      "db_query_duration_seconds",
		Help:      "Database query time by operation",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// NotificationsTotal counts publish notifications fanned out by the worker
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "events",
		Name:      "publish_notifications_total",
		Help:      "Publish notifications sent by the worker, by result",
	}, []string{"result"})
)

// Transition outcome label values
const (
	OutcomeSuccess  = "success"
	OutcomeNoop     = "noop"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)
