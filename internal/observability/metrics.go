// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plateful_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// LikeRollbacks counts optimistic like toggles rolled back after a
	// rejected remote write.
	LikeRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plateful_like_rollbacks_total",
		Help: "Total number of like toggles rolled back after a failed write",
	})

	// LikeReconciliations counts displayed counts replaced by an
	// authoritative re-read after a confirmed write.
	LikeReconciliations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plateful_like_reconciliations_total",
		Help: "Total number of like counts reconciled from the store",
	})

	// ToggleGuardHits counts like toggles ignored because a toggle for the
	// same post/viewer pair was already in flight.
	ToggleGuardHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plateful_toggle_guard_hits_total",
		Help: "Total number of like toggles ignored by the re-entrancy guard",
	})

	// FeedEventsApplied counts push-channel post inserts merged into the feed.
	FeedEventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plateful_feed_events_total",
		Help: "Total number of feed insert events by outcome (applied or deduped)",
	}, []string{"outcome"})

	// DraftDiscards counts malformed draft payloads dropped on load.
	DraftDiscards = promauto.NewCounter(prometheus.CounterOpts{
		Name: "plateful_draft_discards_total",
		Help: "Total number of malformed drafts discarded on load",
	})
)

// InitMetrics creates the Prometheus middleware for the Fiber app.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
