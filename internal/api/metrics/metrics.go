// Package metrics defines and registers all custom Prometheus metrics for the
// library API. It is the single source of truth for metric names, labels, and
// help strings. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthEventsTotal counts persisted authentication events.
// Labels:
//   - kind: "login", "register" or "token_refresh"
//   - outcome: "success", "unauthenticated", "invalid_input", "conflict", "throttled" or "error"
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events written to the audit trail.",
	},
	[]string{"kind", "outcome"},
)

// AuditDroppedTotal counts audit events discarded because a worker queue was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of audit events dropped on a full worker queue.",
	},
)

// AuditErrorsTotal counts audit events that could not be persisted.
var AuditErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of audit events that failed to persist.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditPersistDuration measures how long writing one audit event takes.
var AuditPersistDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_persist_duration_seconds",
		Help:      "Duration of a single audit event insert.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Resource metrics ──────────────────────────────────────────────────────────

// ResourceOperationsTotal counts book and client operations served over HTTP.
// Labels:
//   - resource: "book" or "client"
//   - operation: "list", "get", "create", "update" or "delete"
//   - result: "ok" or the error class ("invalid_input", "not_found", "conflict", "error")
var ResourceOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resource_operations_total",
		Help:      "Total number of resource operations, by resource, operation and result.",
	},
	[]string{"resource", "operation", "result"},
)
