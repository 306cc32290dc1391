// Package metrics defines and registers the custom Prometheus metrics for the
// dev console gateway. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init and
// exposed on /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devconsole"

// ── Gateway metrics ───────────────────────────────────────────────────────────

// SignInTokensIssuedTotal counts tokens handed out to operators.
// Label:
//   - mode: the serviced mode (currently always "ticket")
var SignInTokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_in_tokens_issued_total",
		Help:      "Total number of sign-in tokens issued through the dev console.",
	},
	[]string{"mode"},
)

// RequestErrorsTotal counts failed gateway requests by error kind.
// Label:
//   - kind: forbidden, unauthenticated, invalid_request, unsupported_mode,
//     not_found, misconfigured_dependency, dependency_error, internal
var RequestErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_errors_total",
		Help:      "Total number of dev console requests that ended in an error, by kind.",
	},
	[]string{"kind"},
)

// ── Identity provider metrics ─────────────────────────────────────────────────

// ProviderRequestDuration measures identity provider round trips.
// Labels:
//   - op: find_user_by_email, list_users, count_users, issue_sign_in_token
//   - outcome: ok, not_found, error
var ProviderRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of identity provider API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op", "outcome"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditRecordsTotal counts audit records by outcome.
// Label:
//   - result: "written", "dropped" (queue full), or "failed" (store error)
var AuditRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_records_total",
		Help:      "Total number of impersonation audit records, labelled by result.",
	},
	[]string{"result"},
)

// AuditQueueDepth tracks pending audit records per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
