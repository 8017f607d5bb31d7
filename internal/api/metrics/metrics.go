// Package metrics defines the custom Prometheus metrics of the account
// service. Register exposes them on a registry.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accounts"

// ── Session metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts signup attempts.
// Label:
//   - result: "created", "conflict", "invalid" or "error"
var SignupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid" or "error"
var LoginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts completed logouts.
var LogoutsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of completed logouts.",
	},
)

// GateRejectionsTotal counts requests refused by the authentication gate.
// Label:
//   - reason: "missing_token", "unauthorized" or "error"
var GateRejectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_rejections_total",
		Help:      "Total number of requests rejected by the authentication gate.",
	},
	[]string{"reason"},
)

// ── Avatar metrics ────────────────────────────────────────────────────────────

// CleanupQueueDepth tracks jobs waiting in each cleanup worker channel.
var CleanupQueueDepth = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "avatar_cleanup_queue_depth",
		Help:      "Current number of avatar removals pending in each worker channel.",
	},
	[]string{"worker_id"},
)

// AvatarCleanupsTotal counts processed cleanup jobs.
// Label:
//   - result: "removed", "error" or "dropped"
var AvatarCleanupsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "avatar_cleanups_total",
		Help:      "Total number of avatar cleanup jobs, by result.",
	},
	[]string{"result"},
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		SignupsTotal,
		LoginsTotal,
		LogoutsTotal,
		GateRejectionsTotal,
		CleanupQueueDepth,
		AvatarCleanupsTotal,
	}
}

// Register adds every metric to reg. Metrics already registered there are
// skipped, so it is safe to call once per router.
func Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) && are.ExistingCollector == c {
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
