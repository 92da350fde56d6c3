// Package metrics defines and registers the Prometheus metrics of the web
// tier. All metrics are registered with the default registry on import and
// served by promhttp at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "village_rental"

// BackendRequestDuration measures calls to the REST backend.
// Labels:
//   - endpoint: "health", "login", "register", "profile", ...
//   - result: "ok" or "error"
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the REST backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint", "result"},
)

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - action: "login" or "register"
//   - mode: "backend" or "demo"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total login and registration attempts, by outcome.",
	},
	[]string{"action", "mode", "result"},
)

// ForcedLogoutsTotal counts sessions dropped because the backend rejected the token.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total sessions cleared after the backend reported them expired.",
	},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - decision: "allow", "login" or "landing"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total route guard decisions, by outcome.",
	},
	[]string{"decision"},
)

// OperatingMode is 1 for the mode the process committed to at startup.
var OperatingMode = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "operating_mode",
		Help:      "Operating mode decided at startup (1 = active).",
	},
	[]string{"mode"},
)

// ObserveBackendRequest records one backend call.
func ObserveBackendRequest(endpoint string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	BackendRequestDuration.WithLabelValues(endpoint, result).Observe(d.Seconds())
}

// ObserveAuthAttempt records one login or registration attempt.
func ObserveAuthAttempt(action, mode string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AuthAttemptsTotal.WithLabelValues(action, mode, result).Inc()
}

// SetMode marks mode as the active one.
func SetMode(mode string) {
	for _, m := range []string{"backend", "demo"} {
		v := 0.0
		if m == mode {
			v = 1
		}
		OperatingMode.WithLabelValues(m).Set(v)
	}
}
