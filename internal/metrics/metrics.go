// Package metrics defines the Prometheus metrics of the blog auth server.
// They register with the default registry on import and are served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog"

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "invalid_input" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SignupsTotal counts signups.
// Label:
//   - result: "success", "invalid_input", "email_taken" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// SessionValidationsTotal counts session checks.
// Label:
//   - result: "valid" or "invalid"
var SessionValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "session_validations_total",
		Help:      "Total number of session validations, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logout requests, including those without a session.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logouts_total",
		Help:      "Total number of logout requests.",
	},
)

// PasswordHashDuration measures bcrypt hashing time, which tracks the configured cost.
var PasswordHashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)
