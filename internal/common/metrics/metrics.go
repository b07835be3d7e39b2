// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_attempts_total",
			Help: "Total number of registration attempts by terminal outcome",
		},
		[]string{"outcome"},
	)

	RegistrationGateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_gate_failures_total",
			Help: "Total number of registrations rejected, by gate and error code",
		},
		[]string{"gate", "error_code"},
	)

	IdentityProvisioningCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_provisioning_calls_total",
			Help: "Total number of identity provider calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	RegistrationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "registration_duration_seconds",
			Help: "Duration of registration processing in seconds",
		},
		[]string{"outcome"},
	)
)
