package account

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for authOperations.
const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	// authOperations counts orchestrated auth operations by outcome.
	authOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bastion_auth_operations_total",
		Help: "Total number of auth operations by operation and result",
	}, []string{"op", "result"})

	// mailFailures counts best-effort email sends that failed.
	mailFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bastion_auth_mail_failures_total",
		Help: "Total number of failed transactional email sends",
	}, []string{"kind"})
)

func observe(op string, err error) {
	if err != nil {
		authOperations.WithLabelValues(op, resultError).Inc()
		return
	}
	authOperations.WithLabelValues(op, resultOK).Inc()
}
