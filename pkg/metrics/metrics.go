// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demony_ledger_operations_total",
			Help: "Ledger operations by outcome",
		},
		[]string{"operation", "result"},
	)

	gatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "demony_gateway_request_duration_seconds",
			Help:    "Payment gateway call latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 15},
		},
		[]string{"provider", "method", "result"},
	)

	profitCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "demony_profit_credited_minor_units_total",
			Help: "Profit credited to investor wallets, in minor units",
		},
	)
)

// Result classifies err into a low-cardinality label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrNotPending):
		return "not_pending"
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return "gateway_unavailable"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBelowMinimum):
		return "invalid"
	default:
		return "error"
	}
}

// ObserveLedger counts one ledger operation.
func ObserveLedger(operation string, err error) {
	ledgerOperations.WithLabelValues(operation, Result(err)).Inc()
}

// ObserveGateway records the latency of one gateway call.
func ObserveGateway(provider, method string, start time.Time, err error) {
	gatewayDuration.WithLabelValues(provider, method, Result(err)).Observe(time.Since(start).Seconds())
}

// AddProfitCredited adds amount to the credited-profit counter.
func AddProfitCredited(amount int64) {
	if amount > 0 {
		profitCredited.Add(float64(amount))
	}
}
