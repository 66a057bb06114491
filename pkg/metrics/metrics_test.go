package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "insufficient_funds", Result(fmt.Errorf("debit: %w", domain.ErrInsufficientFunds)))
	assert.Equal(t, "not_pending", Result(domain.ErrNotPending))
	assert.Equal(t, "invalid", Result(domain.ErrBelowMinimum))
	assert.Equal(t, "gateway_unavailable", Result(domain.ErrGatewayUnavailable))
	assert.Equal(t, "error", Result(errors.New("boom")))
}

func TestObserveLedger(t *testing.T) {
	before := testutil.ToFloat64(ledgerOperations.WithLabelValues("test_op", "ok"))
	ObserveLedger("test_op", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(ledgerOperations.WithLabelValues("test_op", "ok")))
}

func TestObserveGateway(t *testing.T) {
	ObserveGateway("mock", "verify", time.Now(), nil)
	assert.Equal(t, 1, testutil.CollectAndCount(gatewayDuration, "demony_gateway_request_duration_seconds"))
}

func TestAddProfitCredited(t *testing.T) {
	before := testutil.ToFloat64(profitCredited)
	AddProfitCredited(1600)
	AddProfitCredited(-5)
	assert.Equal(t, before+1600, testutil.ToFloat64(profitCredited))
}
