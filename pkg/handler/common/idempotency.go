// Package common holds middleware shared by event handlers.
package common

import (
	"context"
	"log/slog"
	"sync"

	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/eventbus"
	"golang.org/x/sync/singleflight"
)

// KeyExtractor derives an idempotency key from an event. An empty key
// disables deduplication for that event.
type KeyExtractor func(events.Event) string

// IdempotencyTracker remembers which keys a handler has completed.
type IdempotencyTracker struct {
	processed sync.Map
	inflight  singleflight.Group
}

// NewIdempotencyTracker creates an empty tracker.
func NewIdempotencyTracker() *IdempotencyTracker {
	return &IdempotencyTracker{}
}

// Seen reports whether key has completed.
func (t *IdempotencyTracker) Seen(key string) bool {
	_, ok := t.processed.Load(key)
	return ok
}

// Forget drops key so the next delivery runs again.
func (t *IdempotencyTracker) Forget(key string) {
	t.processed.Delete(key)
}

// WithIdempotency runs handler at most once per key. Concurrent deliveries of
// the same key share one execution; a failed run leaves the key unmarked so a
// redelivery retries it.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	tracker *IdempotencyTracker,
	keyExtractor KeyExtractor,
	handlerName string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e events.Event) error {
		key := keyExtractor(e)
		if key == "" {
			return handler(ctx, e)
		}
		if tracker.Seen(key) {
			logger.Debug("duplicate delivery skipped",
				"handler", handlerName,
				"event_type", e.Type(),
				"idempotency_key", key,
			)
			return nil
		}
		_, err, _ := tracker.inflight.Do(key, func() (any, error) {
			if tracker.Seen(key) {
				return nil, nil
			}
			if err := handler(ctx, e); err != nil {
				return nil, err
			}
			tracker.processed.Store(key, struct{}{})
			return nil, nil
		})
		return err
	}
}

// EventKey identifies the ledger fact an event reports, so a redelivered
// event maps to the same key.
func EventKey(e events.Event) string {
	switch ev := e.(type) {
	case *events.InvestmentCreated:
		return e.Type() + ":" + ev.InvestmentID.String()
	case *events.InvestmentFailed:
		return e.Type() + ":" + ev.InvestmentID.String()
	case *events.DepositCompleted:
		return e.Type() + ":" + ev.DepositID.String()
	case *events.WithdrawalRequested:
		return e.Type() + ":" + ev.WithdrawalID.String()
	case *events.WithdrawalProcessed:
		return e.Type() + ":" + ev.WithdrawalID.String()
	case *events.ProfitDistributed:
		return e.Type() + ":" + ev.RunID + ":" + ev.InvestmentID.String()
	case *events.KYCReviewed:
		return e.Type() + ":" + ev.UserID.String() + ":" + ev.Timestamp.Format("20060102T150405.000000000")
	default:
		return ""
	}
}
