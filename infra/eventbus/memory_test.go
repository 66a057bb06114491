package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventBus_DispatchesByType(t *testing.T) {
	bus := NewWithMemory(nil)

	var got []events.Event
	bus.Register(events.EventTypeDepositCompleted, func(_ context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	})
	bus.Register(events.EventTypeWithdrawalRequested, func(context.Context, events.Event) error {
		t.Fatal("unexpected dispatch")
		return nil
	})

	evt := &events.DepositCompleted{DepositID: uuid.New(), Amount: 1000}
	require.NoError(t, bus.Emit(context.Background(), evt))

	require.Len(t, got, 1)
	assert.Same(t, evt, got[0])
	assert.Len(t, bus.Published(), 1)

	bus.ClearPublished()
	assert.Empty(t, bus.Published())
}

func TestMemoryEventBus_HandlerFailuresDoNotReachEmitter(t *testing.T) {
	bus := NewWithMemory(nil)
	calls := 0
	bus.Register(events.EventTypeKYCReviewed, func(context.Context, events.Event) error {
		calls++
		return errors.New("smtp down")
	})
	bus.Register(events.EventTypeKYCReviewed, func(context.Context, events.Event) error {
		calls++
		panic("boom")
	})
	bus.Register(events.EventTypeKYCReviewed, func(context.Context, events.Event) error {
		calls++
		return nil
	})

	assert.NoError(t, bus.Emit(context.Background(), &events.KYCReviewed{UserID: uuid.New()}))
	assert.Equal(t, 3, calls)
}
