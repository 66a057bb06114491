package withdrawal_test

import (
	"testing"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bank = withdrawal.AccountDetails{BankCode: "GCB", AccountNumber: "0123456789", AccountName: "Ama Mensah"}

func TestNew(t *testing.T) {
	w, err := withdrawal.New(uuid.New(), 10000, 1000, withdrawal.MethodBankTransfer, bank)
	require.NoError(t, err)
	assert.Equal(t, withdrawal.StatusPending, w.Status)
	assert.Equal(t, int64(10000), w.Amount)
}

func TestNew_Rules(t *testing.T) {
	_, err := withdrawal.New(uuid.New(), 0, 1000, withdrawal.MethodBankTransfer, bank)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = withdrawal.New(uuid.New(), 999, 1000, withdrawal.MethodBankTransfer, bank)
	require.ErrorIs(t, err, domain.ErrBelowMinimum)

	_, err = withdrawal.New(uuid.New(), 1000, 1000, withdrawal.MethodMobileMoney, bank)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = withdrawal.New(uuid.New(), 1000, 1000, "cheque", bank)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = withdrawal.New(uuid.New(), 1000, 1000, withdrawal.MethodMobileMoney,
		withdrawal.AccountDetails{PhoneNumber: "0244000000", Network: "MTN"})
	require.NoError(t, err)
}

func TestStatus(t *testing.T) {
	assert.False(t, withdrawal.StatusPending.Terminal())
	assert.True(t, withdrawal.StatusCompleted.Terminal())
	assert.False(t, withdrawal.StatusCompleted.Refunds())
	assert.True(t, withdrawal.StatusRejected.Refunds())
	assert.True(t, withdrawal.StatusCancelled.Refunds())
}
