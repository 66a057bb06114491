package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyFromConfig(t *testing.T) {
	p, err := ledger.PolicyFromConfig(&config.Ledger{
		Currency:             "GHS",
		MinInvestment:        decimal.NewFromInt(100),
		MinWithdrawal:        decimal.NewFromInt(10),
		MinDeposit:           decimal.RequireFromString("50.50"),
		InvestorSharePercent: decimal.NewFromInt(80),
		AllowOverfunding:     true,
		GatewayTimeout:       5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), p.MinInvestment)
	assert.Equal(t, int64(1000), p.MinWithdrawal)
	assert.Equal(t, int64(5050), p.MinDeposit)
	assert.Equal(t, "100.00 GHS", p.Money(10000).String())

	_, err = ledger.PolicyFromConfig(&config.Ledger{Currency: "GHS", MinInvestment: decimal.RequireFromString("0.001")})
	assert.Error(t, err)

	def, err := ledger.PolicyFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, ledger.DefaultPolicy(), def)
}

func TestDebitAndCreditAreJournaled(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	u := testutils.CreateUser(t, db, testutils.WithBalance(50000))
	uow := infrarepo.NewUoW(db)
	ctx := context.Background()

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		bal, err := ledger.Debit(ctx, tx, ledger.Entry{UserID: u.ID, Amount: 20000, Type: journal.TypeInvestment})
		require.NoError(t, err)
		assert.Equal(t, int64(30000), bal)
		bal, err = ledger.Credit(ctx, tx, ledger.Entry{UserID: u.ID, Amount: 5000, Type: journal.TypeProfit})
		require.NoError(t, err)
		assert.Equal(t, int64(35000), bal)
		return nil
	})
	require.NoError(t, err)

	txs, err := uow.TransactionRepository()
	require.NoError(t, err)
	list, total, err := txs.ListByUser(ctx, u.ID, journal.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(35000), list[0].BalanceAfter)

	sum, err := txs.SumByUser(ctx, u.ID, journal.TypeInvestment)
	require.NoError(t, err)
	assert.Equal(t, int64(-20000), sum)
}

func TestDebitFailureLeavesNoJournal(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	u := testutils.CreateUser(t, db, testutils.WithBalance(1000))
	uow := infrarepo.NewUoW(db)
	ctx := context.Background()

	err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
		_, err := ledger.Debit(ctx, tx, ledger.Entry{UserID: u.ID, Amount: 2000, Type: journal.TypeWithdrawal})
		return err
	})
	require.True(t, errors.Is(err, domain.ErrInsufficientFunds))

	_, err = ledger.Debit(ctx, uow, ledger.Entry{UserID: u.ID, Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	txs, _ := uow.TransactionRepository()
	_, total, err := txs.ListByUser(ctx, u.ID, journal.Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}
