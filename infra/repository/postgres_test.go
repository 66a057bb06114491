package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/deposit"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/profit"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgres runs against the golang-migrate schema in a container.
func TestPostgres(t *testing.T) {
	db := testutils.NewPostgresDB(t)
	uow := infrarepo.NewUoW(db)
	ctx := context.Background()

	t.Run("migrations applied cleanly", func(t *testing.T) {
		var row struct {
			Version int
			Dirty   bool
		}
		require.NoError(t, db.Raw("SELECT version, dirty FROM schema_migrations").Scan(&row).Error)
		assert.Equal(t, 9, row.Version)
		assert.False(t, row.Dirty)
	})

	t.Run("aggregates round trip through the SQL schema", func(t *testing.T) {
		u := testutils.CreateUser(t, db, testutils.WithBalance(50000), testutils.Verified())
		tiny := testutils.CreateProject(t, db, 1)

		inv, err := investment.New(u.ID, tiny.ID, 5_000_000_000, tiny.GoalAmount)
		require.NoError(t, err)
		investments, err := uow.InvestmentRepository()
		require.NoError(t, err)
		require.NoError(t, investments.Create(ctx, inv))
		got, err := investments.Get(ctx, inv.ID)
		require.NoError(t, err)
		assert.True(t, got.OwnershipPercent.Equal(decimal.RequireFromString("500000000000")))

		entries, err := uow.TransactionRepository()
		require.NoError(t, err)
		_, err = entries.Append(ctx, journal.New(u.ID, journal.TypeDeposit, 50000, 50000, "DEP_PG", "Wallet deposit"))
		require.NoError(t, err)

		withdrawals, err := uow.WithdrawalRepository()
		require.NoError(t, err)
		w, err := withdrawal.New(u.ID, 5000, 1000, withdrawal.MethodMobileMoney, withdrawal.AccountDetails{PhoneNumber: "0241234567", Network: "MTN"})
		require.NoError(t, err)
		require.NoError(t, withdrawals.Create(ctx, w))
		gotW, err := withdrawals.Get(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "MTN", gotW.Details.Network)

		deposits, err := uow.DepositRepository()
		require.NoError(t, err)
		d, err := deposit.New(u.ID, 20000, 10000, "DEP_PG_1")
		require.NoError(t, err)
		require.NoError(t, deposits.Create(ctx, d))
		_, err = deposits.GetByReference(ctx, "DEP_PG_1")
		require.NoError(t, err)

		profits, err := uow.ProfitRepository()
		require.NoError(t, err)
		plan, err := profit.NewPlan(tiny.ID, 100000, decimal.NewFromInt(80), []*investment.Investment{inv})
		require.NoError(t, err)
		require.NoError(t, profits.CreateRun(ctx, plan.Pin("pg-run", "postgres")))
		assert.ErrorIs(t, profits.CreateRun(ctx, plan.Pin("pg-run", "again")), domain.ErrAlreadyExists)
		run, err := profits.GetRun(ctx, "pg-run")
		require.NoError(t, err)
		require.Len(t, run.Shares, 1)
		assert.True(t, run.Shares[0].OwnershipPercent.Equal(inv.OwnershipPercent))

		require.NoError(t, profits.Create(ctx, plan.Distribution("pg-run", "postgres", plan.Shares[0])))
		assert.ErrorIs(t, profits.Create(ctx, plan.Distribution("pg-run", "again", plan.Shares[0])), domain.ErrAlreadyExists)
	})

	t.Run("concurrent debits never overdraw", func(t *testing.T) {
		const (
			balance = 50000
			amount  = 3000
			callers = 24
		)
		u := testutils.CreateUser(t, db, testutils.WithBalance(balance))

		var (
			wg     sync.WaitGroup
			mu     sync.Mutex
			ok     int
			others []error
		)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := uow.Do(ctx, func(tx repository.UnitOfWork) error {
					_, err := ledger.Debit(ctx, tx, ledger.Entry{UserID: u.ID, Amount: amount, Type: journal.TypeInvestment})
					return err
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case !errors.Is(err, domain.ErrInsufficientFunds):
					others = append(others, err)
				}
			}()
		}
		wg.Wait()

		require.Empty(t, others)
		assert.Equal(t, balance/amount, ok)
		users, err := uow.UserRepository()
		require.NoError(t, err)
		left, err := users.GetBalance(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(balance-(balance/amount)*amount), left)

		entries, err := uow.TransactionRepository()
		require.NoError(t, err)
		sum, err := entries.SumByUser(ctx, u.ID, journal.TypeInvestment)
		require.NoError(t, err)
		assert.Equal(t, -int64(ok*amount), sum)
	})
}
