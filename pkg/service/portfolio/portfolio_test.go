package portfolio_test

import (
	"context"
	"testing"

	"github.com/demonyhq/demony/infra/provider/mockpayment"
	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/domain"
	investmentsvc "github.com/demonyhq/demony/pkg/service/investment"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/service/portfolio"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	uow := infrarepo.NewUoW(db)
	investments := investmentsvc.New(uow, mockpayment.NewMockPaymentProvider(), nil, ledger.DefaultPolicy(), nil)
	svc := portfolio.New(uow)
	ctx := context.Background()

	u := testutils.CreateUser(t, db, testutils.WithBalance(100000))
	farm := testutils.CreateProject(t, db, 100000)
	solar := testutils.CreateProject(t, db, 100000, testutils.WithCategory("energy"))

	for _, step := range []struct {
		projectID uuid.UUID
		amount    int64
	}{
		{farm.ID, 30000},
		{farm.ID, 15000},
		{solar.ID, 15000},
	} {
		_, err := investments.CreateInvestment(ctx, u.ID, step.projectID, step.amount)
		require.NoError(t, err)
	}
	_, err := investments.InitiateInvestment(ctx, u.ID, solar.ID, 50000)
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), sum.WalletBalance)
	assert.Equal(t, int64(60000), sum.TotalInvested)
	assert.Equal(t, 3, sum.ActiveCount)
	assert.Equal(t, 1, sum.PendingCount)
	assert.Len(t, sum.Holdings, 3)

	require.Len(t, sum.Allocation, 2)
	assert.Equal(t, "agriculture", sum.Allocation[0].Category)
	assert.True(t, sum.Allocation[0].Percent.Equal(decimal.NewFromInt(75)))
	assert.True(t, sum.Allocation[1].Percent.Equal(decimal.NewFromInt(25)))

	_, err = svc.Summary(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSummary_Empty(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	u := testutils.CreateUser(t, db)

	sum, err := portfolio.New(infrarepo.NewUoW(db)).Summary(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Zero(t, sum.ActiveCount)
	assert.Empty(t, sum.Allocation)
}
