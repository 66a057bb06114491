package project_test

import (
	"context"
	"testing"

	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/repository"
	investmentsvc "github.com/demonyhq/demony/pkg/service/investment"
	"github.com/demonyhq/demony/pkg/service/ledger"
	projectsvc "github.com/demonyhq/demony/pkg/service/project"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func params(name string) project.Params {
	return project.Params{
		Name:           name,
		Category:       "agriculture",
		GoalAmount:     100000,
		TargetReturn:   decimal.NewFromInt(12),
		DurationMonths: 12,
		RiskLevel:      project.RiskMedium,
	}
}

func TestCatalogue(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	svc := projectsvc.New(infrarepo.NewUoW(db), nil)
	ctx := context.Background()

	farm, err := svc.Create(ctx, params("Cocoa farm"))
	require.NoError(t, err)
	assert.Equal(t, project.StatusActive, farm.Status)

	featured := params("Solar kiosks")
	featured.Featured = true
	featured.Category = "energy"
	solar, err := svc.Create(ctx, featured)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, uuid.New(), params("Pending idea"))
	require.NoError(t, err)

	list, total, err := svc.List(ctx, projectsvc.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, solar.ID, list[0].ID, "featured projects come first")

	yes := true
	list, _, err = svc.List(ctx, projectsvc.Filter{Featured: &yes})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, _, err = svc.List(ctx, projectsvc.Filter{Category: "agriculture"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, farm.ID, list[0].ID)

	_, all, err := svc.AdminList(ctx, repository.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all)

	require.NoError(t, svc.Remove(ctx, farm.ID))
	_, err = svc.Get(ctx, farm.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	assert.ErrorIs(t, svc.SetStatus(ctx, solar.ID, "archived"), domain.ErrValidation)
	assert.ErrorIs(t, svc.SetStatus(ctx, uuid.New(), project.StatusInactive), domain.ErrProjectNotFound)
}

func TestReviewWorkflow(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	svc := projectsvc.New(infrarepo.NewUoW(db), nil)
	ctx := context.Background()
	owner := uuid.New()

	p, err := svc.Submit(ctx, owner, params("Poultry"))
	require.NoError(t, err)
	assert.Equal(t, project.StatusPendingReview, p.Status)

	_, err = svc.Resubmit(ctx, owner, p.ID, params("Poultry v2"))
	assert.ErrorIs(t, err, domain.ErrNotPending)

	p, err = svc.Review(ctx, p.ID, project.ReviewRequestChanges)
	require.NoError(t, err)
	assert.Equal(t, project.StatusChangesRequested, p.Status)

	_, err = svc.Resubmit(ctx, uuid.New(), p.ID, params("Hijack"))
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	p, err = svc.Resubmit(ctx, owner, p.ID, params("Poultry v2"))
	require.NoError(t, err)
	assert.Equal(t, project.StatusPendingReview, p.Status)
	assert.Equal(t, "Poultry v2", p.Name)

	p, err = svc.Review(ctx, p.ID, project.ReviewApprove)
	require.NoError(t, err)
	assert.Equal(t, project.StatusActive, p.Status)

	_, err = svc.Review(ctx, p.ID, project.ReviewReject)
	assert.ErrorIs(t, err, domain.ErrNotPending)

	mine, total, err := svc.ListByOwner(ctx, owner, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, p.ID, mine[0].ID)
}

func TestUpdate_GoalChangeKeepsOwnership(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	uow := infrarepo.NewUoW(db)
	svc := projectsvc.New(uow, nil)
	investments := investmentsvc.New(uow, nil, nil, ledger.DefaultPolicy(), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, params("Fish farm"))
	require.NoError(t, err)
	u := testutils.CreateUser(t, db, testutils.WithBalance(20000))
	inv, err := investments.CreateInvestment(ctx, u.ID, p.ID, 20000)
	require.NoError(t, err)

	bigger := params("Fish farm")
	bigger.GoalAmount = 400000
	updated, err := svc.Update(ctx, p.ID, bigger)
	require.NoError(t, err)
	assert.Equal(t, int64(400000), updated.GoalAmount)
	assert.Equal(t, int64(20000), updated.CurrentFunding)

	got, err := investments.Get(ctx, u.ID, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.OwnershipPercent.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, investment.StatusActive, got.Status)

	invalid := params("")
	_, err = svc.Update(ctx, p.ID, invalid)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
