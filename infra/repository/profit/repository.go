package profit

import (
	"context"

	"github.com/demonyhq/demony/infra/repository/gormerr"
	"github.com/demonyhq/demony/pkg/domain/profit"
	repo "github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed distribution repository.
func New(db *gorm.DB) repo.ProfitRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *profit.Distribution) error {
	return gormerr.WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapDomainToModel(d)).Error
	})
}

func (r *repository) Exists(ctx context.Context, runID string, investmentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Distribution{}).
		Where("run_id = ? AND investment_id = ?", runID, investmentID).
		Count(&count).Error
	if err != nil {
		return false, gormerr.MapGormErrorToDomain(err)
	}
	return count > 0, nil
}

func (r *repository) ListByRun(ctx context.Context, runID string) ([]*profit.Distribution, error) {
	return r.find(r.db.WithContext(ctx).Where("run_id = ?", runID))
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*profit.Distribution, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *repository) find(q *gorm.DB) ([]*profit.Distribution, error) {
	var models []Distribution
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	out := make([]*profit.Distribution, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out, nil
}

// SplitReport groups every distribution by the investor share it was paid
// under, so records written under an older split stay visible.
func (r *repository) SplitReport(ctx context.Context) ([]profit.SplitReport, error) {
	var rows []splitRow
	err := r.db.WithContext(ctx).Model(&Distribution{}).
		Select("investor_share_percent, COUNT(DISTINCT run_id) AS runs, COUNT(*) AS distributions, COALESCE(SUM(amount), 0) AS total").
		Group("investor_share_percent").
		Order("investor_share_percent DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	out := make([]profit.SplitReport, 0, len(rows))
	for _, row := range rows {
		out = append(out, profit.SplitReport{
			InvestorSharePercent: row.InvestorSharePercent,
			Runs:                 row.Runs,
			Distributions:        row.Distributions,
			Total:                row.Total,
		})
	}
	return out, nil
}

// CreateRun inserts the header and its shares together.
func (r *repository) CreateRun(ctx context.Context, run *profit.Run) error {
	return gormerr.WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapRunToModel(run)).Error
	})
}

func (r *repository) GetRun(ctx context.Context, runID string) (*profit.Run, error) {
	var m Run
	err := r.db.WithContext(ctx).
		Preload("Shares", func(db *gorm.DB) *gorm.DB { return db.Order("investment_id") }).
		Where("run_id = ?", runID).
		First(&m).Error
	if err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	return mapRunToDomain(&m), nil
}
