package project

import (
	"context"
	"time"

	"github.com/demonyhq/demony/infra/repository/gormerr"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/project"
	repo "github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed project repository.
func New(db *gorm.DB) repo.ProjectRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *project.Project) error {
	return gormerr.WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapDomainToModel(p)).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var m Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, gormerr.NotFoundAs(err, domain.ErrProjectNotFound)
	}
	return mapModelToDomain(&m), nil
}

// Update writes the editable fields only. Funding counters are owned by
// RecordFunding and AddDistributed.
func (r *repository) Update(ctx context.Context, p *project.Project) error {
	m := mapDomainToModel(p)
	res := r.db.WithContext(ctx).Model(&Project{}).Where("id = ?", p.ID).Updates(map[string]any{
		"name":                   m.Name,
		"category":               m.Category,
		"description":            m.Description,
		"goal_amount":            m.GoalAmount,
		"min_investment":         m.MinInvestment,
		"target_return":          m.TargetReturn,
		"duration_months":        m.DurationMonths,
		"risk_level":             m.RiskLevel,
		"featured":               m.Featured,
		"priority":               m.Priority,
		"investor_share_percent": m.InvestorSharePercent,
		"status":                 m.Status,
		"updated_at":             time.Now().UTC(),
	})
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status project.Status) error {
	res := r.db.WithContext(ctx).Model(&Project{}).Where("id = ?", id).Updates(map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter repo.ProjectFilter) ([]*project.Project, int64, error) {
	page := filter.Page.Normalize()
	q := r.db.WithContext(ctx).Model(&Project{})
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, gormerr.MapGormErrorToDomain(err)
	}
	var models []Project
	err := q.Order("featured DESC").Order("priority DESC").Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&models).Error
	if err != nil {
		return nil, 0, gormerr.MapGormErrorToDomain(err)
	}
	projects := make([]*project.Project, 0, len(models))
	for i := range models {
		projects = append(projects, mapModelToDomain(&models[i]))
	}
	return projects, total, nil
}

// RecordFunding increments funding and the investor count in one conditional
// UPDATE. The status guard, and the goal guard when overfunding is off, live in
// the WHERE clause so concurrent writers cannot interleave a check and a write.
func (r *repository) RecordFunding(
	ctx context.Context,
	projectID uuid.UUID,
	amount money.Amount,
	allowOverfunding bool,
) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	q := r.db.WithContext(ctx).Model(&Project{}).
		Where("id = ? AND status = ?", projectID, string(project.StatusActive))
	if !allowOverfunding {
		q = q.Where("current_funding + ? <= goal_amount", amount)
	}
	res := q.Updates(map[string]any{
		"current_funding": gorm.Expr("current_funding + ?", amount),
		"investor_count":  gorm.Expr("investor_count + 1"),
		"updated_at":      time.Now().UTC(),
	})
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	p, err := r.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if err := p.AcceptsFunding(); err != nil {
		return err
	}
	return domain.ErrGoalExceeded
}

func (r *repository) AddDistributed(ctx context.Context, id uuid.UUID, amount money.Amount, at time.Time) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	res := r.db.WithContext(ctx).Model(&Project{}).Where("id = ?", id).Updates(map[string]any{
		"total_profit_distributed": gorm.Expr("total_profit_distributed + ?", amount),
		"last_distribution_at":     at,
		"updated_at":               time.Now().UTC(),
	})
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

