package investment

import (
	"context"
	"time"

	"github.com/demonyhq/demony/infra/repository/gormerr"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/investment"
	repo "github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed investment repository.
func New(db *gorm.DB) repo.InvestmentRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, inv *investment.Investment) error {
	return gormerr.WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapDomainToModel(inv)).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*investment.Investment, error) {
	var m Investment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*investment.Investment, error) {
	var m Investment
	if err := r.db.WithContext(ctx).Where("payment_reference = ?", reference).First(&m).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*investment.Investment, error) {
	var models []Investment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	return mapModels(models), nil
}

// ListByProject returns the project's investments, oldest first. An empty
// status returns every investment.
func (r *repository) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
	status investment.Status,
) ([]*investment.Investment, error) {
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var models []Investment
	if err := q.Order("created_at ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	return mapModels(models), nil
}

func (r *repository) Transition(ctx context.Context, id uuid.UUID, from, to investment.Status) error {
	res := r.db.WithContext(ctx).Model(&Investment{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return domain.ErrNotPending
	}
	return nil
}

func (r *repository) SetReference(ctx context.Context, id uuid.UUID, reference string) error {
	res := r.db.WithContext(ctx).Model(&Investment{}).Where("id = ?", id).
		Updates(map[string]any{"payment_reference": reference, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapModels(models []Investment) []*investment.Investment {
	out := make([]*investment.Investment, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out
}
