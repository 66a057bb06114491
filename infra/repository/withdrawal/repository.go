package withdrawal

import (
	"context"
	"time"

	"github.com/demonyhq/demony/infra/repository/gormerr"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	repo "github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed withdrawal repository.
func New(db *gorm.DB) repo.WithdrawalRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, w *withdrawal.Withdrawal) error {
	return gormerr.WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapDomainToModel(w)).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	var m Withdrawal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*withdrawal.Withdrawal, error) {
	var models []Withdrawal
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	return mapModels(models), nil
}

func (r *repository) List(
	ctx context.Context,
	status withdrawal.Status,
	page repo.Page,
) ([]*withdrawal.Withdrawal, int64, error) {
	page = page.Normalize()
	q := r.db.WithContext(ctx).Model(&Withdrawal{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, gormerr.MapGormErrorToDomain(err)
	}
	var models []Withdrawal
	if err := q.Order("created_at ASC").Offset(page.Offset()).Limit(page.Limit).Find(&models).Error; err != nil {
		return nil, 0, gormerr.MapGormErrorToDomain(err)
	}
	return mapModels(models), total, nil
}

// Transition settles a withdrawal only while it is still pending. Two admins
// racing on the same request get one success and one ErrNotPending.
func (r *repository) Transition(ctx context.Context, id uuid.UUID, t withdrawal.Transition) error {
	processedAt := t.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}
	res := r.db.WithContext(ctx).Model(&Withdrawal{}).
		Where("id = ? AND status = ?", id, string(withdrawal.StatusPending)).
		Updates(map[string]any{
			"status":           string(t.To),
			"rejection_reason": t.RejectionReason,
			"payout_reference": t.PayoutReference,
			"processed_by":     t.ProcessedBy,
			"processed_at":     processedAt,
			"updated_at":       time.Now().UTC(),
		})
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

func mapModels(models []Withdrawal) []*withdrawal.Withdrawal {
	out := make([]*withdrawal.Withdrawal, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out
}
