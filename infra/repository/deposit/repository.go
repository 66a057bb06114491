package deposit

import (
	"context"
	"time"

	"github.com/demonyhq/demony/infra/repository/gormerr"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/deposit"
	repo "github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed deposit repository.
func New(db *gorm.DB) repo.DepositRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *deposit.Deposit) error {
	return gormerr.WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapDomainToModel(d)).Error
	})
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*deposit.Deposit, error) {
	var m Deposit
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&m).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) SetCheckout(ctx context.Context, id uuid.UUID, reference, url string) error {
	res := r.db.WithContext(ctx).Model(&Deposit{}).Where("id = ?", id).
		Updates(map[string]any{"reference": reference, "authorization_url": url, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) Transition(ctx context.Context, id uuid.UUID, from, to deposit.Status) error {
	res := r.db.WithContext(ctx).Model(&Deposit{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&Deposit{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return gormerr.MapGormErrorToDomain(err)
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrNotPending
	}
	return nil
}
