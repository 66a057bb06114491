package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/demonyhq/demony/infra/repository/gormerr"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	repo "github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns the journal repository. It only ever inserts.
func New(db *gorm.DB) repo.TransactionRepository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, t *journal.Transaction) (uuid.UUID, error) {
	if !t.Type.Valid() {
		return uuid.Nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, t.Type)
	}
	if t.Amount == 0 {
		return uuid.Nil, domain.ErrInvalidAmount
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = journal.StatusCompleted
	}
	err := gormerr.WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapDomainToModel(t)).Error
	})
	if err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter journal.Filter,
) ([]*journal.Transaction, int64, error) {
	filter = filter.Normalize()
	q := r.db.WithContext(ctx).Model(&Transaction{}).Where("user_id = ?", userID)
	if filter.Type != "" {
		q = q.Where("type = ?", string(filter.Type))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, gormerr.MapGormErrorToDomain(err)
	}
	var models []Transaction
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(filter.Offset()).Limit(filter.Limit).Find(&models).Error
	if err != nil {
		return nil, 0, gormerr.MapGormErrorToDomain(err)
	}
	out := make([]*journal.Transaction, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out, total, nil
}

// SumByUser totals the signed amounts of one entry type. An empty type sums
// every entry, which equals the wallet balance when the journal is complete.
func (r *repository) SumByUser(ctx context.Context, userID uuid.UUID, typ journal.Type) (money.Amount, error) {
	q := r.db.WithContext(ctx).Model(&Transaction{}).Where("user_id = ?", userID)
	if typ != "" {
		q = q.Where("type = ?", string(typ))
	}
	var sum int64
	if err := q.Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error; err != nil {
		return 0, gormerr.MapGormErrorToDomain(err)
	}
	return sum, nil
}

