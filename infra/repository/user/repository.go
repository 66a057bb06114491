package user

import (
	"context"
	"time"

	"github.com/demonyhq/demony/infra/repository/gormerr"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/user"
	repo "github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed user repository. Pass the transaction handle to
// bind it to a unit of work.
func New(db *gorm.DB) repo.UserRepository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *user.User) error {
	return gormerr.WrapError(func() error {
		return r.db.WithContext(ctx).Create(mapDomainToModel(u)).Error
	})
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, gormerr.NotFoundAs(err, domain.ErrUserNotFound)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, gormerr.NotFoundAs(err, domain.ErrUserNotFound)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) List(ctx context.Context, filter repo.UserFilter) ([]*user.User, int64, error) {
	page := filter.Page.Normalize()
	q := r.db.WithContext(ctx).Model(&User{})
	if filter.Role != "" {
		q = q.Where("role = ?", string(filter.Role))
	}
	if filter.KYCStatus != "" {
		q = q.Where("kyc_status = ?", string(filter.KYCStatus))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, gormerr.MapGormErrorToDomain(err)
	}
	var models []User
	if err := q.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&models).Error; err != nil {
		return nil, 0, gormerr.MapGormErrorToDomain(err)
	}
	users := make([]*user.User, 0, len(models))
	for i := range models {
		users = append(users, mapModelToDomain(&models[i]))
	}
	return users, total, nil
}

// Debit is a single conditional UPDATE guarded by wallet_balance >= amount.
// When no row matches, a follow-up lookup tells a missing user apart from
// an underfunded one.
func (r *repository) Debit(ctx context.Context, userID uuid.UUID, amount money.Amount) (money.Amount, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	res := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND wallet_balance >= ?", userID, amount).
		Updates(map[string]any{
			"wallet_balance": gorm.Expr("wallet_balance - ?", amount),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetBalance(ctx, userID); err != nil {
			return 0, err
		}
		return 0, domain.ErrInsufficientFunds
	}
	return r.GetBalance(ctx, userID)
}

func (r *repository) Credit(ctx context.Context, userID uuid.UUID, amount money.Amount) (money.Amount, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	res := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"wallet_balance": gorm.Expr("wallet_balance + ?", amount),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrUserNotFound
	}
	return r.GetBalance(ctx, userID)
}

func (r *repository) GetBalance(ctx context.Context, userID uuid.UUID) (money.Amount, error) {
	var m User
	err := r.db.WithContext(ctx).Select("id", "wallet_balance").Where("id = ?", userID).First(&m).Error
	if err != nil {
		return 0, gormerr.NotFoundAs(err, domain.ErrUserNotFound)
	}
	return m.WalletBalance, nil
}

func (r *repository) AddInvested(ctx context.Context, id uuid.UUID, amount money.Amount) error {
	return r.increment(ctx, id, "total_invested", amount)
}

func (r *repository) AddEarnings(ctx context.Context, id uuid.UUID, amount money.Amount) error {
	return r.increment(ctx, id, "total_earnings", amount)
}

func (r *repository) increment(ctx context.Context, id uuid.UUID, column string, amount money.Amount) error {
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	return r.update(ctx, id, map[string]any{
		column: gorm.Expr(column+" + ?", amount),
	})
}

func (r *repository) UpdateKYC(
	ctx context.Context,
	id uuid.UUID,
	status user.KYCStatus,
	verified bool,
	reason string,
) error {
	return r.update(ctx, id, map[string]any{
		"kyc_status":           string(status),
		"is_verified":          verified,
		"kyc_rejection_reason": reason,
	})
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.update(ctx, id, map[string]any{"is_active": active})
}

func (r *repository) SetRole(ctx context.Context, id uuid.UUID, role user.Role) error {
	return r.update(ctx, id, map[string]any{"role": string(role)})
}

func (r *repository) update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return gormerr.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
