package user

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/google/uuid"
)

// User is the gorm model backing the users table. wallet_balance carries a
// CHECK constraint so a bad write fails in the database as well.
type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email              string    `gorm:"size:255;uniqueIndex;not null"`
	Name               string    `gorm:"size:255;not null"`
	Password           string    `gorm:"not null"`
	Role               string    `gorm:"size:32;index;not null;default:'investor'"`
	WalletBalance      int64     `gorm:"not null;default:0;check:chk_users_wallet_balance,wallet_balance >= 0"`
	TotalInvested      int64     `gorm:"not null;default:0"`
	TotalEarnings      int64     `gorm:"not null;default:0"`
	IsVerified         bool      `gorm:"not null;default:false"`
	KYCStatus          string    `gorm:"column:kyc_status;size:16;index;not null;default:'none'"`
	KYCRejectionReason string    `gorm:"column:kyc_rejection_reason"`
	IsActive           bool      `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

func mapDomainToModel(u *user.User) *User {
	return &User{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Password:           u.HashedPassword,
		Role:               string(u.Role),
		WalletBalance:      u.WalletBalance,
		TotalInvested:      u.TotalInvested,
		TotalEarnings:      u.TotalEarnings,
		IsVerified:         u.IsVerified,
		KYCStatus:          string(u.KYCStatus),
		KYCRejectionReason: u.KYCRejectionReason,
		IsActive:           u.IsActive,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func mapModelToDomain(m *User) *user.User {
	return &user.User{
		ID:                 m.ID,
		Email:              m.Email,
		Name:               m.Name,
		HashedPassword:     m.Password,
		Role:               user.Role(m.Role),
		WalletBalance:      m.WalletBalance,
		TotalInvested:      m.TotalInvested,
		TotalEarnings:      m.TotalEarnings,
		IsVerified:         m.IsVerified,
		KYCStatus:          user.KYCStatus(m.KYCStatus),
		KYCRejectionReason: m.KYCRejectionReason,
		IsActive:           m.IsActive,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
