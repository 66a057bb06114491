package deposit

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/deposit"
	"github.com/google/uuid"
)

// Deposit is the gorm model backing the deposits table.
type Deposit struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID `gorm:"type:uuid;index;not null"`
	Amount           int64     `gorm:"not null;check:chk_deposits_amount,amount > 0"`
	Reference        string    `gorm:"size:128;uniqueIndex;not null"`
	Status           string    `gorm:"size:16;index;not null"`
	AuthorizationURL string    `gorm:"column:authorization_url"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for the Deposit model.
func (Deposit) TableName() string {
	return "deposits"
}

func mapDomainToModel(d *deposit.Deposit) *Deposit {
	return &Deposit{
		ID:               d.ID,
		UserID:           d.UserID,
		Amount:           d.Amount,
		Reference:        d.Reference,
		Status:           string(d.Status),
		AuthorizationURL: d.AuthorizationURL,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func mapModelToDomain(m *Deposit) *deposit.Deposit {
	return &deposit.Deposit{
		ID:               m.ID,
		UserID:           m.UserID,
		Amount:           m.Amount,
		Reference:        m.Reference,
		Status:           deposit.Status(m.Status),
		AuthorizationURL: m.AuthorizationURL,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
