package investment

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Investment is the gorm model backing the investments table.
// PaymentReference is nullable so direct investments do not collide on the unique index.
type Investment struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProjectID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount           int64           `gorm:"not null;check:chk_investments_amount,amount > 0"`
	OwnershipPercent decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Status           string          `gorm:"size:32;index;not null"`
	PaymentReference *string         `gorm:"size:128;uniqueIndex"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for the Investment model.
func (Investment) TableName() string {
	return "investments"
}

func mapDomainToModel(i *investment.Investment) *Investment {
	m := &Investment{
		ID:               i.ID,
		UserID:           i.UserID,
		ProjectID:        i.ProjectID,
		Amount:           i.Amount,
		OwnershipPercent: i.OwnershipPercent,
		Status:           string(i.Status),
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
	}
	if i.PaymentReference != "" {
		ref := i.PaymentReference
		m.PaymentReference = &ref
	}
	return m
}

func mapModelToDomain(m *Investment) *investment.Investment {
	i := &investment.Investment{
		ID:               m.ID,
		UserID:           m.UserID,
		ProjectID:        m.ProjectID,
		Amount:           m.Amount,
		OwnershipPercent: m.OwnershipPercent,
		Status:           investment.Status(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.PaymentReference != nil {
		i.PaymentReference = *m.PaymentReference
	}
	return i
}
