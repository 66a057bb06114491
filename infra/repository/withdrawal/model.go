package withdrawal

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/google/uuid"
)

// Withdrawal is the gorm model backing the withdrawals table.
// Account details are flattened into columns.
type Withdrawal struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;index;not null"`
	Amount          int64     `gorm:"not null;check:chk_withdrawals_amount,amount > 0"`
	Method          string    `gorm:"size:32;not null"`
	BankCode        string    `gorm:"size:32"`
	AccountNumber   string    `gorm:"size:64"`
	AccountName     string    `gorm:"size:255"`
	PhoneNumber     string    `gorm:"size:32"`
	Network         string    `gorm:"size:32"`
	Status          string    `gorm:"size:16;index;not null"`
	RejectionReason string
	PayoutReference string     `gorm:"size:128"`
	ProcessedBy     *uuid.UUID `gorm:"type:uuid"`
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for the Withdrawal model.
func (Withdrawal) TableName() string {
	return "withdrawals"
}

func mapDomainToModel(w *withdrawal.Withdrawal) *Withdrawal {
	return &Withdrawal{
		ID:              w.ID,
		UserID:          w.UserID,
		Amount:          w.Amount,
		Method:          string(w.Method),
		BankCode:        w.Details.BankCode,
		AccountNumber:   w.Details.AccountNumber,
		AccountName:     w.Details.AccountName,
		PhoneNumber:     w.Details.PhoneNumber,
		Network:         w.Details.Network,
		Status:          string(w.Status),
		RejectionReason: w.RejectionReason,
		PayoutReference: w.PayoutReference,
		ProcessedBy:     w.ProcessedBy,
		ProcessedAt:     w.ProcessedAt,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

func mapModelToDomain(m *Withdrawal) *withdrawal.Withdrawal {
	return &withdrawal.Withdrawal{
		ID:     m.ID,
		UserID: m.UserID,
		Amount: m.Amount,
		Method: withdrawal.Method(m.Method),
		Details: withdrawal.AccountDetails{
			BankCode:      m.BankCode,
			AccountNumber: m.AccountNumber,
			AccountName:   m.AccountName,
			PhoneNumber:   m.PhoneNumber,
			Network:       m.Network,
		},
		Status:          withdrawal.Status(m.Status),
		RejectionReason: m.RejectionReason,
		PayoutReference: m.PayoutReference,
		ProcessedBy:     m.ProcessedBy,
		ProcessedAt:     m.ProcessedAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
