package transaction

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/google/uuid"
)

// Transaction is the gorm model backing the append-only transactions table.
type Transaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;index:idx_transactions_user_created,priority:1;not null"`
	Type         string    `gorm:"size:16;index;not null"`
	Amount       int64     `gorm:"not null"`
	BalanceAfter int64     `gorm:"not null"`
	Status       string    `gorm:"size:16;not null"`
	Reference    string    `gorm:"size:128;index"`
	Description  string
	CreatedAt    time.Time `gorm:"index:idx_transactions_user_created,priority:2"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

func mapDomainToModel(t *journal.Transaction) *Transaction {
	return &Transaction{
		ID:           t.ID,
		UserID:       t.UserID,
		Type:         string(t.Type),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Status:       t.Status,
		Reference:    t.Reference,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

func mapModelToDomain(m *Transaction) *journal.Transaction {
	return &journal.Transaction{
		ID:           m.ID,
		UserID:       m.UserID,
		Type:         journal.Type(m.Type),
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		Status:       m.Status,
		Reference:    m.Reference,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt,
	}
}
