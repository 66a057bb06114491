package journal

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/google/uuid"
)

// Type classifies a wallet-affecting event.
type Type string

const (
	TypeInvestment Type = "investment"
	TypeWithdrawal Type = "withdrawal"
	TypeDeposit    Type = "deposit"
	TypeProfit     Type = "profit"
	TypeRefund     Type = "refund"
)

// Valid reports whether t is a known journal type.
func (t Type) Valid() bool {
	switch t {
	case TypeInvestment, TypeWithdrawal, TypeDeposit, TypeProfit, TypeRefund:
		return true
	}
	return false
}

// StatusCompleted is the only status a journal entry is written with.
const StatusCompleted = "completed"

// Transaction is an append-only journal entry. Amount is signed: negative
// entries are debits from the wallet.
type Transaction struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Type         Type
	Amount       money.Amount
	BalanceAfter money.Amount
	Status       string
	Reference    string
	Description  string
	CreatedAt    time.Time
}

// New creates a completed journal entry.
func New(userID uuid.UUID, typ Type, amount, balanceAfter money.Amount, reference, description string) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		Status:       StatusCompleted,
		Reference:    reference,
		Description:  description,
		CreatedAt:    time.Now().UTC(),
	}
}

// Filter narrows a journal listing.
type Filter struct {
	Type  Type
	Page  int
	Limit int
}

// Normalize clamps paging to sane bounds.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

// Offset returns the row offset for the current page.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}
