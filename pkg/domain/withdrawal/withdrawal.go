package withdrawal

import (
	"fmt"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/google/uuid"
)

// Status of a withdrawal request.
//
//	pending -> completed  (admin approved, paid out externally)
//	pending -> rejected   (admin declined, refunded)
//	pending -> cancelled  (user cancelled, refunded)
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// Refunds reports whether entering s returns the reserved funds.
func (s Status) Refunds() bool {
	return s == StatusRejected || s == StatusCancelled
}

// Method is the payout rail.
type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodMobileMoney  Method = "mobile_money"
)

// AccountDetails describes where the payout goes.
type AccountDetails struct {
	BankCode      string `json:"bank_code,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	Network       string `json:"network,omitempty"`
}

// Validate checks the details required by method.
func (d AccountDetails) Validate(method Method) error {
	switch method {
	case MethodBankTransfer:
		if strings.TrimSpace(d.AccountNumber) == "" || strings.TrimSpace(d.AccountName) == "" {
			return fmt.Errorf("%w: account number and name are required", domain.ErrValidation)
		}
	case MethodMobileMoney:
		if strings.TrimSpace(d.PhoneNumber) == "" {
			return fmt.Errorf("%w: phone number is required", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown method %q", domain.ErrValidation, method)
	}
	return nil
}

// Withdrawal is a payout request whose amount is reserved at creation.
type Withdrawal struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Amount          money.Amount
	Method          Method
	Details         AccountDetails
	Status          Status
	RejectionReason string
	PayoutReference string
	ProcessedBy     *uuid.UUID
	ProcessedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New validates and builds a pending withdrawal.
func New(userID uuid.UUID, amount, minimum money.Amount, method Method, details AccountDetails) (*Withdrawal, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if amount < minimum {
		return nil, domain.ErrBelowMinimum
	}
	if err := details.Validate(method); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Withdrawal{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Method:    method,
		Details:   details,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Transition carries the fields written when a pending withdrawal settles.
type Transition struct {
	To              Status
	RejectionReason string
	PayoutReference string
	ProcessedBy     *uuid.UUID
	ProcessedAt     time.Time
}
