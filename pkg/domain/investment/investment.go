package investment

import (
	"fmt"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnershipScale is the number of decimal places kept on ownership percents.
const OwnershipScale = 4

// MaxOwnershipPercent is the largest ownership the ledger stores. Only a
// heavily overfunded tiny goal can approach it.
var MaxOwnershipPercent = decimal.New(1, 15)

// Status of an investment. Only the status changes after creation.
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusActive         Status = "active"
	StatusPaymentFailed  Status = "payment_failed"
)

// Investment links a user to a project for an amount.
//
// OwnershipPercent is computed once against the goal at creation and never
// recalculated, so later goal edits do not change historical entitlements.
type Investment struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	ProjectID        uuid.UUID
	Amount           money.Amount
	OwnershipPercent decimal.Decimal
	Status           Status
	PaymentReference string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OwnershipPercent returns amount / goal * 100 rounded to OwnershipScale places.
func OwnershipPercent(amount, goal money.Amount) decimal.Decimal {
	if goal <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(amount).
		Div(decimal.NewFromInt(goal)).
		Mul(decimal.NewFromInt(100)).
		Round(OwnershipScale)
}

// New creates a funded investment against a project goal.
func New(userID, projectID uuid.UUID, amount, goal money.Amount) (*Investment, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	ownership := OwnershipPercent(amount, goal)
	if ownership.GreaterThanOrEqual(MaxOwnershipPercent) {
		return nil, fmt.Errorf("%w: ownership %s%% exceeds the supported maximum", domain.ErrValidation, ownership.String())
	}
	now := time.Now().UTC()
	return &Investment{
		ID:               uuid.New(),
		UserID:           userID,
		ProjectID:        projectID,
		Amount:           amount,
		OwnershipPercent: ownership,
		Status:           StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// NewPending creates an investment awaiting gateway payment for reference.
func NewPending(userID, projectID uuid.UUID, amount, goal money.Amount, reference string) (*Investment, error) {
	inv, err := New(userID, projectID, amount, goal)
	if err != nil {
		return nil, err
	}
	inv.Status = StatusPendingPayment
	inv.PaymentReference = reference
	return inv, nil
}

// IsPending reports whether gateway effects are still outstanding.
func (i *Investment) IsPending() bool {
	return i.Status == StatusPendingPayment
}
