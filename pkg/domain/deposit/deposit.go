package deposit

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/google/uuid"
)

// Status of a gateway-funded wallet top-up.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Deposit tracks a wallet top-up from initialization until the gateway confirms it.
type Deposit struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Amount           money.Amount
	Reference        string
	Status           Status
	AuthorizationURL string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New creates a pending deposit.
func New(userID uuid.UUID, amount, minimum money.Amount, reference string) (*Deposit, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if amount < minimum {
		return nil, domain.ErrBelowMinimum
	}
	now := time.Now().UTC()
	return &Deposit{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Reference: reference,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
