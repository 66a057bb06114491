package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of an event in the system.
type EventType string

const (
	EventTypeInvestmentCreated   EventType = "Investment.Created"
	EventTypeInvestmentFailed    EventType = "Investment.PaymentFailed"
	EventTypeDepositCompleted    EventType = "Deposit.Completed"
	EventTypeWithdrawalRequested EventType = "Withdrawal.Requested"
	EventTypeWithdrawalProcessed EventType = "Withdrawal.Processed"
	EventTypeProfitDistributed   EventType = "Profit.Distributed"
	EventTypeKYCReviewed         EventType = "KYC.Reviewed"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Event is implemented by every domain event published after a commit.
type Event interface {
	Type() string
}

// InvestmentCreated is emitted when an investment becomes active.
type InvestmentCreated struct {
	InvestmentID     uuid.UUID `json:"investment_id"`
	UserID           uuid.UUID `json:"user_id"`
	ProjectID        uuid.UUID `json:"project_id"`
	Amount           int64     `json:"amount"`
	OwnershipPercent string    `json:"ownership_percent"`
	Gateway          bool      `json:"gateway"`
	Timestamp        time.Time `json:"timestamp"`
}

func (e *InvestmentCreated) Type() string { return EventTypeInvestmentCreated.String() }

// InvestmentFailed is emitted when a gateway-backed investment cannot be applied.
type InvestmentFailed struct {
	InvestmentID uuid.UUID `json:"investment_id"`
	UserID       uuid.UUID `json:"user_id"`
	Reason       string    `json:"reason"`
	Refunded     int64     `json:"refunded"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e *InvestmentFailed) Type() string { return EventTypeInvestmentFailed.String() }

// DepositCompleted is emitted when a wallet top-up is credited.
type DepositCompleted struct {
	DepositID uuid.UUID `json:"deposit_id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    int64     `json:"amount"`
	Reference string    `json:"reference"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *DepositCompleted) Type() string { return EventTypeDepositCompleted.String() }

// WithdrawalRequested is emitted after funds are reserved.
type WithdrawalRequested struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	UserID       uuid.UUID `json:"user_id"`
	Amount       int64     `json:"amount"`
	Method       string    `json:"method"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e *WithdrawalRequested) Type() string { return EventTypeWithdrawalRequested.String() }

// WithdrawalProcessed is emitted when a withdrawal leaves pending.
type WithdrawalProcessed struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
	UserID       uuid.UUID `json:"user_id"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e *WithdrawalProcessed) Type() string { return EventTypeWithdrawalProcessed.String() }

// ProfitDistributed is emitted once per investor credit.
type ProfitDistributed struct {
	RunID        string    `json:"run_id"`
	UserID       uuid.UUID `json:"user_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	ProjectName  string    `json:"project_name"`
	InvestmentID uuid.UUID `json:"investment_id"`
	Amount       int64     `json:"amount"`
	Timestamp    time.Time `json:"timestamp"`
}

func (e *ProfitDistributed) Type() string { return EventTypeProfitDistributed.String() }

// KYCReviewed is emitted after an admin decides on a user's verification.
type KYCReviewed struct {
	UserID    uuid.UUID `json:"user_id"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *KYCReviewed) Type() string { return EventTypeKYCReviewed.String() }

// EventTypes maps wire type names to constructors for bus decoders.
var EventTypes = map[EventType]func() Event{
	EventTypeInvestmentCreated:   func() Event { return &InvestmentCreated{} },
	EventTypeInvestmentFailed:    func() Event { return &InvestmentFailed{} },
	EventTypeDepositCompleted:    func() Event { return &DepositCompleted{} },
	EventTypeWithdrawalRequested: func() Event { return &WithdrawalRequested{} },
	EventTypeWithdrawalProcessed: func() Event { return &WithdrawalProcessed{} },
	EventTypeProfitDistributed:   func() Event { return &ProfitDistributed{} },
	EventTypeKYCReviewed:         func() Event { return &KYCReviewed{} },
}
