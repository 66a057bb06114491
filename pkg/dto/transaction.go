package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRead is one journal entry. Amount is signed.
type TransactionRead struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	Amount       float64   `json:"amount"`
	BalanceAfter float64   `json:"balance_after"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	Reference    string    `json:"reference,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// InvestmentRead is the API view of an investment.
type InvestmentRead struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	ProjectID        uuid.UUID       `json:"project_id"`
	Amount           float64         `json:"amount"`
	Currency         string          `json:"currency"`
	OwnershipPercent decimal.Decimal `json:"ownership_percent"`
	Status           string          `json:"status"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CheckoutRead is a gateway checkout to complete.
type CheckoutRead struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// DepositRead is the API view of a wallet top-up.
type DepositRead struct {
	ID               uuid.UUID `json:"id"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Reference        string    `json:"reference"`
	Status           string    `json:"status"`
	AuthorizationURL string    `json:"authorization_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// WithdrawalRead is the API view of a withdrawal request.
type WithdrawalRead struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	Amount          float64    `json:"amount"`
	Currency        string     `json:"currency"`
	Method          string     `json:"method"`
	Details         any        `json:"account_details"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	PayoutReference string     `json:"payout_reference,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DistributionRead is one profit credit.
type DistributionRead struct {
	ID                   uuid.UUID       `json:"id"`
	RunID                string          `json:"run_id"`
	UserID               uuid.UUID       `json:"user_id"`
	ProjectID            uuid.UUID       `json:"project_id"`
	InvestmentID         uuid.UUID       `json:"investment_id"`
	Amount               float64         `json:"amount"`
	OwnershipPercent     decimal.Decimal `json:"ownership_percent"`
	GrossProfit          float64         `json:"gross_profit"`
	InvestorSharePercent decimal.Decimal `json:"investor_share_percent"`
	Currency             string          `json:"currency"`
	CreatedAt            time.Time       `json:"created_at"`
}

// RunRead summarizes a profit distribution run.
type RunRead struct {
	RunID         string             `json:"run_id"`
	ProjectID     uuid.UUID          `json:"project_id"`
	Gross         float64            `json:"gross_profit"`
	InvestorShare decimal.Decimal    `json:"investor_share_percent"`
	InvestorPool  float64            `json:"investor_pool"`
	PlatformFee   float64            `json:"platform_fee"`
	Credited      int                `json:"credited"`
	Skipped       int                `json:"skipped"`
	CreditedTotal float64            `json:"credited_total"`
	Currency      string             `json:"currency"`
	Distributions []DistributionRead `json:"distributions"`
}

// SplitRead aggregates historical distributions at one investor share.
type SplitRead struct {
	InvestorSharePercent decimal.Decimal `json:"investor_share_percent"`
	Runs                 int             `json:"runs"`
	Distributions        int             `json:"distributions"`
	Total                float64         `json:"total"`
}

// AuditRead reports distributions made at a share other than the default.
type AuditRead struct {
	DefaultShare decimal.Decimal `json:"default_share_percent"`
	Splits       []SplitRead     `json:"splits"`
	Divergent    []SplitRead     `json:"divergent"`
}
