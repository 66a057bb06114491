package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectRead is the API view of a project.
type ProjectRead struct {
	ID                     uuid.UUID        `json:"id"`
	Name                   string           `json:"name"`
	Category               string           `json:"category"`
	Description            string           `json:"description"`
	GoalAmount             float64          `json:"goal_amount"`
	CurrentFunding         float64          `json:"current_funding"`
	FundingProgress        decimal.Decimal  `json:"funding_progress"`
	MinInvestment          float64          `json:"min_investment"`
	InvestorCount          int              `json:"investor_count"`
	Status                 string           `json:"status"`
	TargetReturn           decimal.Decimal  `json:"target_return"`
	DurationMonths         int              `json:"duration_months"`
	RiskLevel              string           `json:"risk_level"`
	Featured               bool             `json:"featured"`
	Priority               int              `json:"priority"`
	OwnerID                *uuid.UUID       `json:"owner_id,omitempty"`
	InvestorSharePercent   *decimal.Decimal `json:"investor_share_percent,omitempty"`
	TotalProfitDistributed float64          `json:"total_profit_distributed"`
	LastDistributionAt     *time.Time       `json:"last_distribution_at,omitempty"`
	Currency               string           `json:"currency"`
	CreatedAt              time.Time        `json:"created_at"`
}

// AllocationRead is one category slice of a portfolio.
type AllocationRead struct {
	Category string          `json:"category"`
	Amount   float64         `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
}

// HoldingRead is one investment with its project context.
type HoldingRead struct {
	InvestmentRead
	ProjectName string `json:"project_name"`
	Category    string `json:"category"`
}

// PortfolioRead is an investor's portfolio.
type PortfolioRead struct {
	WalletBalance float64          `json:"wallet_balance"`
	TotalInvested float64          `json:"total_invested"`
	TotalEarnings float64          `json:"total_earnings"`
	ActiveCount   int              `json:"active_count"`
	PendingCount  int              `json:"pending_count"`
	Currency      string           `json:"currency"`
	Allocation    []AllocationRead `json:"allocation"`
	Holdings      []HoldingRead    `json:"holdings"`
}
