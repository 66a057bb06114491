package dto

import (
	"time"

	"github.com/google/uuid"
)

// TotalRead is a count with the amount it sums to.
type TotalRead struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// StatsRead is the admin dashboard snapshot.
type StatsRead struct {
	Users struct {
		Total          int64 `json:"total"`
		Active         int64 `json:"active"`
		Investors      int64 `json:"investors"`
		BusinessOwners int64 `json:"business_owners"`
	} `json:"users"`
	KYC struct {
		Pending  int64 `json:"pending"`
		Verified int64 `json:"verified"`
		Rejected int64 `json:"rejected"`
	} `json:"kyc"`
	Projects struct {
		Total    int64            `json:"total"`
		ByStatus map[string]int64 `json:"by_status"`
		Goal     float64          `json:"goal_amount"`
		Raised   float64          `json:"current_funding"`
	} `json:"projects"`
	Investments        TotalRead `json:"investments"`
	PendingWithdrawals TotalRead `json:"pending_withdrawals"`
	WalletBalances     float64   `json:"wallet_balances"`
	ProfitDistributed  float64   `json:"profit_distributed"`
	Currency           string    `json:"currency"`
}

// DayRead is the investment volume of one UTC day.
type DayRead struct {
	Date   string  `json:"date"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// FinancialRead is the money that moved through the platform in a period.
type FinancialRead struct {
	From                time.Time `json:"from"`
	To                  time.Time `json:"to"`
	Investments         TotalRead `json:"investments"`
	Withdrawals         TotalRead `json:"completed_withdrawals"`
	ProfitDistributions TotalRead `json:"profit_distributions"`
	ProfitRuns          int64     `json:"profit_runs"`
	Net                 float64   `json:"net"`
	Currency            string    `json:"currency"`
	Daily               []DayRead `json:"daily_investments"`
}

// UserDetailRead is one user with their investments and recent journal.
type UserDetailRead struct {
	User              UserRead          `json:"user"`
	Investments       []InvestmentRead  `json:"investments"`
	Transactions      []TransactionRead `json:"transactions"`
	TotalTransactions int64             `json:"total_transactions"`
}

// ProjectInvestmentsRead lists a project's investments with their sum.
type ProjectInvestmentsRead struct {
	ProjectID   uuid.UUID        `json:"project_id"`
	Status      string           `json:"status,omitempty"`
	Count       int              `json:"count"`
	Total       float64          `json:"total"`
	Currency    string           `json:"currency"`
	Investments []InvestmentRead `json:"investments"`
}
