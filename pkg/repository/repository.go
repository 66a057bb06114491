package repository

import (
	"context"
	"time"

	"github.com/demonyhq/demony/pkg/domain/deposit"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/profit"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/domain/report"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/google/uuid"
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps paging to sane bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// BalanceStore holds wallet balances. Debit is a single atomic conditional
// update, so concurrent debits can never drive a balance below zero.
type BalanceStore interface {
	// Debit subtracts amount and returns the new balance.
	// Fails with ErrInvalidAmount, ErrUserNotFound or ErrInsufficientFunds without mutating.
	Debit(ctx context.Context, userID uuid.UUID, amount money.Amount) (money.Amount, error)
	// Credit adds amount and returns the new balance.
	Credit(ctx context.Context, userID uuid.UUID, amount money.Amount) (money.Amount, error)
	// GetBalance returns the current wallet balance.
	GetBalance(ctx context.Context, userID uuid.UUID) (money.Amount, error)
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role      user.Role
	KYCStatus user.KYCStatus
	Page
}

// UserRepository persists users and their wallet totals.
type UserRepository interface {
	BalanceStore
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	List(ctx context.Context, filter UserFilter) ([]*user.User, int64, error)
	AddInvested(ctx context.Context, id uuid.UUID, amount money.Amount) error
	AddEarnings(ctx context.Context, id uuid.UUID, amount money.Amount) error
	UpdateKYC(ctx context.Context, id uuid.UUID, status user.KYCStatus, verified bool, reason string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetRole(ctx context.Context, id uuid.UUID, role user.Role) error
}

// FundingLedger records project funding.
type FundingLedger interface {
	// RecordFunding adds amount to current funding and one to the investor count.
	// Fails with ErrProjectNotFound, ErrProjectNotActive or, when allowOverfunding
	// is false, ErrGoalExceeded.
	RecordFunding(ctx context.Context, projectID uuid.UUID, amount money.Amount, allowOverfunding bool) error
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Statuses []project.Status
	Category string
	Featured *bool
	OwnerID  *uuid.UUID
	Page
}

// ProjectRepository persists projects.
type ProjectRepository interface {
	FundingLedger
	Create(ctx context.Context, p *project.Project) error
	Get(ctx context.Context, id uuid.UUID) (*project.Project, error)
	Update(ctx context.Context, p *project.Project) error
	SetStatus(ctx context.Context, id uuid.UUID, status project.Status) error
	List(ctx context.Context, filter ProjectFilter) ([]*project.Project, int64, error)
	AddDistributed(ctx context.Context, id uuid.UUID, amount money.Amount, at time.Time) error
}

// InvestmentRepository persists investments.
type InvestmentRepository interface {
	Create(ctx context.Context, inv *investment.Investment) error
	Get(ctx context.Context, id uuid.UUID) (*investment.Investment, error)
	GetByReference(ctx context.Context, reference string) (*investment.Investment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*investment.Investment, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, status investment.Status) ([]*investment.Investment, error)
	// Transition moves the investment from one status to another.
	// Returns ErrNotPending when the current status is not from.
	Transition(ctx context.Context, id uuid.UUID, from, to investment.Status) error
	SetReference(ctx context.Context, id uuid.UUID, reference string) error
}

// TransactionRepository is the append-only journal. There is no update or delete.
type TransactionRepository interface {
	Append(ctx context.Context, tx *journal.Transaction) (uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter journal.Filter) ([]*journal.Transaction, int64, error)
	SumByUser(ctx context.Context, userID uuid.UUID, typ journal.Type) (money.Amount, error)
}

// WithdrawalRepository persists withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, w *withdrawal.Withdrawal) error
	Get(ctx context.Context, id uuid.UUID) (*withdrawal.Withdrawal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*withdrawal.Withdrawal, error)
	List(ctx context.Context, status withdrawal.Status, page Page) ([]*withdrawal.Withdrawal, int64, error)
	// Transition settles a pending withdrawal. Returns ErrNotPending otherwise.
	Transition(ctx context.Context, id uuid.UUID, t withdrawal.Transition) error
}

// ProfitRepository persists distribution records.
type ProfitRepository interface {
	// Create fails with ErrAlreadyExists when the run already credited the investment.
	Create(ctx context.Context, d *profit.Distribution) error
	Exists(ctx context.Context, runID string, investmentID uuid.UUID) (bool, error)
	ListByRun(ctx context.Context, runID string) ([]*profit.Distribution, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*profit.Distribution, error)
	SplitReport(ctx context.Context) ([]profit.SplitReport, error)
	// CreateRun stores a run header and its shares. ErrAlreadyExists when
	// the run id is taken.
	CreateRun(ctx context.Context, r *profit.Run) error
	// GetRun returns ErrNotFound for an unknown run id.
	GetRun(ctx context.Context, runID string) (*profit.Run, error)
}

// DepositRepository persists wallet top-ups.
type DepositRepository interface {
	Create(ctx context.Context, d *deposit.Deposit) error
	GetByReference(ctx context.Context, reference string) (*deposit.Deposit, error)
	// SetCheckout stores the gateway reference and payer redirect.
	SetCheckout(ctx context.Context, id uuid.UUID, reference, authorizationURL string) error
	// Transition returns ErrNotPending when the current status is not from.
	Transition(ctx context.Context, id uuid.UUID, from, to deposit.Status) error
}

// ReportRepository runs the read-only aggregates behind the admin reports.
type ReportRepository interface {
	Stats(ctx context.Context) (*report.Stats, error)
	// Financial sums investments, completed withdrawals and distributions
	// created inside the period.
	Financial(ctx context.Context, period report.Period) (*report.Financial, error)
}
