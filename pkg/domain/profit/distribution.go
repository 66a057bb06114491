package profit

import (
	"fmt"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Distribution records one investor credit of one run. (RunID, InvestmentID)
// is unique, which is what makes a run safe to retry.
type Distribution struct {
	ID                   uuid.UUID
	RunID                string
	UserID               uuid.UUID
	ProjectID            uuid.UUID
	InvestmentID         uuid.UUID
	Amount               money.Amount
	OwnershipPercent     decimal.Decimal
	GrossProfit          money.Amount
	InvestorSharePercent decimal.Decimal
	Description          string
	CreatedAt            time.Time
}

// Share is the computed credit for a single investment.
type Share struct {
	InvestmentID     uuid.UUID
	UserID           uuid.UUID
	OwnershipPercent decimal.Decimal
	Amount           money.Amount
}

// Plan is the full split of a gross profit figure across a project's investors.
type Plan struct {
	ProjectID     uuid.UUID
	Gross         money.Amount
	InvestorShare decimal.Decimal
	InvestorPool  money.Amount
	PlatformFee   money.Amount
	Shares        []Share
}

// NewPlan splits gross among active investments. Each share is
// gross * investorShare/100 * ownership/100, rounded to the minor unit.
func NewPlan(projectID uuid.UUID, gross money.Amount, investorShare decimal.Decimal, investments []*investment.Investment) (*Plan, error) {
	if gross <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if investorShare.LessThanOrEqual(decimal.Zero) || investorShare.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: investor share must be in (0, 100]", domain.ErrValidation)
	}
	g := decimal.NewFromInt(gross)
	pool := g.Mul(investorShare).Div(hundred).Round(0).IntPart()
	plan := &Plan{
		ProjectID:     projectID,
		Gross:         gross,
		InvestorShare: investorShare,
		InvestorPool:  pool,
		PlatformFee:   gross - pool,
	}
	for _, inv := range investments {
		if inv.Status != investment.StatusActive {
			continue
		}
		amount := g.Mul(investorShare).Mul(inv.OwnershipPercent).Div(hundred).Div(hundred).Round(0).IntPart()
		plan.Shares = append(plan.Shares, Share{
			InvestmentID:     inv.ID,
			UserID:           inv.UserID,
			OwnershipPercent: inv.OwnershipPercent,
			Amount:           amount,
		})
	}
	if len(plan.Shares) == 0 {
		return nil, fmt.Errorf("%w: no active investments for project", domain.ErrValidation)
	}
	return plan, nil
}

// Distribution builds the record for share within run.
func (p *Plan) Distribution(runID, description string, s Share) *Distribution {
	return &Distribution{
		ID:                   uuid.New(),
		RunID:                runID,
		UserID:               s.UserID,
		ProjectID:            p.ProjectID,
		InvestmentID:         s.InvestmentID,
		Amount:               s.Amount,
		OwnershipPercent:     s.OwnershipPercent,
		GrossProfit:          p.Gross,
		InvestorSharePercent: p.InvestorShare,
		Description:          description,
		CreatedAt:            time.Now().UTC(),
	}
}

// Run pins a distribution run to the inputs of its first call. Retries of
// the same run id credit exactly these shares.
type Run struct {
	RunID         string
	ProjectID     uuid.UUID
	Gross         money.Amount
	InvestorShare decimal.Decimal
	InvestorPool  money.Amount
	PlatformFee   money.Amount
	Description   string
	Shares        []Share
	CreatedAt     time.Time
}

// Pin freezes the plan under runID.
func (p *Plan) Pin(runID, description string) *Run {
	return &Run{
		RunID:         runID,
		ProjectID:     p.ProjectID,
		Gross:         p.Gross,
		InvestorShare: p.InvestorShare,
		InvestorPool:  p.InvestorPool,
		PlatformFee:   p.PlatformFee,
		Description:   description,
		Shares:        p.Shares,
		CreatedAt:     time.Now().UTC(),
	}
}

// Plan returns the frozen split.
func (r *Run) Plan() *Plan {
	return &Plan{
		ProjectID:     r.ProjectID,
		Gross:         r.Gross,
		InvestorShare: r.InvestorShare,
		InvestorPool:  r.InvestorPool,
		PlatformFee:   r.PlatformFee,
		Shares:        r.Shares,
	}
}

// CheckRetry rejects a call that reuses the run id for another project or
// another gross figure.
func (r *Run) CheckRetry(projectID uuid.UUID, gross money.Amount) error {
	if r.ProjectID != projectID {
		return fmt.Errorf("%w: run %s belongs to another project", domain.ErrValidation, r.RunID)
	}
	if r.Gross != gross {
		return fmt.Errorf("%w: run %s was started with gross %d, got %d", domain.ErrValidation, r.RunID, r.Gross, gross)
	}
	return nil
}

// NormalizeRunID trims the id and rejects empty values.
func NormalizeRunID(runID string) (string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return "", fmt.Errorf("%w: run id is required", domain.ErrValidation)
	}
	if len(runID) > 64 {
		return "", fmt.Errorf("%w: run id too long", domain.ErrValidation)
	}
	return runID, nil
}

// Summary reports the outcome of a distribution call.
type Summary struct {
	RunID         string
	ProjectID     uuid.UUID
	Gross         money.Amount
	InvestorShare decimal.Decimal
	InvestorPool  money.Amount
	PlatformFee   money.Amount
	Credited      int
	Skipped       int
	CreditedTotal money.Amount
	Distributions []*Distribution
}

// SplitReport groups historical distributions by the split they were paid under.
type SplitReport struct {
	InvestorSharePercent decimal.Decimal
	Runs                 int
	Distributions        int
	Total                money.Amount
}
