package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a project. Transitions are admin-driven.
type Status string

const (
	StatusPendingReview    Status = "pending_review"
	StatusActive           Status = "active"
	StatusInactive         Status = "inactive"
	StatusFunded           Status = "funded"
	StatusCompleted        Status = "completed"
	StatusRejected         Status = "rejected"
	StatusChangesRequested Status = "changes_requested"
	StatusRemoved          Status = "removed"
)

var statuses = map[Status]struct{}{
	StatusPendingReview: {}, StatusActive: {}, StatusInactive: {}, StatusFunded: {},
	StatusCompleted: {}, StatusRejected: {}, StatusChangesRequested: {}, StatusRemoved: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statuses[s]
	return ok
}

// RiskLevel is the advertised risk band.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Project is a fundable business listing.
//
// CurrentFunding may exceed GoalAmount unless overfunding is disabled in config.
type Project struct {
	ID                     uuid.UUID
	Name                   string
	Category               string
	Description            string
	GoalAmount             money.Amount
	CurrentFunding         money.Amount
	MinInvestment          money.Amount
	InvestorCount          int
	Status                 Status
	TargetReturn           decimal.Decimal
	DurationMonths         int
	RiskLevel              RiskLevel
	Featured               bool
	Priority               int
	OwnerID                *uuid.UUID
	InvestorSharePercent   *decimal.Decimal
	TotalProfitDistributed money.Amount
	LastDistributionAt     *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Params holds the editable fields of a project.
type Params struct {
	Name                 string
	Category             string
	Description          string
	GoalAmount           money.Amount
	MinInvestment        money.Amount
	TargetReturn         decimal.Decimal
	DurationMonths       int
	RiskLevel            RiskLevel
	Featured             bool
	Priority             int
	InvestorSharePercent *decimal.Decimal
}

// Validate checks the invariants shared by create and update.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if p.GoalAmount <= 0 {
		return fmt.Errorf("%w: goal amount must be positive", domain.ErrValidation)
	}
	if p.MinInvestment < 0 {
		return fmt.Errorf("%w: minimum investment cannot be negative", domain.ErrValidation)
	}
	if p.DurationMonths < 0 {
		return fmt.Errorf("%w: duration cannot be negative", domain.ErrValidation)
	}
	if p.RiskLevel != "" && !p.RiskLevel.Valid() {
		return fmt.Errorf("%w: unknown risk level %q", domain.ErrValidation, p.RiskLevel)
	}
	if s := p.InvestorSharePercent; s != nil {
		if s.LessThanOrEqual(decimal.Zero) || s.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: investor share must be in (0, 100]", domain.ErrValidation)
		}
	}
	return nil
}

// New builds a project in the given initial status.
func New(p Params, status Status, ownerID *uuid.UUID) (*Project, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	if p.RiskLevel == "" {
		p.RiskLevel = RiskMedium
	}
	now := time.Now().UTC()
	pr := &Project{
		ID:        uuid.New(),
		Status:    status,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	pr.Apply(p)
	return pr, nil
}

// Apply copies editable fields onto the project.
// Existing investments keep their frozen ownership percent when the goal changes.
func (pr *Project) Apply(p Params) {
	pr.Name = strings.TrimSpace(p.Name)
	pr.Category = strings.TrimSpace(p.Category)
	pr.Description = p.Description
	pr.GoalAmount = p.GoalAmount
	pr.MinInvestment = p.MinInvestment
	pr.TargetReturn = p.TargetReturn
	pr.DurationMonths = p.DurationMonths
	if p.RiskLevel != "" {
		pr.RiskLevel = p.RiskLevel
	}
	pr.Featured = p.Featured
	pr.Priority = p.Priority
	pr.InvestorSharePercent = p.InvestorSharePercent
}

// AcceptsFunding reports whether investments may be recorded.
func (pr *Project) AcceptsFunding() error {
	if pr.Status != StatusActive {
		return domain.ErrProjectNotActive
	}
	return nil
}

// EffectiveMinimum returns the minimum ticket for this project: the project's
// own minimum when set, otherwise the platform default.
func (pr *Project) EffectiveMinimum(platformMin money.Amount) money.Amount {
	if pr.MinInvestment > 0 {
		return pr.MinInvestment
	}
	return platformMin
}

// InvestorShare returns the percent of gross profit paid to investors.
func (pr *Project) InvestorShare(platformDefault decimal.Decimal) decimal.Decimal {
	if pr.InvestorSharePercent != nil {
		return *pr.InvestorSharePercent
	}
	return platformDefault
}

// FundingProgress returns current funding as a percent of the goal.
func (pr *Project) FundingProgress() decimal.Decimal {
	if pr.GoalAmount <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(pr.CurrentFunding).
		Div(decimal.NewFromInt(pr.GoalAmount)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// ReviewDecision is an admin verdict on a submitted project.
type ReviewDecision string

const (
	ReviewApprove        ReviewDecision = "approve"
	ReviewReject         ReviewDecision = "reject"
	ReviewRequestChanges ReviewDecision = "request_changes"
)

// Review returns the status a project moves to for decision.
func (pr *Project) Review(decision ReviewDecision) (Status, error) {
	if pr.Status != StatusPendingReview && pr.Status != StatusChangesRequested {
		return "", fmt.Errorf("%w: project is %s", domain.ErrNotPending, pr.Status)
	}
	switch decision {
	case ReviewApprove:
		return StatusActive, nil
	case ReviewReject:
		return StatusRejected, nil
	case ReviewRequestChanges:
		return StatusChangesRequested, nil
	default:
		return "", fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}
}
