package project

import (
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/webapi/common"
	"github.com/shopspring/decimal"
)

// ProjectInput represents the editable fields of a project. Amounts are in
// major units.
type ProjectInput struct {
	Name                 string   `json:"name" validate:"required,max=200"`
	Category             string   `json:"category" validate:"required,max=50"`
	Description          string   `json:"description" validate:"max=5000"`
	GoalAmount           float64  `json:"goal_amount" validate:"required,gt=0"`
	MinInvestment        float64  `json:"min_investment" validate:"gte=0"`
	TargetReturn         float64  `json:"target_return" validate:"gte=0,lte=1000"`
	DurationMonths       int      `json:"duration_months" validate:"gte=0,lte=600"`
	RiskLevel            string   `json:"risk_level" validate:"omitempty,oneof=low medium high"`
	Featured             bool     `json:"featured"`
	Priority             int      `json:"priority"`
	InvestorSharePercent *float64 `json:"investor_share_percent" validate:"omitempty,gt=0,lte=100"`
}

// Params converts the input into domain parameters.
func (in ProjectInput) Params(code money.Code) (project.Params, error) {
	goal, err := common.AmountInput(in.GoalAmount, code)
	if err != nil {
		return project.Params{}, err
	}
	minimum, err := common.AmountInput(in.MinInvestment, code)
	if err != nil {
		return project.Params{}, err
	}
	p := project.Params{
		Name:           in.Name,
		Category:       in.Category,
		Description:    in.Description,
		GoalAmount:     goal,
		MinInvestment:  minimum,
		TargetReturn:   decimal.NewFromFloat(in.TargetReturn),
		DurationMonths: in.DurationMonths,
		RiskLevel:      project.RiskLevel(in.RiskLevel),
		Featured:       in.Featured,
		Priority:       in.Priority,
	}
	if in.InvestorSharePercent != nil {
		share := decimal.NewFromFloat(*in.InvestorSharePercent)
		p.InvestorSharePercent = &share
	}
	return p, nil
}

// OwnerParams is Params without the fields only admins may set.
func (in ProjectInput) OwnerParams(code money.Code) (project.Params, error) {
	p, err := in.Params(code)
	if err != nil {
		return p, err
	}
	p.Featured = false
	p.Priority = 0
	p.InvestorSharePercent = nil
	return p, nil
}
