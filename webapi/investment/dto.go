package investment

import "github.com/demonyhq/demony/pkg/dto"

// InvestInput represents the request body for investing in a project.
// Amount is in major units.
type InvestInput struct {
	ProjectID string  `json:"project_id" validate:"required,uuid"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

// CheckoutResponse is a pending investment and where to pay for it.
type CheckoutResponse struct {
	Investment dto.InvestmentRead `json:"investment"`
	dto.CheckoutRead
}
