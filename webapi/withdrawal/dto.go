package withdrawal

import "github.com/demonyhq/demony/pkg/domain/withdrawal"

// WithdrawalInput represents a payout request. Amount is in major units.
type WithdrawalInput struct {
	Amount         float64                   `json:"amount" validate:"required,gt=0"`
	Method         string                    `json:"method" validate:"required,oneof=bank_transfer mobile_money"`
	AccountDetails withdrawal.AccountDetails `json:"account_details"`
}
