package admin

// KYCInput represents an admin KYC decision.
type KYCInput struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Reason   string `json:"reason" validate:"required_if=Decision reject,max=500"`
}

// StatusInput suspends or reinstates a user.
type StatusInput struct {
	Active *bool `json:"active" validate:"required"`
}

// ReviewInput represents an admin decision on a submitted project.
type ReviewInput struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject request_changes"`
}

// ProjectStatusInput forces a project status.
type ProjectStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ProcessWithdrawalInput approves or rejects a pending withdrawal.
type ProcessWithdrawalInput struct {
	Action          string `json:"action" validate:"required,oneof=approve reject"`
	PayoutReference string `json:"payout_reference" validate:"max=100"`
	Reason          string `json:"reason" validate:"required_if=Action reject,max=500"`
}

// DistributeInput represents a profit distribution request. GrossProfit is in
// major units. RunID makes retries safe; leave it empty to generate one.
type DistributeInput struct {
	GrossProfit float64 `json:"gross_profit" validate:"required,gt=0"`
	RunID       string  `json:"run_id" validate:"max=100"`
	Description string  `json:"description" validate:"max=500"`
}
