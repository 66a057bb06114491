package wallet

// DepositInput represents the request body for starting a wallet top-up.
type DepositInput struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// WebhookResponse reports what a gateway notification settled.
type WebhookResponse struct {
	Kind      string `json:"kind"`
	Reference string `json:"reference,omitempty"`
	Status    string `json:"status,omitempty"`
}
