package payment

import "github.com/demonyhq/demony/pkg/domain/money"

// PaymentStatus represents the status of a payment.
type PaymentStatus string

const (
	// PaymentPending indicates the payment is still pending.
	PaymentPending PaymentStatus = "pending"
	// PaymentCompleted indicates the payment has completed successfully.
	PaymentCompleted PaymentStatus = "completed"
	// PaymentFailed indicates the payment has failed or was abandoned.
	PaymentFailed PaymentStatus = "failed"
)

// InitializeParams holds the parameters for starting a hosted checkout.
// Amount is in minor units of Currency.
type InitializeParams struct {
	Email       string
	Amount      money.Amount
	Currency    string
	Reference   string
	CallbackURL string
	Description string
	Metadata    map[string]string
}

// InitializeResult is what the payer needs to complete the charge.
//
// Reference is the id the gateway will report back on verify and webhook.
// Gateways that mint their own id (Stripe checkout sessions) return it here.
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult is the gateway's view of a charge.
type VerifyResult struct {
	Reference string
	Status    PaymentStatus
	Amount    money.Amount
	Currency  string
	Metadata  map[string]string
}

// Success reports whether the gateway confirmed the charge.
func (r *VerifyResult) Success() bool {
	return r != nil && r.Status == PaymentCompleted
}

// WebhookEvent is a verified, gateway-neutral webhook notification.
type WebhookEvent struct {
	ID        string
	Type      string
	Reference string
	Status    PaymentStatus
	Amount    money.Amount
	Currency  string
}
