package payment

import (
	"context"
)

// Gateway is a hosted-checkout payment provider.
type Gateway interface {
	// Name identifies the provider in logs.
	Name() string

	// Initialize opens a checkout for params.Amount and returns the payer redirect.
	Initialize(ctx context.Context, params *InitializeParams) (*InitializeResult, error)

	// Verify asks the gateway for the current state of reference.
	Verify(ctx context.Context, reference string) (*VerifyResult, error)

	// ParseWebhook authenticates payload against signature and decodes it.
	// Returns domain.ErrInvalidSignature when the signature does not match.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}
