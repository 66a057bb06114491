package mockpayment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/provider/payment"
)

// Signature is the only webhook signature the mock accepts.
const Signature = "mock-signature"

// SignatureHeader carries Signature on mock webhooks.
const SignatureHeader = "X-Mock-Signature"

type mockPayment struct {
	status   payment.PaymentStatus
	amount   money.Amount
	currency string
}

// MockPaymentProvider simulates a hosted-checkout gateway for tests and
// local development. Charges stay pending until SetStatus or Complete is
// called, unless AutoComplete is set.
//
// This is NOT for production use.
type MockPaymentProvider struct {
	mu       sync.Mutex
	payments map[string]*mockPayment

	// AutoComplete marks every initialized charge as paid.
	AutoComplete bool
	// InitializeErr, when set, is returned by Initialize.
	InitializeErr error
	// VerifyDelay slows Verify down, honoring ctx cancellation.
	VerifyDelay time.Duration

	verifyCalls atomic.Int64
}

// NewMockPaymentProvider creates a new instance of MockPaymentProvider.
func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{
		payments: make(map[string]*mockPayment),
	}
}

// Name implements payment.Gateway.
func (m *MockPaymentProvider) Name() string { return "mock" }

// Initialize records a pending charge under params.Reference.
func (m *MockPaymentProvider) Initialize(
	ctx context.Context,
	params *payment.InitializeParams,
) (*payment.InitializeResult, error) {
	if m.InitializeErr != nil {
		return nil, m.InitializeErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	status := payment.PaymentPending
	if m.AutoComplete {
		status = payment.PaymentCompleted
	}
	m.mu.Lock()
	m.payments[params.Reference] = &mockPayment{
		status:   status,
		amount:   params.Amount,
		currency: params.Currency,
	}
	m.mu.Unlock()
	return &payment.InitializeResult{
		AuthorizationURL: "https://checkout.mock.local/pay/" + params.Reference,
		AccessCode:       "mock_" + params.Reference,
		Reference:        params.Reference,
	}, nil
}

// Verify returns the simulated state of reference.
func (m *MockPaymentProvider) Verify(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	m.verifyCalls.Add(1)
	if m.VerifyDelay > 0 {
		select {
		case <-time.After(m.VerifyDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[reference]
	if !ok {
		return nil, fmt.Errorf("%w: unknown reference %s", domain.ErrNotFound, reference)
	}
	return &payment.VerifyResult{
		Reference: reference,
		Status:    p.status,
		Amount:    p.amount,
		Currency:  p.currency,
	}, nil
}

// ParseWebhook decodes {"reference": "...", "status": "completed"} payloads.
func (m *MockPaymentProvider) ParseWebhook(
	_ context.Context,
	payload []byte,
	signature string,
) (*payment.WebhookEvent, error) {
	if signature != Signature {
		return nil, domain.ErrInvalidSignature
	}
	var body struct {
		Reference string                `json:"reference"`
		Status    payment.PaymentStatus `json:"status"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := &payment.WebhookEvent{
		Type:      "charge." + string(body.Status),
		Reference: body.Reference,
		Status:    body.Status,
	}
	if p, ok := m.payments[body.Reference]; ok {
		ev.Amount = p.amount
		ev.Currency = p.currency
	}
	return ev, nil
}

// SetStatus forces the state of a charge.
func (m *MockPaymentProvider) SetStatus(reference string, status payment.PaymentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[reference]; ok {
		p.status = status
		return
	}
	m.payments[reference] = &mockPayment{status: status}
}

// Complete marks reference as paid.
func (m *MockPaymentProvider) Complete(reference string) {
	m.SetStatus(reference, payment.PaymentCompleted)
}

// SetAmount overrides the amount the gateway reports as charged.
func (m *MockPaymentProvider) SetAmount(reference string, amount money.Amount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[reference]; ok {
		p.amount = amount
	}
}

// VerifyCalls returns how many times Verify has been called.
func (m *MockPaymentProvider) VerifyCalls() int64 {
	return m.verifyCalls.Load()
}

var _ payment.Gateway = (*MockPaymentProvider)(nil)
