// Package stripepayment implements payment.Gateway with Stripe Checkout.
package stripepayment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/provider/payment"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader carries the Stripe webhook signature.
const SignatureHeader = "Stripe-Signature"

// StripePaymentProvider implements payment.Gateway using Checkout Sessions.
// The session ID is the payment reference; the caller's own reference
// travels as ClientReferenceID.
type StripePaymentProvider struct {
	client          *stripe.Client
	cfg             *config.Stripe
	logger          *slog.Logger
	webhookHandlers map[stripe.EventType]webhookHandler
}

type webhookHandler func(stripe.Event, *slog.Logger) (*payment.WebhookEvent, error)

// New creates a StripePaymentProvider.
func New(cfg *config.Stripe, logger *slog.Logger) *StripePaymentProvider {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StripePaymentProvider{
		client: stripe.NewClient(cfg.ApiKey),
		cfg:    cfg,
		logger: logger.With("provider", "stripe"),
	}
	s.webhookHandlers = map[stripe.EventType]webhookHandler{
		"checkout.session.completed":               s.handleCheckoutSession,
		"checkout.session.async_payment_succeeded": s.handleCheckoutSession,
		"checkout.session.async_payment_failed":    s.handleCheckoutSession,
		"checkout.session.expired":                 s.handleCheckoutSession,
	}
	return s
}

// Name implements payment.Gateway.
func (s *StripePaymentProvider) Name() string { return "stripe" }

// Initialize creates a Checkout Session for a single line item.
func (s *StripePaymentProvider) Initialize(
	ctx context.Context,
	params *payment.InitializeParams,
) (*payment.InitializeResult, error) {
	log := s.logger.With("method", "Initialize", "reference", params.Reference)

	metadata := map[string]string{"reference": params.Reference}
	maps.Copy(metadata, params.Metadata)

	description := params.Description
	if description == "" {
		description = params.Reference
	}
	successURL := s.cfg.SuccessPath
	if params.CallbackURL != "" {
		successURL = params.CallbackURL
	}

	create := &stripe.CheckoutSessionCreateParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(successURL),
		CancelURL:          stripe.String(s.cfg.CancelPath),
		ClientReferenceID:  stripe.String(params.Reference),
		Metadata:           metadata,
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Metadata: metadata,
		},
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(params.Currency)),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(description)},
				UnitAmount: stripe.Int64(params.Amount),
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if params.Email != "" {
		create.CustomerEmail = stripe.String(params.Email)
	}

	session, err := s.client.V1CheckoutSessions.Create(ctx, create)
	if err != nil {
		log.Error("failed to create checkout session", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	log.Info("Created checkout session", "session_id", session.ID)

	return &payment.InitializeResult{
		AuthorizationURL: session.URL,
		AccessCode:       params.Reference,
		Reference:        session.ID,
	}, nil
}

// Verify retrieves the Checkout Session and maps its payment status.
func (s *StripePaymentProvider) Verify(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	session, err := s.client.V1CheckoutSessions.Retrieve(ctx, reference, nil)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == http.StatusNotFound {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("Verify failed", "reference", reference, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	return sessionResult(session), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes checkout events.
// Unhandled event types decode to a nil event and no error.
func (s *StripePaymentProvider) ParseWebhook(
	_ context.Context,
	payload []byte,
	signature string,
) (*payment.WebhookEvent, error) {
	log := s.logger.With("method", "ParseWebhook")
	if s.cfg.SigningSecret == "" {
		return nil, fmt.Errorf("%w: signing secret not configured", domain.ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(
		payload, signature, s.cfg.SigningSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		log.Warn("webhook signature rejected", "error", err)
		return nil, domain.ErrInvalidSignature
	}
	log.Info("Received webhook event", "type", event.Type, "id", event.ID)

	handler, ok := s.webhookHandlers[event.Type]
	if !ok {
		log.Debug("No handler for event type", "type", event.Type)
		return nil, nil
	}
	return handler(event, log)
}

func (s *StripePaymentProvider) handleCheckoutSession(
	event stripe.Event,
	log *slog.Logger,
) (*payment.WebhookEvent, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Error("parsing checkout session", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	res := sessionResult(&session)
	return &payment.WebhookEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		Reference: session.ID,
		Status:    res.Status,
		Amount:    res.Amount,
		Currency:  res.Currency,
	}, nil
}

func sessionResult(session *stripe.CheckoutSession) *payment.VerifyResult {
	status := payment.PaymentPending
	switch {
	case session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		session.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		status = payment.PaymentCompleted
	case session.Status == stripe.CheckoutSessionStatusExpired:
		status = payment.PaymentFailed
	}
	return &payment.VerifyResult{
		Reference: session.ID,
		Status:    status,
		Amount:    session.AmountTotal,
		Currency:  strings.ToUpper(string(session.Currency)),
		Metadata:  session.Metadata,
	}
}

var _ payment.Gateway = (*StripePaymentProvider)(nil)
