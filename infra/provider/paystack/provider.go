// Package paystack implements payment.Gateway against the Paystack
// transaction API.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/provider/payment"
)

// SignatureHeader carries the HMAC-SHA512 of the webhook body.
const SignatureHeader = "x-paystack-signature"

// Provider talks to Paystack over HTTPS with the secret key as bearer token.
type Provider struct {
	cfg    *config.Paystack
	client *http.Client
	logger *slog.Logger
}

// New creates a Paystack gateway. A nil client gets a 30s default.
func New(cfg *config.Paystack, client *http.Client, logger *slog.Logger) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{cfg: cfg, client: client, logger: logger.With("provider", "paystack")}
}

// Name implements payment.Gateway.
func (p *Provider) Name() string { return "paystack" }

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency,omitempty"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type transactionData struct {
	Status    string            `json:"status"`
	Reference string            `json:"reference"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Metadata  map[string]string `json:"metadata"`
}

type webhookBody struct {
	Event string          `json:"event"`
	Data  transactionData `json:"data"`
}

// Initialize calls POST /transaction/initialize.
func (p *Provider) Initialize(
	ctx context.Context,
	params *payment.InitializeParams,
) (*payment.InitializeResult, error) {
	log := p.logger.With("method", "Initialize", "reference", params.Reference)
	callback := params.CallbackURL
	if callback == "" {
		callback = p.cfg.CallbackURL
	}
	req := initializeRequest{
		Email:       params.Email,
		Amount:      params.Amount,
		Currency:    params.Currency,
		Reference:   params.Reference,
		CallbackURL: callback,
		Metadata:    params.Metadata,
	}
	var out envelope[initializeData]
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", req, &out); err != nil {
		log.Error("Initialize failed", "error", err)
		return nil, err
	}
	log.Info("Initialize successful")
	ref := out.Data.Reference
	if ref == "" {
		ref = params.Reference
	}
	return &payment.InitializeResult{
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
		Reference:        ref,
	}, nil
}

// Verify calls GET /transaction/verify/:reference.
func (p *Provider) Verify(ctx context.Context, reference string) (*payment.VerifyResult, error) {
	var out envelope[transactionData]
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := p.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		p.logger.Error("Verify failed", "reference", reference, "error", err)
		return nil, err
	}
	return &payment.VerifyResult{
		Reference: out.Data.Reference,
		Status:    mapStatus(out.Data.Status),
		Amount:    out.Data.Amount,
		Currency:  out.Data.Currency,
		Metadata:  out.Data.Metadata,
	}, nil
}

// ParseWebhook checks the HMAC-SHA512 signature and decodes charge events.
func (p *Provider) ParseWebhook(
	_ context.Context,
	payload []byte,
	signature string,
) (*payment.WebhookEvent, error) {
	if !p.validSignature(payload, signature) {
		return nil, domain.ErrInvalidSignature
	}
	var body webhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	status := payment.PaymentPending
	switch body.Event {
	case "charge.success":
		status = payment.PaymentCompleted
	case "charge.failed":
		status = payment.PaymentFailed
	}
	return &payment.WebhookEvent{
		Type:      body.Event,
		Reference: body.Data.Reference,
		Status:    status,
		Amount:    body.Data.Amount,
		Currency:  body.Data.Currency,
	}, nil
}

// Sign returns the signature Paystack would send for payload.
func (p *Provider) Sign(payload []byte) string {
	mac := hmac.New(sha512.New, []byte(p.cfg.SecretKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *Provider) validSignature(payload []byte, signature string) bool {
	if p.cfg.SecretKey == "" || signature == "" {
		return false
	}
	expected := p.Sign(payload)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (p *Provider) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(p.cfg.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: paystack returned %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e envelope[json.RawMessage]
		_ = json.Unmarshal(raw, &e)
		return fmt.Errorf("%w: paystack: %s", domain.ErrValidation, e.Message)
	}
	return nil
}

func mapStatus(s string) payment.PaymentStatus {
	switch s {
	case "success":
		return payment.PaymentCompleted
	case "failed", "abandoned", "reversed":
		return payment.PaymentFailed
	default:
		return payment.PaymentPending
	}
}

var _ payment.Gateway = (*Provider)(nil)
