// Package decorator wraps collaborators with cross-cutting behaviour.
package decorator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/metrics"
	"github.com/demonyhq/demony/pkg/provider/payment"
)

// GatewayDecorator bounds every outbound gateway call by a timeout, maps
// deadline and transport failures to domain.ErrGatewayUnavailable and records
// latency. Webhook parsing is local and is only timed.
type GatewayDecorator struct {
	next    payment.Gateway
	timeout time.Duration
	logger  *slog.Logger
}

// NewGateway wraps next. A zero timeout disables the deadline.
func NewGateway(next payment.Gateway, timeout time.Duration, logger *slog.Logger) *GatewayDecorator {
	if logger == nil {
		logger = slog.Default()
	}
	return &GatewayDecorator{
		next:    next,
		timeout: timeout,
		logger:  logger.With("gateway", next.Name()),
	}
}

func (g *GatewayDecorator) Name() string { return g.next.Name() }

func (g *GatewayDecorator) Initialize(
	ctx context.Context,
	params *payment.InitializeParams,
) (res *payment.InitializeResult, err error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	defer g.observe("initialize", time.Now(), &err)

	res, err = g.next.Initialize(ctx, params)
	return res, g.mapErr(ctx, err)
}

func (g *GatewayDecorator) Verify(ctx context.Context, reference string) (res *payment.VerifyResult, err error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()
	defer g.observe("verify", time.Now(), &err)

	res, err = g.next.Verify(ctx, reference)
	return res, g.mapErr(ctx, err)
}

func (g *GatewayDecorator) ParseWebhook(
	ctx context.Context,
	payload []byte,
	signature string,
) (ev *payment.WebhookEvent, err error) {
	defer g.observe("webhook", time.Now(), &err)
	return g.next.ParseWebhook(ctx, payload, signature)
}

func (g *GatewayDecorator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *GatewayDecorator) mapErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrGatewayUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: timed out after %s", domain.ErrGatewayUnavailable, g.timeout)
	}
	return err
}

func (g *GatewayDecorator) observe(method string, start time.Time, err *error) {
	metrics.ObserveGateway(g.next.Name(), method, start, *err)
	if *err != nil {
		g.logger.Warn("gateway call failed", "method", method, "elapsed", time.Since(start), "error", *err)
	}
}

var _ payment.Gateway = (*GatewayDecorator)(nil)
