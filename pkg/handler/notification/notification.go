// Package notification subscribes to ledger events and notifies the user
// they concern. Delivery is best-effort: failures are logged and swallowed.
// Sends run off the publishing goroutine, bounded in number and duration.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/eventbus"
	handlercommon "github.com/demonyhq/demony/pkg/handler/common"
	"github.com/demonyhq/demony/pkg/notification"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
)

// Handler turns events into notifications.
type Handler struct {
	uow      repository.UnitOfWork
	notifier notification.Notifier
	currency money.Code
	logger   *slog.Logger
	seen     *handlercommon.IdempotencyTracker

	timeout time.Duration
	slots   chan struct{}
	wg      sync.WaitGroup
}

const (
	DefaultSendTimeout = 15 * time.Second
	DefaultMaxInFlight = 32
)

// New creates a notification handler.
func New(
	uow repository.UnitOfWork,
	notifier notification.Notifier,
	currency money.Code,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		uow:      uow,
		notifier: notifier,
		currency: currency,
		logger:   logger.With("handler", "notification"),
		seen:     handlercommon.NewIdempotencyTracker(),
		timeout:  DefaultSendTimeout,
		slots:    make(chan struct{}, DefaultMaxInFlight),
	}
}

// WithLimits bounds each send to timeout and caps concurrent sends at
// maxInFlight. Zero values keep the defaults. Call before Register.
func (h *Handler) WithLimits(timeout time.Duration, maxInFlight int) *Handler {
	if timeout > 0 {
		h.timeout = timeout
	}
	if maxInFlight > 0 {
		h.slots = make(chan struct{}, maxInFlight)
	}
	return h
}

// Wait blocks until every dispatched send has returned or timed out.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Register subscribes the handler to every event that warrants a message.
// Redelivered events are sent once.
func (h *Handler) Register(bus eventbus.Bus) {
	for t, fn := range map[events.EventType]eventbus.HandlerFunc{
		events.EventTypeInvestmentCreated:   h.HandleInvestmentCreated(),
		events.EventTypeInvestmentFailed:    h.HandleInvestmentFailed(),
		events.EventTypeDepositCompleted:    h.HandleDepositCompleted(),
		events.EventTypeWithdrawalRequested: h.HandleWithdrawalRequested(),
		events.EventTypeWithdrawalProcessed: h.HandleWithdrawalProcessed(),
		events.EventTypeProfitDistributed:   h.HandleProfitDistributed(),
		events.EventTypeKYCReviewed:         h.HandleKYCReviewed(),
	} {
		bus.Register(t, handlercommon.WithIdempotency(fn, h.seen, handlercommon.EventKey, "notification."+t.String(), h.logger))
	}
}

func (h *Handler) HandleInvestmentCreated() eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.InvestmentCreated)
		if !ok {
			return unexpected(e)
		}
		return h.send(ctx, ev.UserID, notification.TemplateInvestmentConfirmed, map[string]any{
			"amount":    h.format(ev.Amount),
			"ownership": ev.OwnershipPercent + "%",
		})
	}
}

func (h *Handler) HandleInvestmentFailed() eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.InvestmentFailed)
		if !ok {
			return unexpected(e)
		}
		data := map[string]any{"reason": ev.Reason}
		if ev.Refunded > 0 {
			data["credited_to_wallet"] = h.format(ev.Refunded)
		}
		return h.send(ctx, ev.UserID, notification.TemplateInvestmentFailed, data)
	}
}

func (h *Handler) HandleDepositCompleted() eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.DepositCompleted)
		if !ok {
			return unexpected(e)
		}
		return h.send(ctx, ev.UserID, notification.TemplateDepositCompleted, map[string]any{
			"amount":    h.format(ev.Amount),
			"reference": ev.Reference,
		})
	}
}

func (h *Handler) HandleWithdrawalRequested() eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.WithdrawalRequested)
		if !ok {
			return unexpected(e)
		}
		return h.send(ctx, ev.UserID, notification.TemplateWithdrawalRequested, map[string]any{
			"amount": h.format(ev.Amount),
			"method": ev.Method,
		})
	}
}

func (h *Handler) HandleWithdrawalProcessed() eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.WithdrawalProcessed)
		if !ok {
			return unexpected(e)
		}
		data := map[string]any{"amount": h.format(ev.Amount), "status": ev.Status}
		if ev.Reason != "" {
			data["reason"] = ev.Reason
		}
		return h.send(ctx, ev.UserID, notification.TemplateWithdrawalProcessed, data)
	}
}

func (h *Handler) HandleProfitDistributed() eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.ProfitDistributed)
		if !ok {
			return unexpected(e)
		}
		return h.send(ctx, ev.UserID, notification.TemplateProfitDistributed, map[string]any{
			"amount":  h.format(ev.Amount),
			"project": ev.ProjectName,
			"run_id":  ev.RunID,
		})
	}
}

func (h *Handler) HandleKYCReviewed() eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		ev, ok := e.(*events.KYCReviewed)
		if !ok {
			return unexpected(e)
		}
		data := map[string]any{"status": ev.Status}
		if ev.Reason != "" {
			data["reason"] = ev.Reason
		}
		return h.send(ctx, ev.UserID, notification.TemplateKYCReviewed, data)
	}
}

func (h *Handler) send(ctx context.Context, userID uuid.UUID, tmpl notification.Template, data map[string]any) error {
	log := h.logger.With("template", tmpl, "user_id", userID)
	users, err := h.uow.UserRepository()
	if err != nil {
		return err
	}
	u, err := users.Get(ctx, userID)
	if err != nil {
		log.Warn("recipient lookup failed", "error", err)
		return nil
	}
	h.dispatch(ctx, log, tmpl, notification.Recipient{Email: u.Email, Name: u.Name}, data)
	return nil
}

// dispatch hands the send to a goroutine and returns at once. When all
// slots are busy the message is dropped rather than queued.
func (h *Handler) dispatch(
	ctx context.Context,
	log *slog.Logger,
	tmpl notification.Template,
	to notification.Recipient,
	data map[string]any,
) {
	select {
	case h.slots <- struct{}{}:
	default:
		log.Warn("notification dropped: too many sends in flight")
		return
	}
	h.wg.Add(1)
	go func() {
		defer func() {
			<-h.slots
			h.wg.Done()
		}()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()
		if err := h.notifier.Send(sendCtx, tmpl, to, data); err != nil {
			log.Warn("notification not delivered", "error", err)
		}
	}()
}

func (h *Handler) format(amount money.Amount) string {
	m, err := money.FromMinor(amount, h.currency)
	if err != nil {
		return fmt.Sprintf("%d", amount)
	}
	return m.String()
}

func unexpected(e events.Event) error {
	return fmt.Errorf("unexpected event type %T", e)
}
