// Package wallet handles balances, the transaction history and gateway
// funded top-ups.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/deposit"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/eventbus"
	"github.com/demonyhq/demony/pkg/metrics"
	"github.com/demonyhq/demony/pkg/provider/payment"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ReferencePrefix marks gateway references that belong to deposits.
const ReferencePrefix = "DEP"

// InvestmentVerifier settles gateway-backed investments reported by a webhook.
type InvestmentVerifier interface {
	VerifyInvestment(ctx context.Context, reference string) (*investment.Investment, error)
}

// Balance is a user's wallet summary.
type Balance struct {
	Balance       money.Amount
	TotalInvested money.Amount
	TotalEarnings money.Amount
	Currency      money.Code
}

// WebhookKind tells what a webhook reference resolved to.
type WebhookKind string

const (
	WebhookDeposit    WebhookKind = "deposit"
	WebhookInvestment WebhookKind = "investment"
	WebhookIgnored    WebhookKind = "ignored"
)

// WebhookResult reports how a webhook was routed.
type WebhookResult struct {
	Kind      WebhookKind
	Reference string
	Status    string
}

// Service manages wallets.
type Service struct {
	uow         repository.UnitOfWork
	gateway     payment.Gateway
	investments InvestmentVerifier
	bus         eventbus.Bus
	policy      ledger.Policy
	callbackURL string
	logger      *slog.Logger
	verifies    singleflight.Group
}

// New creates a wallet service.
func New(
	uow repository.UnitOfWork,
	gateway payment.Gateway,
	investments InvestmentVerifier,
	bus eventbus.Bus,
	policy ledger.Policy,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:         uow,
		gateway:     gateway,
		investments: investments,
		bus:         bus,
		policy:      policy,
		logger:      logger.With("service", "wallet"),
	}
}

// WithCallbackURL sets where the gateway sends the payer after checkout.
func (s *Service) WithCallbackURL(url string) *Service {
	s.callbackURL = url
	return s
}

// Balance returns the wallet balance and running totals.
func (s *Service) Balance(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Balance{
		Balance:       u.WalletBalance,
		TotalInvested: u.TotalInvested,
		TotalEarnings: u.TotalEarnings,
		Currency:      s.policy.Currency,
	}, nil
}

// Transactions returns a page of the user's journal, newest first, and the total count.
func (s *Service) Transactions(
	ctx context.Context,
	userID uuid.UUID,
	filter journal.Filter,
) ([]*journal.Transaction, int64, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, filter.Type)
	}
	txs, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, 0, err
	}
	return txs.ListByUser(ctx, userID, filter.Normalize())
}

// InitializeDeposit records a pending top-up and opens a gateway checkout for it.
func (s *Service) InitializeDeposit(
	ctx context.Context,
	userID uuid.UUID,
	amount money.Amount,
) (d *deposit.Deposit, err error) {
	log := s.logger.With("method", "InitializeDeposit", "user_id", userID, "amount", amount)
	defer func() { metrics.ObserveLedger("deposit_initialize", err) }()
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", domain.ErrGatewayUnavailable)
	}

	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, domain.ErrUserSuspended
	}
	d, err = deposit.New(userID, amount, s.policy.MinDeposit, utils.NewReference(ReferencePrefix))
	if errors.Is(err, domain.ErrBelowMinimum) {
		return nil, fmt.Errorf("%w: minimum deposit is %s", err, s.policy.Money(s.policy.MinDeposit))
	}
	if err != nil {
		return nil, err
	}
	deposits, err := s.uow.DepositRepository()
	if err != nil {
		return nil, err
	}
	if err = deposits.Create(ctx, d); err != nil {
		return nil, err
	}

	res, err := s.gateway.Initialize(ctx, &payment.InitializeParams{
		Email:       u.Email,
		Amount:      amount,
		Currency:    s.policy.Currency.String(),
		Reference:   d.Reference,
		CallbackURL: s.callbackURL,
		Description: "Wallet deposit",
		Metadata: map[string]string{
			"kind":       "deposit",
			"deposit_id": d.ID.String(),
			"user_id":    userID.String(),
		},
	})
	if err != nil {
		log.Error("gateway initialize failed", "reference", d.Reference, "error", err)
		if terr := deposits.Transition(ctx, d.ID, deposit.StatusPending, deposit.StatusFailed); terr != nil {
			log.Error("marking deposit failed", "error", terr)
		}
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if res.Reference != "" {
		d.Reference = res.Reference
	}
	d.AuthorizationURL = res.AuthorizationURL
	if err = deposits.SetCheckout(ctx, d.ID, d.Reference, d.AuthorizationURL); err != nil {
		return nil, err
	}
	log.Info("Deposit checkout started", "deposit_id", d.ID, "reference", d.Reference)
	return d, nil
}

// VerifyDeposit settles a pending deposit. Completed and failed deposits are
// returned as they are; a completed one credits the wallet exactly once.
func (s *Service) VerifyDeposit(ctx context.Context, reference string) (*deposit.Deposit, error) {
	v, err, _ := s.verifies.Do(reference, func() (any, error) {
		return s.verifyDeposit(ctx, reference)
	})
	if err != nil {
		return nil, err
	}
	return v.(*deposit.Deposit), nil
}

func (s *Service) verifyDeposit(ctx context.Context, reference string) (d *deposit.Deposit, err error) {
	log := s.logger.With("method", "VerifyDeposit", "reference", reference)
	deposits, err := s.uow.DepositRepository()
	if err != nil {
		return nil, err
	}
	if d, err = deposits.GetByReference(ctx, reference); err != nil {
		return nil, err
	}
	if d.Status != deposit.StatusPending {
		return d, nil
	}
	defer func() { metrics.ObserveLedger("deposit_verify", err) }()
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", domain.ErrGatewayUnavailable)
	}

	res, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		log.Error("gateway verify failed", "error", err)
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	switch res.Status {
	case payment.PaymentFailed:
		err = deposits.Transition(ctx, d.ID, deposit.StatusPending, deposit.StatusFailed)
		if err == nil {
			d.Status = deposit.StatusFailed
			log.Info("Deposit failed at gateway")
		}
	case payment.PaymentCompleted:
		paid := res.Amount
		if paid <= 0 {
			paid = d.Amount
		}
		err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
			deposits, err := tx.DepositRepository()
			if err != nil {
				return err
			}
			if err := deposits.Transition(ctx, d.ID, deposit.StatusPending, deposit.StatusCompleted); err != nil {
				return err
			}
			_, err = ledger.Credit(ctx, tx, ledger.Entry{
				UserID:      d.UserID,
				Amount:      paid,
				Type:        journal.TypeDeposit,
				Reference:   d.Reference,
				Description: "Wallet deposit",
			})
			return err
		})
		if err == nil {
			d.Status = deposit.StatusCompleted
			log.Info("Deposit completed", "credited", paid)
			eventbus.Publish(ctx, s.bus, s.logger, &events.DepositCompleted{
				DepositID: d.ID,
				UserID:    d.UserID,
				Amount:    paid,
				Reference: d.Reference,
				Timestamp: time.Now().UTC(),
			})
		}
	default:
		return d, nil
	}
	if errors.Is(err, domain.ErrNotPending) {
		return deposits.GetByReference(ctx, reference)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// HandleWebhook authenticates a gateway notification and settles whatever the
// reference belongs to. Unknown references and event types are ignored so the
// gateway stops retrying them.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	log := s.logger.With("method", "HandleWebhook")
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", domain.ErrGatewayUnavailable)
	}
	ev, err := s.gateway.ParseWebhook(ctx, payload, signature)
	if err != nil {
		log.Warn("webhook rejected", "error", err)
		return nil, err
	}
	if ev == nil || ev.Reference == "" {
		return &WebhookResult{Kind: WebhookIgnored}, nil
	}
	log = log.With("reference", ev.Reference, "type", ev.Type)

	deposits, err := s.uow.DepositRepository()
	if err != nil {
		return nil, err
	}
	_, err = deposits.GetByReference(ctx, ev.Reference)
	switch {
	case err == nil:
		d, err := s.VerifyDeposit(ctx, ev.Reference)
		if err != nil {
			return nil, err
		}
		log.Info("Webhook settled deposit", "status", d.Status)
		return &WebhookResult{Kind: WebhookDeposit, Reference: ev.Reference, Status: string(d.Status)}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if s.investments != nil {
		inv, err := s.investments.VerifyInvestment(ctx, ev.Reference)
		switch {
		case err == nil:
			log.Info("Webhook settled investment", "status", inv.Status)
			return &WebhookResult{Kind: WebhookInvestment, Reference: ev.Reference, Status: string(inv.Status)}, nil
		case !errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
	}
	log.Warn("webhook for unknown reference")
	return &WebhookResult{Kind: WebhookIgnored, Reference: ev.Reference}, nil
}
