// Package withdrawal implements the payout request workflow. Funds are
// reserved when a request is made and returned if it is cancelled or rejected.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/demonyhq/demony/pkg/eventbus"
	"github.com/demonyhq/demony/pkg/metrics"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/google/uuid"
)

// Service manages withdrawals.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	policy ledger.Policy
	logger *slog.Logger
}

// New creates a withdrawal service.
func New(uow repository.UnitOfWork, bus eventbus.Bus, policy ledger.Policy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, bus: bus, policy: policy, logger: logger.With("service", "withdrawal")}
}

// Request reserves amount from a verified user's wallet and files a pending withdrawal.
func (s *Service) Request(
	ctx context.Context,
	userID uuid.UUID,
	amount money.Amount,
	method withdrawal.Method,
	details withdrawal.AccountDetails,
) (w *withdrawal.Withdrawal, err error) {
	log := s.logger.With("method", "Request", "user_id", userID, "amount", amount)
	defer func() { metrics.ObserveLedger("withdrawal_request", err) }()

	w, err = withdrawal.New(userID, amount, s.policy.MinWithdrawal, method, details)
	if errors.Is(err, domain.ErrBelowMinimum) {
		return nil, fmt.Errorf("%w: minimum withdrawal is %s", err, s.policy.Money(s.policy.MinWithdrawal))
	}
	if err != nil {
		return nil, err
	}

	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		users, err := tx.UserRepository()
		if err != nil {
			return err
		}
		u, err := users.Get(ctx, userID)
		if err != nil {
			return err
		}
		if !u.IsActive {
			return domain.ErrUserSuspended
		}
		if !u.IsVerified {
			return domain.ErrKYCRequired
		}
		if _, err := ledger.Debit(ctx, tx, ledger.Entry{
			UserID:      userID,
			Amount:      amount,
			Type:        journal.TypeWithdrawal,
			Reference:   w.ID.String(),
			Description: "Withdrawal via " + string(method),
		}); err != nil {
			return err
		}
		withdrawals, err := tx.WithdrawalRepository()
		if err != nil {
			return err
		}
		return withdrawals.Create(ctx, w)
	})
	if err != nil {
		log.Warn("withdrawal request failed", "error", err)
		return nil, err
	}
	log.Info("Withdrawal requested", "withdrawal_id", w.ID)
	eventbus.Publish(ctx, s.bus, s.logger, &events.WithdrawalRequested{
		WithdrawalID: w.ID,
		UserID:       userID,
		Amount:       amount,
		Method:       string(method),
		Timestamp:    time.Now().UTC(),
	})
	return w, nil
}

// Cancel returns a pending withdrawal's funds to its owner.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (*withdrawal.Withdrawal, error) {
	return s.settle(ctx, id, &userID, withdrawal.Transition{To: withdrawal.StatusCancelled})
}

// Approve marks a pending withdrawal as paid out. The balance was already
// debited at request time.
func (s *Service) Approve(ctx context.Context, id, adminID uuid.UUID, payoutRef string) (*withdrawal.Withdrawal, error) {
	return s.settle(ctx, id, nil, withdrawal.Transition{
		To:              withdrawal.StatusCompleted,
		PayoutReference: payoutRef,
		ProcessedBy:     &adminID,
	})
}

// Reject declines a pending withdrawal and refunds it.
func (s *Service) Reject(ctx context.Context, id, adminID uuid.UUID, reason string) (*withdrawal.Withdrawal, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}
	return s.settle(ctx, id, nil, withdrawal.Transition{
		To:              withdrawal.StatusRejected,
		RejectionReason: reason,
		ProcessedBy:     &adminID,
	})
}

// settle applies t to a pending withdrawal. The conditional status update
// runs first, so a repeated call fails with ErrNotPending before any refund.
func (s *Service) settle(
	ctx context.Context,
	id uuid.UUID,
	owner *uuid.UUID,
	t withdrawal.Transition,
) (w *withdrawal.Withdrawal, err error) {
	log := s.logger.With("method", "settle", "withdrawal_id", id, "to", t.To)
	defer func() { metrics.ObserveLedger("withdrawal_"+string(t.To), err) }()
	t.ProcessedAt = time.Now().UTC()

	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		withdrawals, err := tx.WithdrawalRepository()
		if err != nil {
			return err
		}
		if w, err = withdrawals.Get(ctx, id); err != nil {
			return err
		}
		if owner != nil && w.UserID != *owner {
			// Other users' withdrawals are indistinguishable from missing ones.
			return domain.ErrNotFound
		}
		if err := withdrawals.Transition(ctx, id, t); err != nil {
			return err
		}
		if !t.To.Refunds() {
			return nil
		}
		_, err = ledger.Credit(ctx, tx, ledger.Entry{
			UserID:      w.UserID,
			Amount:      w.Amount,
			Type:        journal.TypeRefund,
			Reference:   w.ID.String(),
			Description: "Withdrawal " + string(t.To),
		})
		return err
	})
	if err != nil {
		log.Warn("withdrawal transition failed", "error", err)
		return nil, err
	}

	w.Status = t.To
	w.RejectionReason = t.RejectionReason
	w.PayoutReference = t.PayoutReference
	w.ProcessedBy = t.ProcessedBy
	w.ProcessedAt = &t.ProcessedAt
	log.Info("Withdrawal settled", "user_id", w.UserID)
	eventbus.Publish(ctx, s.bus, s.logger, &events.WithdrawalProcessed{
		WithdrawalID: w.ID,
		UserID:       w.UserID,
		Amount:       w.Amount,
		Status:       string(w.Status),
		Reason:       w.RejectionReason,
		Timestamp:    t.ProcessedAt,
	})
	return w, nil
}

// ListByUser returns the user's withdrawals.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*withdrawal.Withdrawal, error) {
	withdrawals, err := s.uow.WithdrawalRepository()
	if err != nil {
		return nil, err
	}
	return withdrawals.ListByUser(ctx, userID)
}

// List returns a page of withdrawals, optionally filtered by status, and the total count.
func (s *Service) List(
	ctx context.Context,
	status withdrawal.Status,
	page repository.Page,
) ([]*withdrawal.Withdrawal, int64, error) {
	withdrawals, err := s.uow.WithdrawalRepository()
	if err != nil {
		return nil, 0, err
	}
	return withdrawals.List(ctx, status, page.Normalize())
}
