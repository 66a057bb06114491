package investment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/eventbus"
	"github.com/demonyhq/demony/pkg/metrics"
	"github.com/demonyhq/demony/pkg/provider/payment"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/utils"
	"github.com/google/uuid"
)

// ReferencePrefix marks gateway references that belong to investments.
const ReferencePrefix = "INV"

// Checkout is a pending gateway-backed investment and where to pay for it.
type Checkout struct {
	Investment       *investment.Investment
	AuthorizationURL string
	Reference        string
}

// InitiateInvestment creates a pending_payment investment and starts a
// gateway checkout for it. No balance is checked or moved.
func (s *Service) InitiateInvestment(
	ctx context.Context,
	userID, projectID uuid.UUID,
	amount money.Amount,
) (co *Checkout, err error) {
	log := s.logger.With("method", "InitiateInvestment", "user_id", userID, "project_id", projectID, "amount", amount)
	defer func() { metrics.ObserveLedger("invest_initiate", err) }()
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", domain.ErrGatewayUnavailable)
	}

	var (
		inv   *investment.Investment
		p     *project.Project
		email string
	)
	reference := utils.NewReference(ReferencePrefix)
	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		var err error
		if p, err = s.validate(ctx, tx, projectID, amount); err != nil {
			return err
		}
		u, err := activeUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		email = u.Email
		if inv, err = investment.NewPending(userID, projectID, amount, p.GoalAmount, reference); err != nil {
			return err
		}
		investments, err := tx.InvestmentRepository()
		if err != nil {
			return err
		}
		return investments.Create(ctx, inv)
	})
	if err != nil {
		log.Warn("InitiateInvestment failed", "error", err)
		return nil, err
	}

	res, err := s.gateway.Initialize(ctx, &payment.InitializeParams{
		Email:       email,
		Amount:      amount,
		Currency:    s.policy.Currency.String(),
		Reference:   reference,
		CallbackURL: s.callbackURL,
		Description: "Investment in " + p.Name,
		Metadata: map[string]string{
			"kind":          "investment",
			"investment_id": inv.ID.String(),
			"project_id":    projectID.String(),
			"user_id":       userID.String(),
		},
	})
	if err != nil {
		log.Error("gateway initialize failed", "reference", reference, "error", err)
		s.markFailed(ctx, inv)
		return nil, gatewayErr(err)
	}

	if res.Reference != "" && res.Reference != reference {
		if err := s.setReference(ctx, inv.ID, res.Reference); err != nil {
			log.Error("storing gateway reference failed", "error", err)
			s.markFailed(ctx, inv)
			return nil, err
		}
		inv.PaymentReference = res.Reference
	}
	log.Info("Investment checkout started", "investment_id", inv.ID, "reference", inv.PaymentReference)
	return &Checkout{Investment: inv, AuthorizationURL: res.AuthorizationURL, Reference: inv.PaymentReference}, nil
}

// VerifyInvestment settles a pending gateway-backed investment.
//
// Settled investments are returned unchanged without calling the gateway.
// Concurrent calls for one reference share a single gateway round trip, and
// the pending_payment -> * conditional update guarantees the effects are
// applied at most once across processes.
func (s *Service) VerifyInvestment(ctx context.Context, reference string) (*investment.Investment, error) {
	v, err, _ := s.verifies.Do(reference, func() (any, error) {
		return s.verify(ctx, reference)
	})
	if err != nil {
		return nil, err
	}
	return v.(*investment.Investment), nil
}

func (s *Service) verify(ctx context.Context, reference string) (inv *investment.Investment, err error) {
	log := s.logger.With("method", "VerifyInvestment", "reference", reference)
	investments, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	inv, err = investments.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !inv.IsPending() {
		return inv, nil
	}
	defer func() { metrics.ObserveLedger("invest_verify", err) }()
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", domain.ErrGatewayUnavailable)
	}

	res, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		log.Error("gateway verify failed", "error", err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, gatewayErr(err)
	}

	switch res.Status {
	case payment.PaymentPending:
		return inv, nil
	case payment.PaymentFailed:
		return s.fail(ctx, inv, "payment failed")
	default:
		return s.apply(ctx, inv, res.Amount)
	}
}

// apply runs the success path. When the project stopped accepting funds or
// the paid amount differs, the money lands in the wallet instead.
func (s *Service) apply(ctx context.Context, inv *investment.Investment, paid money.Amount) (*investment.Investment, error) {
	log := s.logger.With("method", "apply", "investment_id", inv.ID)
	var reason string
	err := s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		projects, err := tx.ProjectRepository()
		if err != nil {
			return err
		}
		p, err := projects.Get(ctx, inv.ProjectID)
		if err != nil {
			return err
		}
		switch {
		case p.AcceptsFunding() != nil:
			reason = "project no longer accepting investments"
		case paid != inv.Amount:
			reason = fmt.Sprintf("paid %s, expected %s", s.policy.Money(paid), s.policy.Money(inv.Amount))
		case !s.policy.AllowOverfunding && p.CurrentFunding+inv.Amount > p.GoalAmount:
			reason = "funding goal reached"
		}
		if reason != "" {
			return s.refund(ctx, tx, inv, paid)
		}

		entry := ledger.Entry{
			UserID:      inv.UserID,
			Amount:      inv.Amount,
			Reference:   inv.PaymentReference,
			Description: "Investment in " + p.Name,
		}
		entry.Type = journal.TypeDeposit
		if _, err := ledger.Credit(ctx, tx, entry); err != nil {
			return err
		}
		entry.Type = journal.TypeInvestment
		if _, err := ledger.Debit(ctx, tx, entry); err != nil {
			return err
		}
		return s.fund(ctx, tx, inv)
	})
	if errors.Is(err, domain.ErrNotPending) {
		return s.reload(ctx, inv.ID)
	}
	if err != nil {
		log.Error("applying investment failed", "error", err)
		return nil, err
	}
	if reason != "" {
		log.Warn("investment payment not applied", "reason", reason, "credited", paid)
		eventbus.Publish(ctx, s.bus, s.logger, &events.InvestmentFailed{
			InvestmentID: inv.ID,
			UserID:       inv.UserID,
			Reason:       reason,
			Refunded:     paid,
			Timestamp:    time.Now().UTC(),
		})
		return inv, nil
	}
	log.Info("Investment activated", "ownership", inv.OwnershipPercent)
	eventbus.Publish(ctx, s.bus, s.logger, createdEvent(inv, true))
	return inv, nil
}

// refund marks inv failed and credits paid to the wallet as a deposit.
func (s *Service) refund(ctx context.Context, tx repository.UnitOfWork, inv *investment.Investment, paid money.Amount) error {
	investments, err := tx.InvestmentRepository()
	if err != nil {
		return err
	}
	if err := investments.Transition(ctx, inv.ID, investment.StatusPendingPayment, investment.StatusPaymentFailed); err != nil {
		return err
	}
	inv.Status = investment.StatusPaymentFailed
	if paid <= 0 {
		return nil
	}
	_, err = ledger.Credit(ctx, tx, ledger.Entry{
		UserID:      inv.UserID,
		Amount:      paid,
		Type:        journal.TypeDeposit,
		Reference:   inv.PaymentReference,
		Description: "Investment payment credited to wallet",
	})
	return err
}

func (s *Service) fail(ctx context.Context, inv *investment.Investment, reason string) (*investment.Investment, error) {
	err := s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		return s.refund(ctx, tx, inv, 0)
	})
	if errors.Is(err, domain.ErrNotPending) {
		return s.reload(ctx, inv.ID)
	}
	if err != nil {
		return nil, err
	}
	eventbus.Publish(ctx, s.bus, s.logger, &events.InvestmentFailed{
		InvestmentID: inv.ID,
		UserID:       inv.UserID,
		Reason:       reason,
		Timestamp:    time.Now().UTC(),
	})
	return inv, nil
}

// markFailed is best-effort cleanup after the gateway refused a checkout.
func (s *Service) markFailed(ctx context.Context, inv *investment.Investment) {
	investments, err := s.uow.InvestmentRepository()
	if err == nil {
		err = investments.Transition(ctx, inv.ID, investment.StatusPendingPayment, investment.StatusPaymentFailed)
	}
	if err != nil {
		s.logger.Error("marking investment failed", "investment_id", inv.ID, "error", err)
		return
	}
	inv.Status = investment.StatusPaymentFailed
}

func (s *Service) setReference(ctx context.Context, id uuid.UUID, reference string) error {
	investments, err := s.uow.InvestmentRepository()
	if err != nil {
		return err
	}
	return investments.SetReference(ctx, id, reference)
}

func (s *Service) reload(ctx context.Context, id uuid.UUID) (*investment.Investment, error) {
	investments, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	return investments.Get(ctx, id)
}
