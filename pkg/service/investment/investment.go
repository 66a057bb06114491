// Package investment records investments paid from the wallet or through
// the payment gateway.
package investment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/eventbus"
	"github.com/demonyhq/demony/pkg/metrics"
	"github.com/demonyhq/demony/pkg/provider/payment"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Service is the investment record manager.
type Service struct {
	uow         repository.UnitOfWork
	gateway     payment.Gateway
	bus         eventbus.Bus
	policy      ledger.Policy
	callbackURL string
	logger      *slog.Logger
	verifies    singleflight.Group
}

// New creates an investment service. gateway may be nil when only direct
// investments are used.
func New(
	uow repository.UnitOfWork,
	gateway payment.Gateway,
	bus eventbus.Bus,
	policy ledger.Policy,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:     uow,
		gateway: gateway,
		bus:     bus,
		policy:  policy,
		logger:  logger.With("service", "investment"),
	}
}

// WithCallbackURL sets where the gateway sends the payer after checkout.
func (s *Service) WithCallbackURL(url string) *Service {
	s.callbackURL = url
	return s
}

// CreateInvestment invests amount from the user's wallet.
//
// Validation order: project exists and is active, amount meets the effective
// minimum, user exists, balance covers the amount. The debit, funding
// increment, investment row and totalInvested change commit together.
func (s *Service) CreateInvestment(
	ctx context.Context,
	userID, projectID uuid.UUID,
	amount money.Amount,
) (inv *investment.Investment, err error) {
	log := s.logger.With("method", "CreateInvestment", "user_id", userID, "project_id", projectID, "amount", amount)
	defer func() { metrics.ObserveLedger("invest_direct", err) }()

	var p *project.Project
	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		var err error
		if p, err = s.validate(ctx, tx, projectID, amount); err != nil {
			return err
		}
		if _, err = activeUser(ctx, tx, userID); err != nil {
			return err
		}
		if inv, err = investment.New(userID, projectID, amount, p.GoalAmount); err != nil {
			return err
		}
		if _, err = ledger.Debit(ctx, tx, ledger.Entry{
			UserID:      userID,
			Amount:      amount,
			Type:        journal.TypeInvestment,
			Reference:   inv.ID.String(),
			Description: "Investment in " + p.Name,
		}); err != nil {
			return err
		}
		return s.fund(ctx, tx, inv)
	})
	if err != nil {
		log.Warn("CreateInvestment failed", "error", err)
		return nil, err
	}
	log.Info("Investment created", "investment_id", inv.ID, "ownership", inv.OwnershipPercent)
	eventbus.Publish(ctx, s.bus, s.logger, createdEvent(inv, false))
	return inv, nil
}

// Get returns the investment when it belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*investment.Investment, error) {
	repo, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	inv, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	return inv, nil
}

// ListByUser returns the user's investments, oldest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*investment.Investment, error) {
	repo, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

// ListByProject returns a project's investments, oldest first, optionally
// filtered by status. Unknown projects fail with ErrProjectNotFound.
func (s *Service) ListByProject(
	ctx context.Context,
	projectID uuid.UUID,
	status investment.Status,
) ([]*investment.Investment, error) {
	projects, err := s.uow.ProjectRepository()
	if err != nil {
		return nil, err
	}
	if _, err := projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	repo, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByProject(ctx, projectID, status)
}

// validate loads the project and applies the funding and minimum checks.
func (s *Service) validate(
	ctx context.Context,
	tx repository.UnitOfWork,
	projectID uuid.UUID,
	amount money.Amount,
) (*project.Project, error) {
	projects, err := tx.ProjectRepository()
	if err != nil {
		return nil, err
	}
	p, err := projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := p.AcceptsFunding(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if minimum := p.EffectiveMinimum(s.policy.MinInvestment); amount < minimum {
		return nil, fmt.Errorf("%w: minimum investment is %s", domain.ErrBelowMinimum, s.policy.Money(minimum))
	}
	if !s.policy.AllowOverfunding && p.CurrentFunding+amount > p.GoalAmount {
		return nil, domain.ErrGoalExceeded
	}
	return p, nil
}

// fund records funding, inserts or activates inv and grows totalInvested.
func (s *Service) fund(ctx context.Context, tx repository.UnitOfWork, inv *investment.Investment) error {
	projects, err := tx.ProjectRepository()
	if err != nil {
		return err
	}
	if err := projects.RecordFunding(ctx, inv.ProjectID, inv.Amount, s.policy.AllowOverfunding); err != nil {
		return err
	}
	investments, err := tx.InvestmentRepository()
	if err != nil {
		return err
	}
	if inv.Status == investment.StatusPendingPayment {
		if err := investments.Transition(ctx, inv.ID, investment.StatusPendingPayment, investment.StatusActive); err != nil {
			return err
		}
		inv.Status = investment.StatusActive
	} else if err := investments.Create(ctx, inv); err != nil {
		return err
	}
	users, err := tx.UserRepository()
	if err != nil {
		return err
	}
	return users.AddInvested(ctx, inv.UserID, inv.Amount)
}

func activeUser(ctx context.Context, tx repository.UnitOfWork, userID uuid.UUID) (*user.User, error) {
	users, err := tx.UserRepository()
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
	return u, nil
}

func createdEvent(inv *investment.Investment, gateway bool) *events.InvestmentCreated {
	return &events.InvestmentCreated{
		InvestmentID:     inv.ID,
		UserID:           inv.UserID,
		ProjectID:        inv.ProjectID,
		Amount:           inv.Amount,
		OwnershipPercent: inv.OwnershipPercent.String(),
		Gateway:          gateway,
		Timestamp:        time.Now().UTC(),
	}
}

func gatewayErr(err error) error {
	if errors.Is(err, domain.ErrGatewayUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
}
