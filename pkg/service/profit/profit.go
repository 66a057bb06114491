// Package profit distributes project profits to investors.
package profit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/profit"
	"github.com/demonyhq/demony/pkg/eventbus"
	"github.com/demonyhq/demony/pkg/metrics"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunPrefix marks generated run ids.
const RunPrefix = "RUN"

// Audit lists historical distributions grouped by the split they were paid
// under. Divergent holds the groups that differ from the current default.
type Audit struct {
	DefaultShare decimal.Decimal
	Splits       []profit.SplitReport
	Divergent    []profit.SplitReport
}

// Service runs profit distributions.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	policy ledger.Policy
	logger *slog.Logger
}

// New creates a profit service.
func New(uow repository.UnitOfWork, bus eventbus.Bus, policy ledger.Policy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, bus: bus, policy: policy, logger: logger.With("service", "profit")}
}

// Distribute splits gross across the project's active investments and
// credits each investor in its own unit of work. The first call pins the run:
// its gross, share and investment set are stored under runID. A retry with
// the same id must name the same project and gross; it credits only the
// pinned investments not yet paid, so a failed run can be resumed safely.
// An empty runID gets a generated one.
//
// When some credits fail the summary of what was credited is returned with
// the joined errors.
func (s *Service) Distribute(
	ctx context.Context,
	projectID uuid.UUID,
	gross money.Amount,
	runID, description string,
) (sum *profit.Summary, err error) {
	defer func() { metrics.ObserveLedger("profit_distribute", err) }()
	if strings.TrimSpace(runID) == "" {
		runID = utils.NewReference(RunPrefix)
	}
	if runID, err = profit.NormalizeRunID(runID); err != nil {
		return nil, err
	}
	if gross <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	log := s.logger.With("method", "Distribute", "project_id", projectID, "run_id", runID, "gross", gross)

	projects, err := s.uow.ProjectRepository()
	if err != nil {
		return nil, err
	}
	p, err := projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = "Profit distribution for " + p.Name
	}
	run, resumed, err := s.pin(ctx, p.ID, p.InvestorShare(s.policy.InvestorShare), gross, runID, description)
	if err != nil {
		return nil, err
	}
	if resumed {
		log.Info("Resuming pinned run", "pinned_shares", len(run.Shares))
	}
	plan := run.Plan()

	sum = &profit.Summary{
		RunID:         runID,
		ProjectID:     projectID,
		Gross:         plan.Gross,
		InvestorShare: plan.InvestorShare,
		InvestorPool:  plan.InvestorPool,
		PlatformFee:   plan.PlatformFee,
	}
	var (
		errs     []error
		credited []events.Event
	)
	for _, share := range plan.Shares {
		if share.Amount <= 0 {
			sum.Skipped++
			continue
		}
		d := plan.Distribution(runID, run.Description, share)
		paid, err := s.credit(ctx, d)
		if err != nil {
			log.Error("crediting investor failed", "investment_id", share.InvestmentID, "error", err)
			errs = append(errs, fmt.Errorf("investment %s: %w", share.InvestmentID, err))
			continue
		}
		if !paid {
			sum.Skipped++
			continue
		}
		sum.Credited++
		sum.CreditedTotal += d.Amount
		sum.Distributions = append(sum.Distributions, d)
		credited = append(credited, &events.ProfitDistributed{
			RunID:        runID,
			UserID:       d.UserID,
			ProjectID:    projectID,
			ProjectName:  p.Name,
			InvestmentID: d.InvestmentID,
			Amount:       d.Amount,
			Timestamp:    d.CreatedAt,
		})
	}

	if sum.CreditedTotal > 0 {
		if err := projects.AddDistributed(ctx, projectID, sum.CreditedTotal, time.Now().UTC()); err != nil {
			errs = append(errs, fmt.Errorf("project totals: %w", err))
		}
		metrics.AddProfitCredited(sum.CreditedTotal)
	}
	eventbus.Publish(ctx, s.bus, s.logger, credited...)
	log.Info("Profit distribution finished",
		"credited", sum.Credited, "skipped", sum.Skipped, "credited_total", sum.CreditedTotal, "failed", len(errs))
	return sum, errors.Join(errs...)
}

// pin returns the stored run for runID, or computes the plan from the
// project's active investments and stores it. resumed is true when the run
// already existed.
func (s *Service) pin(
	ctx context.Context,
	projectID uuid.UUID,
	share decimal.Decimal,
	gross money.Amount,
	runID, description string,
) (run *profit.Run, resumed bool, err error) {
	profits, err := s.uow.ProfitRepository()
	if err != nil {
		return nil, false, err
	}
	existing, err := profits.GetRun(ctx, runID)
	switch {
	case err == nil:
		return existing, true, existing.CheckRetry(projectID, gross)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	investments, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, false, err
	}
	active, err := investments.ListByProject(ctx, projectID, investment.StatusActive)
	if err != nil {
		return nil, false, err
	}
	plan, err := profit.NewPlan(projectID, gross, share, active)
	if err != nil {
		return nil, false, err
	}
	run = plan.Pin(runID, description)
	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		profits, err := tx.ProfitRepository()
		if err != nil {
			return err
		}
		return profits.CreateRun(ctx, run)
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		// A concurrent first call pinned it.
		if existing, err = profits.GetRun(ctx, runID); err != nil {
			return nil, false, err
		}
		return existing, true, existing.CheckRetry(projectID, gross)
	}
	if err != nil {
		return nil, false, err
	}
	return run, false, nil
}

// credit pays one distribution. It reports false when the run already
// credited the investment.
func (s *Service) credit(ctx context.Context, d *profit.Distribution) (bool, error) {
	err := s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		profits, err := tx.ProfitRepository()
		if err != nil {
			return err
		}
		exists, err := profits.Exists(ctx, d.RunID, d.InvestmentID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyExists
		}
		if err := profits.Create(ctx, d); err != nil {
			return err
		}
		if _, err := ledger.Credit(ctx, tx, ledger.Entry{
			UserID:      d.UserID,
			Amount:      d.Amount,
			Type:        journal.TypeProfit,
			Reference:   d.RunID,
			Description: d.Description,
		}); err != nil {
			return err
		}
		users, err := tx.UserRepository()
		if err != nil {
			return err
		}
		return users.AddEarnings(ctx, d.UserID, d.Amount)
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return false, nil
	}
	return err == nil, err
}

// History returns every profit credit the user received.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]*profit.Distribution, error) {
	profits, err := s.uow.ProfitRepository()
	if err != nil {
		return nil, err
	}
	return profits.ListByUser(ctx, userID)
}

// Run returns the distributions of a single run.
func (s *Service) Run(ctx context.Context, runID string) ([]*profit.Distribution, error) {
	profits, err := s.uow.ProfitRepository()
	if err != nil {
		return nil, err
	}
	return profits.ListByRun(ctx, runID)
}

// AuditSplits reports past distributions by investor share. Nothing is changed.
func (s *Service) AuditSplits(ctx context.Context) (*Audit, error) {
	profits, err := s.uow.ProfitRepository()
	if err != nil {
		return nil, err
	}
	splits, err := profits.SplitReport(ctx)
	if err != nil {
		return nil, err
	}
	audit := &Audit{DefaultShare: s.policy.InvestorShare, Splits: splits}
	for _, r := range splits {
		if !r.InvestorSharePercent.Equal(s.policy.InvestorShare) {
			audit.Divergent = append(audit.Divergent, r)
		}
	}
	return audit, nil
}
