// Package report serves the admin dashboard: platform counters, money
// movement over a period and the full picture of one user.
package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/report"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
)

// DefaultDays is the financial report window when no start is given.
const DefaultDays = 30

// UserDetail is one user with their holdings and a page of their journal.
type UserDetail struct {
	User              *user.User
	Investments       []*investment.Investment
	Transactions      []*journal.Transaction
	TotalTransactions int64
}

// Service reads the admin aggregates.
type Service struct {
	uow    repository.UnitOfWork
	now    func() time.Time
	logger *slog.Logger
}

func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, now: time.Now, logger: logger.With("service", "report")}
}

// Stats returns the platform snapshot.
func (s *Service) Stats(ctx context.Context) (*report.Stats, error) {
	reports, err := s.uow.ReportRepository()
	if err != nil {
		return nil, err
	}
	return reports.Stats(ctx)
}

// Financial reports the period [from, to). A zero to means the end of today
// (UTC); a zero from means DefaultDays before to.
func (s *Service) Financial(ctx context.Context, from, to time.Time) (*report.Financial, error) {
	if to.IsZero() {
		to = report.LastDays(s.now(), DefaultDays).To
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -DefaultDays)
	}
	period, err := report.NewPeriod(from, to)
	if err != nil {
		return nil, err
	}
	reports, err := s.uow.ReportRepository()
	if err != nil {
		return nil, err
	}
	f, err := reports.Financial(ctx, period)
	if err != nil {
		s.logger.Error("Financial report failed", "from", period.From, "to", period.To, "error", err)
		return nil, err
	}
	return f, nil
}

// UserDetail loads the user, all their investments and one page of their
// journal, newest first.
func (s *Service) UserDetail(ctx context.Context, id uuid.UUID, filter journal.Filter) (*UserDetail, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	investments, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	invs, err := investments.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	txs, total, err := entries.ListByUser(ctx, id, filter.Normalize())
	if err != nil {
		return nil, err
	}
	return &UserDetail{User: u, Investments: invs, Transactions: txs, TotalTransactions: total}, nil
}
