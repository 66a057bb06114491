package repository_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/deposit"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/profit"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	db  *gorm.DB
	uow *infrarepo.UoW
	ctx context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.db = testutils.NewSQLiteDB(s.T())
	s.uow = infrarepo.NewUoW(s.db)
	s.ctx = context.Background()
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) users() repository.UserRepository {
	r, err := s.uow.UserRepository()
	s.Require().NoError(err)
	return r
}

func (s *RepositoryTestSuite) projects() repository.ProjectRepository {
	r, err := s.uow.ProjectRepository()
	s.Require().NoError(err)
	return r
}

func (s *RepositoryTestSuite) TestDebitAndCredit() {
	u := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(50000))
	users := s.users()

	bal, err := users.Debit(s.ctx, u.ID, 20000)
	s.Require().NoError(err)
	s.Equal(int64(30000), bal)

	bal, err = users.Credit(s.ctx, u.ID, 500)
	s.Require().NoError(err)
	s.Equal(int64(30500), bal)

	_, err = users.Debit(s.ctx, u.ID, 30501)
	s.ErrorIs(err, domain.ErrInsufficientFunds)

	_, err = users.Debit(s.ctx, uuid.New(), 1)
	s.ErrorIs(err, domain.ErrUserNotFound)

	_, err = users.Debit(s.ctx, u.ID, 0)
	s.ErrorIs(err, domain.ErrInvalidAmount)

	bal, err = users.GetBalance(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(int64(30500), bal)
}

func (s *RepositoryTestSuite) TestConcurrentDebitsNeverOverdraw() {
	u := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(1000))
	users := s.users()

	var wg sync.WaitGroup
	var ok, insufficient atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := users.Debit(s.ctx, u.ID, 100)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientFunds):
				insufficient.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(10), ok.Load())
	s.Equal(int32(10), insufficient.Load())
	bal, err := users.GetBalance(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(int64(0), bal)
}

func (s *RepositoryTestSuite) TestUnitOfWorkRollsBack() {
	u := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(1000))

	err := s.uow.Do(s.ctx, func(tx repository.UnitOfWork) error {
		users, err := tx.UserRepository()
		if err != nil {
			return err
		}
		if _, err := users.Debit(s.ctx, u.ID, 400); err != nil {
			return err
		}
		return errors.New("abort")
	})
	s.Require().Error(err)

	bal, err := s.users().GetBalance(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(int64(1000), bal)
}

func (s *RepositoryTestSuite) TestRecordFunding() {
	p := testutils.CreateProject(s.T(), s.db, 100000)
	projects := s.projects()

	s.Require().NoError(projects.RecordFunding(s.ctx, p.ID, 60000, false))
	s.ErrorIs(projects.RecordFunding(s.ctx, p.ID, 50000, false), domain.ErrGoalExceeded)
	s.Require().NoError(projects.RecordFunding(s.ctx, p.ID, 50000, true))

	got, err := projects.Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(int64(110000), got.CurrentFunding)
	s.Equal(2, got.InvestorCount)

	s.ErrorIs(projects.RecordFunding(s.ctx, uuid.New(), 100, true), domain.ErrProjectNotFound)

	paused := testutils.CreateProject(s.T(), s.db, 100000, testutils.WithStatus(project.StatusInactive))
	s.ErrorIs(projects.RecordFunding(s.ctx, paused.ID, 100, true), domain.ErrProjectNotActive)
}

func (s *RepositoryTestSuite) TestProjectRoundTrip() {
	p := testutils.CreateProject(s.T(), s.db, 100000, testutils.WithInvestorShare(60))
	got, err := s.projects().Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.InvestorSharePercent)
	s.True(got.InvestorSharePercent.Equal(decimal.NewFromInt(60)))
	s.True(got.TargetReturn.Equal(decimal.NewFromInt(15)))

	got.GoalAmount = 200000
	got.InvestorSharePercent = nil
	s.Require().NoError(s.projects().Update(s.ctx, got))
	got, err = s.projects().Get(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(int64(200000), got.GoalAmount)
	s.Nil(got.InvestorSharePercent)

	list, total, err := s.projects().List(s.ctx, repository.ProjectFilter{
		Statuses: []project.Status{project.StatusActive},
	})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Len(list, 1)
}

func (s *RepositoryTestSuite) TestInvestmentTransitionIsGuarded() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000)
	investments, err := s.uow.InvestmentRepository()
	s.Require().NoError(err)

	inv, err := investment.NewPending(u.ID, p.ID, 20000, p.GoalAmount, "INV_abc")
	s.Require().NoError(err)
	s.Require().NoError(investments.Create(s.ctx, inv))

	dup, err := investment.NewPending(u.ID, p.ID, 20000, p.GoalAmount, "INV_abc")
	s.Require().NoError(err)
	s.ErrorIs(investments.Create(s.ctx, dup), domain.ErrAlreadyExists)

	// Direct investments carry no reference and must not collide.
	for i := 0; i < 2; i++ {
		direct, err := investment.New(u.ID, p.ID, 100, p.GoalAmount)
		s.Require().NoError(err)
		s.Require().NoError(investments.Create(s.ctx, direct))
	}

	s.Require().NoError(investments.Transition(s.ctx, inv.ID, investment.StatusPendingPayment, investment.StatusActive))
	s.ErrorIs(
		investments.Transition(s.ctx, inv.ID, investment.StatusPendingPayment, investment.StatusPaymentFailed),
		domain.ErrNotPending,
	)
	s.ErrorIs(
		investments.Transition(s.ctx, uuid.New(), investment.StatusPendingPayment, investment.StatusActive),
		domain.ErrNotFound,
	)

	got, err := investments.GetByReference(s.ctx, "INV_abc")
	s.Require().NoError(err)
	s.Equal(investment.StatusActive, got.Status)
	s.True(got.OwnershipPercent.Equal(decimal.NewFromInt(20)))

	active, err := investments.ListByProject(s.ctx, p.ID, investment.StatusActive)
	s.Require().NoError(err)
	s.Len(active, 3)
}

func (s *RepositoryTestSuite) TestJournal() {
	u := testutils.CreateUser(s.T(), s.db)
	entries, err := s.uow.TransactionRepository()
	s.Require().NoError(err)

	_, err = entries.Append(s.ctx, journal.New(u.ID, journal.TypeDeposit, 50000, 50000, "DEP_1", "Wallet deposit"))
	s.Require().NoError(err)
	time.Sleep(time.Millisecond)
	_, err = entries.Append(s.ctx, journal.New(u.ID, journal.TypeInvestment, -20000, 30000, "INV_1", "Investment"))
	s.Require().NoError(err)

	_, err = entries.Append(s.ctx, journal.New(u.ID, "bonus", 1, 1, "", ""))
	s.ErrorIs(err, domain.ErrValidation)

	list, total, err := entries.ListByUser(s.ctx, u.ID, journal.Filter{})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Equal(journal.TypeInvestment, list[0].Type)

	only, _, err := entries.ListByUser(s.ctx, u.ID, journal.Filter{Type: journal.TypeDeposit})
	s.Require().NoError(err)
	s.Len(only, 1)

	sum, err := entries.SumByUser(s.ctx, u.ID, "")
	s.Require().NoError(err)
	s.Equal(int64(30000), sum)
}

func (s *RepositoryTestSuite) TestWithdrawalTransitionOnce() {
	u := testutils.CreateUser(s.T(), s.db)
	withdrawals, err := s.uow.WithdrawalRepository()
	s.Require().NoError(err)

	w, err := withdrawal.New(u.ID, 5000, 1000, withdrawal.MethodMobileMoney, withdrawal.AccountDetails{
		PhoneNumber: "0241234567",
		Network:     "MTN",
	})
	s.Require().NoError(err)
	s.Require().NoError(withdrawals.Create(s.ctx, w))

	admin := uuid.New()
	s.Require().NoError(withdrawals.Transition(s.ctx, w.ID, withdrawal.Transition{
		To:              withdrawal.StatusRejected,
		ProcessedBy:     &admin,
		RejectionReason: "name mismatch",
	}))
	s.ErrorIs(withdrawals.Transition(s.ctx, w.ID, withdrawal.Transition{To: withdrawal.StatusCompleted}), domain.ErrNotPending)

	got, err := withdrawals.Get(s.ctx, w.ID)
	s.Require().NoError(err)
	s.Equal(withdrawal.StatusRejected, got.Status)
	s.Equal("name mismatch", got.RejectionReason)
	s.Equal("MTN", got.Details.Network)
	s.Require().NotNil(got.ProcessedBy)
	s.Equal(admin, *got.ProcessedBy)
}

func (s *RepositoryTestSuite) TestProfitDistributionUniquePerRun() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000)
	inv, err := investment.New(u.ID, p.ID, 20000, p.GoalAmount)
	s.Require().NoError(err)

	profits, err := s.uow.ProfitRepository()
	s.Require().NoError(err)

	plan, err := profit.NewPlan(p.ID, 100000, decimal.NewFromInt(80), []*investment.Investment{inv})
	s.Require().NoError(err)
	d := plan.Distribution("2026-q3", "Q3 profits", plan.Shares[0])
	s.Require().NoError(profits.Create(s.ctx, d))
	s.ErrorIs(profits.Create(s.ctx, plan.Distribution("2026-q3", "retry", plan.Shares[0])), domain.ErrAlreadyExists)

	exists, err := profits.Exists(s.ctx, "2026-q3", inv.ID)
	s.Require().NoError(err)
	s.True(exists)

	old, err := profit.NewPlan(p.ID, 100000, decimal.NewFromInt(60), []*investment.Investment{inv})
	s.Require().NoError(err)
	s.Require().NoError(profits.Create(s.ctx, old.Distribution("2025-q4", "legacy", old.Shares[0])))

	report, err := profits.SplitReport(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(report, 2)
	s.True(report[0].InvestorSharePercent.Equal(decimal.NewFromInt(80)))
	s.Equal(int64(16000), report[0].Total)
	s.True(report[1].InvestorSharePercent.Equal(decimal.NewFromInt(60)))
	s.Equal(1, report[1].Runs)
}

func (s *RepositoryTestSuite) TestDepositCheckoutAndTransition() {
	u := testutils.CreateUser(s.T(), s.db)
	deposits, err := s.uow.DepositRepository()
	s.Require().NoError(err)

	d, err := deposit.New(u.ID, 20000, 10000, "DEP_1")
	s.Require().NoError(err)
	s.Require().NoError(deposits.Create(s.ctx, d))
	s.Require().NoError(deposits.SetCheckout(s.ctx, d.ID, "cs_test_1", "https://pay.example/cs_test_1"))
	s.ErrorIs(deposits.SetCheckout(s.ctx, uuid.New(), "x", "y"), domain.ErrNotFound)

	_, err = deposits.GetByReference(s.ctx, "DEP_1")
	s.ErrorIs(err, domain.ErrNotFound)
	got, err := deposits.GetByReference(s.ctx, "cs_test_1")
	s.Require().NoError(err)
	s.Equal("https://pay.example/cs_test_1", got.AuthorizationURL)
	s.Equal(deposit.StatusPending, got.Status)

	s.Require().NoError(deposits.Transition(s.ctx, d.ID, deposit.StatusPending, deposit.StatusCompleted))
	s.ErrorIs(deposits.Transition(s.ctx, d.ID, deposit.StatusPending, deposit.StatusFailed), domain.ErrNotPending)
}

func TestGormErrorTranslationOnSQLite(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	u := testutils.CreateUser(t, db)
	users, err := infrarepo.NewUoW(db).UserRepository()
	require.NoError(t, err)

	dup := *u
	dup.ID = uuid.New()
	assert.ErrorIs(t, users.Create(context.Background(), &dup), domain.ErrAlreadyExists)
}

func (s *RepositoryTestSuite) TestProfitRunPinnedOnce() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000)
	inv, err := investment.New(u.ID, p.ID, 20000, p.GoalAmount)
	s.Require().NoError(err)

	profits, err := s.uow.ProfitRepository()
	s.Require().NoError(err)
	_, err = profits.GetRun(s.ctx, "2026-q3")
	s.ErrorIs(err, domain.ErrNotFound)

	plan, err := profit.NewPlan(p.ID, 100000, decimal.NewFromInt(80), []*investment.Investment{inv})
	s.Require().NoError(err)
	s.Require().NoError(profits.CreateRun(s.ctx, plan.Pin("2026-q3", "Q3 profits")))
	s.ErrorIs(profits.CreateRun(s.ctx, plan.Pin("2026-q3", "again")), domain.ErrAlreadyExists)

	run, err := profits.GetRun(s.ctx, "2026-q3")
	s.Require().NoError(err)
	s.Equal(p.ID, run.ProjectID)
	s.Equal(int64(100000), run.Gross)
	s.Equal(int64(80000), run.InvestorPool)
	s.Equal("Q3 profits", run.Description)
	s.Require().Len(run.Shares, 1)
	s.Equal(inv.ID, run.Shares[0].InvestmentID)
	s.Equal(int64(16000), run.Shares[0].Amount)
	s.True(run.Shares[0].OwnershipPercent.Equal(decimal.NewFromInt(20)))
}
