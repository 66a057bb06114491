package report_test

import (
	"context"
	"testing"
	"time"

	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/domain/report"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	reportsvc "github.com/demonyhq/demony/pkg/service/report"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ReportServiceTestSuite struct {
	suite.Suite
	db  *gorm.DB
	uow *infrarepo.UoW
	svc *reportsvc.Service
	ctx context.Context
}

func (s *ReportServiceTestSuite) SetupTest() {
	s.db = testutils.NewSQLiteDB(s.T())
	s.uow = infrarepo.NewUoW(s.db)
	s.svc = reportsvc.New(s.uow, nil)
	s.ctx = context.Background()
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}

func (s *ReportServiceTestSuite) invest(userID uuid.UUID, p *project.Project, amount int64, at time.Time) *investment.Investment {
	inv, err := investment.New(userID, p.ID, amount, p.GoalAmount)
	s.Require().NoError(err)
	inv.Status = investment.StatusActive
	investments, err := s.uow.InvestmentRepository()
	s.Require().NoError(err)
	s.Require().NoError(investments.Create(s.ctx, inv))
	s.Require().NoError(s.db.Exec("UPDATE investments SET created_at = ? WHERE id = ?", at.UTC(), inv.ID).Error)
	return inv
}

func (s *ReportServiceTestSuite) TestStats_EmptyPlatform() {
	st, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.Zero(st.Users)
	s.Zero(st.Projects)
	s.Equal(report.Total{}, st.Investments)
	s.Empty(st.ProjectsByStatus)
}

func (s *ReportServiceTestSuite) TestStats_CountsAndTotals() {
	testutils.CreateUser(s.T(), s.db, testutils.WithRole(user.RoleAdmin), testutils.Verified())
	a := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(70000), testutils.Verified())
	b := testutils.CreateUser(s.T(), s.db, testutils.WithRole(user.RoleBusinessOwner), testutils.WithBalance(5000))
	users, err := s.uow.UserRepository()
	s.Require().NoError(err)
	s.Require().NoError(users.UpdateKYC(s.ctx, b.ID, user.KYCPending, false, ""))
	s.Require().NoError(users.SetActive(s.ctx, b.ID, false))

	p := testutils.CreateProject(s.T(), s.db, 100000)
	testutils.CreateProject(s.T(), s.db, 50000, testutils.WithStatus(project.StatusPendingReview))
	testutils.CreateProject(s.T(), s.db, 90000, testutils.WithStatus(project.StatusRemoved))
	s.invest(a.ID, p, 20000, time.Now())
	s.invest(a.ID, p, 10000, time.Now())
	pending, err := investment.New(a.ID, p.ID, 15000, p.GoalAmount)
	s.Require().NoError(err)
	investments, err := s.uow.InvestmentRepository()
	s.Require().NoError(err)
	s.Require().NoError(investments.Create(s.ctx, pending))

	withdrawals, err := s.uow.WithdrawalRepository()
	s.Require().NoError(err)
	for _, amount := range []int64{3000, 4000} {
		w, err := withdrawal.New(a.ID, amount, 1000, withdrawal.MethodMobileMoney,
			withdrawal.AccountDetails{PhoneNumber: "0241234567", Network: "MTN"})
		s.Require().NoError(err)
		s.Require().NoError(withdrawals.Create(s.ctx, w))
	}

	st, err := s.svc.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), st.Users)
	s.Equal(int64(2), st.ActiveUsers)
	s.Equal(int64(1), st.Investors)
	s.Equal(int64(1), st.BusinessOwners)
	s.Equal(int64(1), st.KYCPending)
	s.Equal(int64(2), st.KYCVerified)
	s.Equal(int64(75000), st.WalletBalances)
	s.Equal(int64(2), st.Projects)
	s.Equal(int64(1), st.ProjectsByStatus[string(project.StatusRemoved)])
	s.Equal(int64(150000), st.FundingGoal)
	s.Equal(report.Total{Count: 2, Amount: 30000}, st.Investments)
	s.Equal(report.Total{Count: 2, Amount: 7000}, st.PendingWithdrawals)
}

func (s *ReportServiceTestSuite) TestFinancial_OnlyCountsThePeriod() {
	u := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(100000))
	p := testutils.CreateProject(s.T(), s.db, 1000000)
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	s.invest(u.ID, p, 20000, from.Add(time.Hour))
	s.invest(u.ID, p, 10000, from.Add(5*time.Hour))
	s.invest(u.ID, p, 30000, from.AddDate(0, 0, 3))
	s.invest(u.ID, p, 99000, from.Add(-time.Second))
	s.invest(u.ID, p, 88000, to)

	f, err := s.svc.Financial(s.ctx, from, to)
	s.Require().NoError(err)
	s.Equal(report.Total{Count: 3, Amount: 60000}, f.Investments)
	s.Require().Len(f.Daily, 2)
	s.Equal(from, f.Daily[0].Date)
	s.Equal(report.Total{Count: 2, Amount: 30000}, f.Daily[0].Total)
	s.Equal(from.AddDate(0, 0, 3), f.Daily[1].Date)
	s.Zero(f.Withdrawals.Count)
	s.Zero(f.ProfitRuns)
}

func (s *ReportServiceTestSuite) TestFinancial_DefaultsToRecentDays() {
	u := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(100000))
	p := testutils.CreateProject(s.T(), s.db, 1000000)
	s.invest(u.ID, p, 20000, time.Now())
	s.invest(u.ID, p, 10000, time.Now().AddDate(0, 0, -(reportsvc.DefaultDays + 5)))

	f, err := s.svc.Financial(s.ctx, time.Time{}, time.Time{})
	s.Require().NoError(err)
	s.Equal(report.Total{Count: 1, Amount: 20000}, f.Investments)
	s.Equal(reportsvc.DefaultDays, int(f.To.Sub(f.From).Hours()/24))
}

func (s *ReportServiceTestSuite) TestFinancial_RejectsBadPeriods() {
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.svc.Financial(s.ctx, day, day.AddDate(0, 0, -1))
	s.ErrorIs(err, domain.ErrValidation)
	_, err = s.svc.Financial(s.ctx, day.AddDate(-2, 0, 0), day)
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *ReportServiceTestSuite) TestUserDetail() {
	u := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(100000))
	other := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(100000))
	p := testutils.CreateProject(s.T(), s.db, 1000000)
	s.invest(u.ID, p, 20000, time.Now())
	s.invest(other.ID, p, 10000, time.Now())

	entries, err := s.uow.TransactionRepository()
	s.Require().NoError(err)
	for i := 0; i < 3; i++ {
		_, err := entries.Append(s.ctx, journal.New(u.ID, journal.TypeDeposit, 1000, int64(101000+i*1000), "", "Wallet deposit"))
		s.Require().NoError(err)
	}

	d, err := s.svc.UserDetail(s.ctx, u.ID, journal.Filter{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Equal(u.ID, d.User.ID)
	s.Require().Len(d.Investments, 1)
	s.Equal(int64(20000), d.Investments[0].Amount)
	s.Len(d.Transactions, 2)
	s.Equal(int64(3), d.TotalTransactions)

	_, err = s.svc.UserDetail(s.ctx, uuid.New(), journal.Filter{})
	s.ErrorIs(err, domain.ErrUserNotFound)
}
