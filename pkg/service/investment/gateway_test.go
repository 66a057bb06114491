package investment_test

import (
	"errors"
	"strings"
	"sync"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/provider/payment"
	investmentsvc "github.com/demonyhq/demony/pkg/service/investment"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/testutils"
)

func (s *InvestmentServiceTestSuite) TestInitiateInvestment_CreatesPendingWithoutBalance() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000)

	co, err := s.svc.InitiateInvestment(s.ctx, u.ID, p.ID, 20000)
	s.Require().NoError(err)
	s.True(strings.HasPrefix(co.Reference, investmentsvc.ReferencePrefix+"_"))
	s.NotEmpty(co.AuthorizationURL)
	s.Equal(investment.StatusPendingPayment, co.Investment.Status)

	s.Zero(s.balance(u.ID))
	s.Zero(s.project(p.ID).CurrentFunding)
	s.Empty(s.journal(u.ID))
}

func (s *InvestmentServiceTestSuite) TestVerifyInvestment_Completed() {
	u := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(1000))
	p := testutils.CreateProject(s.T(), s.db, 100000)
	co, err := s.svc.InitiateInvestment(s.ctx, u.ID, p.ID, 20000)
	s.Require().NoError(err)

	pending, err := s.svc.VerifyInvestment(s.ctx, co.Reference)
	s.Require().NoError(err)
	s.Equal(investment.StatusPendingPayment, pending.Status)

	s.gateway.Complete(co.Reference)
	inv, err := s.svc.VerifyInvestment(s.ctx, co.Reference)
	s.Require().NoError(err)
	s.Equal(investment.StatusActive, inv.Status)

	s.Equal(int64(1000), s.balance(u.ID))
	got := s.project(p.ID)
	s.Equal(int64(20000), got.CurrentFunding)
	s.Equal(1, got.InvestorCount)

	entries := s.journal(u.ID)
	s.Require().Len(entries, 2)
	amounts := map[journal.Type]int64{}
	for _, e := range entries {
		amounts[e.Type] += e.Amount
		s.Equal(co.Reference, e.Reference)
	}
	s.Equal(int64(20000), amounts[journal.TypeDeposit])
	s.Equal(int64(-20000), amounts[journal.TypeInvestment])

	s.Require().Len(s.bus.Published(), 1)
	created, ok := s.bus.Published()[0].(*events.InvestmentCreated)
	s.Require().True(ok)
	s.True(created.Gateway)
}

func (s *InvestmentServiceTestSuite) TestVerifyInvestment_Idempotent() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000)
	co, err := s.svc.InitiateInvestment(s.ctx, u.ID, p.ID, 20000)
	s.Require().NoError(err)
	s.gateway.Complete(co.Reference)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := s.svc.VerifyInvestment(s.ctx, co.Reference)
			s.NoError(err)
			if inv != nil {
				s.Equal(investment.StatusActive, inv.Status)
			}
		}()
	}
	wg.Wait()

	calls := s.gateway.VerifyCalls()
	inv, err := s.svc.VerifyInvestment(s.ctx, co.Reference)
	s.Require().NoError(err)
	s.Equal(investment.StatusActive, inv.Status)
	s.Equal(calls, s.gateway.VerifyCalls(), "settled investments skip the gateway")

	got := s.project(p.ID)
	s.Equal(int64(20000), got.CurrentFunding)
	s.Equal(1, got.InvestorCount)
	s.Len(s.journal(u.ID), 2)
	s.Zero(s.balance(u.ID))
}

func (s *InvestmentServiceTestSuite) TestVerifyInvestment_Failed() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000)
	co, err := s.svc.InitiateInvestment(s.ctx, u.ID, p.ID, 20000)
	s.Require().NoError(err)
	s.gateway.SetStatus(co.Reference, payment.PaymentFailed)

	inv, err := s.svc.VerifyInvestment(s.ctx, co.Reference)
	s.Require().NoError(err)
	s.Equal(investment.StatusPaymentFailed, inv.Status)
	s.Zero(s.balance(u.ID))
	s.Empty(s.journal(u.ID))
	s.Zero(s.project(p.ID).CurrentFunding)
	s.Require().Len(s.bus.Published(), 1)
	s.IsType(&events.InvestmentFailed{}, s.bus.Published()[0])
}

func (s *InvestmentServiceTestSuite) TestVerifyInvestment_PaidIntoWallet() {
	tests := []struct {
		name    string
		prepare func(ref string, p project.Project)
		paid    int64
	}{
		{
			name:    "amount mismatch",
			prepare: func(ref string, _ project.Project) { s.gateway.SetAmount(ref, 15000) },
			paid:    15000,
		},
		{
			name: "project deactivated",
			prepare: func(_ string, p project.Project) {
				projects, _ := s.uow.ProjectRepository()
				s.Require().NoError(projects.SetStatus(s.ctx, p.ID, project.StatusInactive))
			},
			paid: 20000,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			u := testutils.CreateUser(s.T(), s.db)
			p := testutils.CreateProject(s.T(), s.db, 100000)
			co, err := s.svc.InitiateInvestment(s.ctx, u.ID, p.ID, 20000)
			s.Require().NoError(err)
			s.gateway.Complete(co.Reference)
			tt.prepare(co.Reference, *p)

			inv, err := s.svc.VerifyInvestment(s.ctx, co.Reference)
			s.Require().NoError(err)
			s.Equal(investment.StatusPaymentFailed, inv.Status)
			s.Equal(tt.paid, s.balance(u.ID))
			s.Zero(s.project(p.ID).CurrentFunding)

			entries := s.journal(u.ID)
			s.Require().Len(entries, 1)
			s.Equal(journal.TypeDeposit, entries[0].Type)
			s.Equal(tt.paid, entries[0].Amount)

			_, err = s.svc.VerifyInvestment(s.ctx, co.Reference)
			s.Require().NoError(err)
			s.Equal(tt.paid, s.balance(u.ID))
		})
	}
}

func (s *InvestmentServiceTestSuite) TestInitiateInvestment_GatewayDown() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000)
	s.gateway.InitializeErr = errors.New("connection refused")

	_, err := s.svc.InitiateInvestment(s.ctx, u.ID, p.ID, 20000)
	s.ErrorIs(err, domain.ErrGatewayUnavailable)

	invs, err := s.svc.ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(invs, 1)
	s.Equal(investment.StatusPaymentFailed, invs[0].Status)
}

func (s *InvestmentServiceTestSuite) TestInitiateInvestment_Validation() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000, testutils.WithStatus(project.StatusFunded))

	_, err := s.svc.InitiateInvestment(s.ctx, u.ID, p.ID, 20000)
	s.ErrorIs(err, domain.ErrProjectNotActive)

	direct := investmentsvc.New(s.uow, nil, s.bus, ledger.DefaultPolicy(), nil)
	q := testutils.CreateProject(s.T(), s.db, 100000)
	_, err = direct.InitiateInvestment(s.ctx, u.ID, q.ID, 20000)
	s.ErrorIs(err, domain.ErrGatewayUnavailable)
}

func (s *InvestmentServiceTestSuite) TestVerifyInvestment_UnknownReference() {
	_, err := s.svc.VerifyInvestment(s.ctx, "INV_missing")
	s.ErrorIs(err, domain.ErrNotFound)
}
