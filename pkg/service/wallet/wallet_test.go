package wallet_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/demonyhq/demony/infra/eventbus"
	"github.com/demonyhq/demony/infra/provider/mockpayment"
	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/deposit"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/provider/payment"
	investmentsvc "github.com/demonyhq/demony/pkg/service/investment"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/service/wallet"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type WalletServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	uow         *infrarepo.UoW
	gateway     *mockpayment.MockPaymentProvider
	bus         *eventbus.MemoryEventBus
	investments *investmentsvc.Service
	svc         *wallet.Service
	ctx         context.Context
}

func (s *WalletServiceTestSuite) SetupTest() {
	s.db = testutils.NewSQLiteDB(s.T())
	s.uow = infrarepo.NewUoW(s.db)
	s.gateway = mockpayment.NewMockPaymentProvider()
	s.bus = eventbus.NewWithMemory(nil)
	policy := ledger.DefaultPolicy()
	s.investments = investmentsvc.New(s.uow, s.gateway, s.bus, policy, nil)
	s.svc = wallet.New(s.uow, s.gateway, s.investments, s.bus, policy, nil)
	s.ctx = context.Background()
}

func TestWalletServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}

func webhook(reference string, status payment.PaymentStatus) []byte {
	b, _ := json.Marshal(map[string]string{"reference": reference, "status": string(status)})
	return b
}

func (s *WalletServiceTestSuite) TestDepositRoundTrip() {
	u := testutils.CreateUser(s.T(), s.db, testutils.WithBalance(500))

	d, err := s.svc.InitializeDeposit(s.ctx, u.ID, 25000)
	s.Require().NoError(err)
	s.Equal(deposit.StatusPending, d.Status)
	s.Contains(d.AuthorizationURL, d.Reference)

	got, err := s.svc.VerifyDeposit(s.ctx, d.Reference)
	s.Require().NoError(err)
	s.Equal(deposit.StatusPending, got.Status)

	s.gateway.Complete(d.Reference)
	got, err = s.svc.VerifyDeposit(s.ctx, d.Reference)
	s.Require().NoError(err)
	s.Equal(deposit.StatusCompleted, got.Status)

	again, err := s.svc.VerifyDeposit(s.ctx, d.Reference)
	s.Require().NoError(err)
	s.Equal(deposit.StatusCompleted, again.Status)

	bal, err := s.svc.Balance(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(int64(25500), bal.Balance)

	txs, total, err := s.svc.Transactions(s.ctx, u.ID, journal.Filter{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Equal(journal.TypeDeposit, txs[0].Type)
	s.Equal(int64(25000), txs[0].Amount)
	s.Equal(int64(25500), txs[0].BalanceAfter)

	s.Require().Len(s.bus.Published(), 1)
	s.IsType(&events.DepositCompleted{}, s.bus.Published()[0])
}

func (s *WalletServiceTestSuite) TestVerifyDeposit_ConcurrentCreditsOnce() {
	u := testutils.CreateUser(s.T(), s.db)
	d, err := s.svc.InitializeDeposit(s.ctx, u.ID, 10000)
	s.Require().NoError(err)
	s.gateway.Complete(d.Reference)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.VerifyDeposit(s.ctx, d.Reference)
			s.NoError(err)
		}()
	}
	wg.Wait()

	bal, err := s.svc.Balance(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(int64(10000), bal.Balance)
}

func (s *WalletServiceTestSuite) TestVerifyDeposit_Failed() {
	u := testutils.CreateUser(s.T(), s.db)
	d, err := s.svc.InitializeDeposit(s.ctx, u.ID, 10000)
	s.Require().NoError(err)
	s.gateway.SetStatus(d.Reference, payment.PaymentFailed)

	got, err := s.svc.VerifyDeposit(s.ctx, d.Reference)
	s.Require().NoError(err)
	s.Equal(deposit.StatusFailed, got.Status)

	s.gateway.Complete(d.Reference)
	got, err = s.svc.VerifyDeposit(s.ctx, d.Reference)
	s.Require().NoError(err)
	s.Equal(deposit.StatusFailed, got.Status, "settled deposits never flip")
	bal, _ := s.svc.Balance(s.ctx, u.ID)
	s.Zero(bal.Balance)
}

func (s *WalletServiceTestSuite) TestInitializeDeposit_Validation() {
	u := testutils.CreateUser(s.T(), s.db)

	_, err := s.svc.InitializeDeposit(s.ctx, u.ID, 0)
	s.ErrorIs(err, domain.ErrInvalidAmount)

	_, err = s.svc.InitializeDeposit(s.ctx, u.ID, 9999)
	s.ErrorIs(err, domain.ErrBelowMinimum)
	s.Contains(err.Error(), "100.00 GHS")

	s.gateway.InitializeErr = domain.ErrGatewayUnavailable
	_, err = s.svc.InitializeDeposit(s.ctx, u.ID, 10000)
	s.ErrorIs(err, domain.ErrGatewayUnavailable)
}

func (s *WalletServiceTestSuite) TestHandleWebhook_RoutesByReference() {
	u := testutils.CreateUser(s.T(), s.db)
	p := testutils.CreateProject(s.T(), s.db, 100000)

	d, err := s.svc.InitializeDeposit(s.ctx, u.ID, 10000)
	s.Require().NoError(err)
	co, err := s.investments.InitiateInvestment(s.ctx, u.ID, p.ID, 20000)
	s.Require().NoError(err)
	s.gateway.Complete(d.Reference)
	s.gateway.Complete(co.Reference)

	res, err := s.svc.HandleWebhook(s.ctx, webhook(d.Reference, payment.PaymentCompleted), mockpayment.Signature)
	s.Require().NoError(err)
	s.Equal(wallet.WebhookDeposit, res.Kind)
	s.Equal(string(deposit.StatusCompleted), res.Status)

	res, err = s.svc.HandleWebhook(s.ctx, webhook(co.Reference, payment.PaymentCompleted), mockpayment.Signature)
	s.Require().NoError(err)
	s.Equal(wallet.WebhookInvestment, res.Kind)
	s.Equal(string(investment.StatusActive), res.Status)

	res, err = s.svc.HandleWebhook(s.ctx, webhook("INV_unknown", payment.PaymentCompleted), mockpayment.Signature)
	s.Require().NoError(err)
	s.Equal(wallet.WebhookIgnored, res.Kind)

	// Redelivery is harmless.
	_, err = s.svc.HandleWebhook(s.ctx, webhook(d.Reference, payment.PaymentCompleted), mockpayment.Signature)
	s.Require().NoError(err)
	bal, err := s.svc.Balance(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(int64(10000), bal.Balance)
	s.Equal(int64(20000), bal.TotalInvested)
}

func (s *WalletServiceTestSuite) TestHandleWebhook_BadSignature() {
	_, err := s.svc.HandleWebhook(s.ctx, webhook("DEP_x", payment.PaymentCompleted), "forged")
	s.ErrorIs(err, domain.ErrInvalidSignature)
}

func (s *WalletServiceTestSuite) TestTransactions_RejectsUnknownType() {
	u := testutils.CreateUser(s.T(), s.db)
	_, _, err := s.svc.Transactions(s.ctx, u.ID, journal.Filter{Type: "bonus"})
	s.ErrorIs(err, domain.ErrValidation)
}
