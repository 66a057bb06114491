package app

import (
	"log/slog"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/eventbus"
	notificationhandler "github.com/demonyhq/demony/pkg/handler/notification"
	"github.com/demonyhq/demony/pkg/notification"
	"github.com/demonyhq/demony/pkg/provider/payment"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/service/auth"
	"github.com/demonyhq/demony/pkg/service/investment"
	"github.com/demonyhq/demony/pkg/service/ledger"
	"github.com/demonyhq/demony/pkg/service/portfolio"
	"github.com/demonyhq/demony/pkg/service/profit"
	"github.com/demonyhq/demony/pkg/service/report"
	"github.com/demonyhq/demony/pkg/service/project"
	"github.com/demonyhq/demony/pkg/service/user"
	"github.com/demonyhq/demony/pkg/service/wallet"
	"github.com/demonyhq/demony/pkg/service/withdrawal"
)

// Deps contains the infrastructure the services are built from.
type Deps struct {
	Uow      repository.UnitOfWork
	Gateway  payment.Gateway
	EventBus eventbus.Bus
	Notifier notification.Notifier
	Policy   ledger.Policy
	Logger   *slog.Logger
}

type App struct {
	Deps              *Deps
	Config            *config.App
	AuthService       *auth.Service
	UserService       *user.Service
	ProjectService    *project.Service
	InvestmentService *investment.Service
	WalletService     *wallet.Service
	WithdrawalService *withdrawal.Service
	ProfitService     *profit.Service
	PortfolioService  *portfolio.Service
	ReportService     *report.Service

	notifications *notificationhandler.Handler
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	authMap := map[string]func() *auth.Service{
		"jwt": func() *auth.Service {
			return auth.NewWithJWT(deps.Uow, cfg.Auth.Jwt, deps.Logger)
		},
	}
	if authFactory, ok := authMap[authStrategy(cfg)]; ok {
		app.AuthService = authFactory()
	} else {
		app.AuthService = auth.NewWithBasic(deps.Uow, deps.Logger)
	}

	callbackURL := ""
	if cfg.PaymentProviders != nil && cfg.PaymentProviders.Paystack != nil {
		callbackURL = cfg.PaymentProviders.Paystack.CallbackURL
	}

	app.UserService = user.New(deps.Uow, deps.EventBus, deps.Logger)
	app.ProjectService = project.New(deps.Uow, deps.Logger)
	app.InvestmentService = investment.New(deps.Uow, deps.Gateway, deps.EventBus, deps.Policy, deps.Logger).
		WithCallbackURL(callbackURL)
	app.WalletService = wallet.New(deps.Uow, deps.Gateway, app.InvestmentService, deps.EventBus, deps.Policy, deps.Logger).
		WithCallbackURL(callbackURL)
	app.WithdrawalService = withdrawal.New(deps.Uow, deps.EventBus, deps.Policy, deps.Logger)
	app.ProfitService = profit.New(deps.Uow, deps.EventBus, deps.Policy, deps.Logger)
	app.PortfolioService = portfolio.New(deps.Uow)
	app.ReportService = report.New(deps.Uow, deps.Logger)
	return app
}

func authStrategy(cfg *config.App) string {
	if cfg.Auth == nil || cfg.Auth.Jwt == nil {
		return "basic"
	}
	return cfg.Auth.Strategy
}
