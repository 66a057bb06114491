// Package initializer builds the application dependencies from configuration.
package initializer

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/demonyhq/demony/infra"
	infraeventbus "github.com/demonyhq/demony/infra/eventbus"
	infranotification "github.com/demonyhq/demony/infra/notification"
	"github.com/demonyhq/demony/infra/provider/mockpayment"
	"github.com/demonyhq/demony/infra/provider/paystack"
	"github.com/demonyhq/demony/infra/provider/stripepayment"
	infrarepository "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/app"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/decorator"
	"github.com/demonyhq/demony/pkg/eventbus"
	"github.com/demonyhq/demony/pkg/notification"
	"github.com/demonyhq/demony/pkg/provider/payment"
	"github.com/demonyhq/demony/pkg/service/ledger"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	deps.Policy, err = ledger.PolicyFromConfig(cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger configuration: %w", err)
	}

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	deps.Uow = infrarepository.NewUoW(db)

	deps.EventBus, err = initEventBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	gateway, err := initGateway(cfg.PaymentProviders, logger)
	if err != nil {
		return nil, err
	}
	deps.Gateway = decorator.NewGateway(gateway, deps.Policy.GatewayTimeout, logger)

	deps.Notifier, err = initNotifier(cfg.Notify, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("dependencies initialized",
		"currency", deps.Policy.Currency,
		"gateway", gateway.Name(),
	)
	return deps, nil
}

// initEventBus picks the transport named by EVENT_BUS_DRIVER. An unreachable
// redis or kafka degrades to the in-process bus so the API still serves.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := ""
	if cfg.EventBus != nil {
		driver = cfg.EventBus.Driver
	}
	switch driver {
	case "", "memory":
		return infraeventbus.NewWithMemory(logger), nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, errors.New("event bus: redis driver requires REDIS_URL")
		}
		bus, err := infraeventbus.NewWithRedis(cfg.Redis.URL, cfg.EventBus.Stream, cfg.EventBus.Group, logger)
		if err != nil {
			logger.Warn("redis event bus unavailable, using memory", "error", err)
			return infraeventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	case "kafka":
		if cfg.EventBus.Kafka == nil || len(cfg.EventBus.Kafka.Brokers) == 0 {
			return nil, errors.New("event bus: kafka driver requires EVENT_BUS_KAFKA_BROKERS")
		}
		bus, err := infraeventbus.NewWithKafka(cfg.EventBus.Kafka, logger)
		if err != nil {
			logger.Warn("kafka event bus unavailable, using memory", "error", err)
			return infraeventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("event bus: unsupported driver %q", driver)
	}
}

func initGateway(cfg *config.PaymentProviders, logger *slog.Logger) (payment.Gateway, error) {
	provider := "mock"
	if cfg != nil && cfg.Provider != "" {
		provider = cfg.Provider
	}
	switch provider {
	case "mock":
		logger.Warn("using the mock payment gateway; charges are simulated")
		return mockpayment.NewMockPaymentProvider(), nil
	case "paystack":
		if cfg.Paystack == nil || cfg.Paystack.SecretKey == "" {
			return nil, errors.New("payment: paystack requires PAYMENT_PAYSTACK_SECRET_KEY")
		}
		return paystack.New(cfg.Paystack, &http.Client{}, logger), nil
	case "stripe":
		if cfg.Stripe == nil || cfg.Stripe.ApiKey == "" {
			return nil, errors.New("payment: stripe requires PAYMENT_STRIPE_API_KEY")
		}
		return stripepayment.New(cfg.Stripe, logger), nil
	default:
		return nil, fmt.Errorf("payment: unsupported provider %q", provider)
	}
}

func initNotifier(cfg *config.Notify, logger *slog.Logger) (notification.Notifier, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == "log" {
		return infranotification.NewLogNotifier(logger), nil
	}
	if cfg.Driver != "smtp" {
		return nil, fmt.Errorf("notify: unsupported driver %q", cfg.Driver)
	}
	n, err := infranotification.NewSMTPNotifier(cfg.SMTP, logger)
	if err != nil {
		return nil, err
	}
	return n, nil
}
