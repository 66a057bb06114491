package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among envFiles (searched upwards from
// the working directory), falls back to ./.env, then processes the
// environment into App. Real environment variables always win over file
// values.
func Load(envFiles ...string) (*App, error) {
	logger := slog.Default()
	loadEnvFile(logger, envFiles)

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("App config loaded",
		"env", cfg.Env,
		"db_driver", cfg.DB.Driver,
		"db", maskValue(cfg.DB.Url),
		"auth_strategy", cfg.Auth.Strategy,
		"rate_limit", cfg.RateLimit.MaxRequests,
		"rate_window", cfg.RateLimit.Window,
		"currency", cfg.Ledger.Currency,
		"investor_share_percent", cfg.Ledger.InvestorSharePercent.String(),
		"allow_overfunding", cfg.Ledger.AllowOverfunding,
		"payment_provider", cfg.PaymentProviders.Provider,
		"paystack_secret", maskValue(cfg.PaymentProviders.Paystack.SecretKey),
		"event_bus", cfg.EventBus.Driver,
		"notify", cfg.Notify.Driver,
	)
	return &cfg, nil
}

func loadEnvFile(logger *slog.Logger, envFiles []string) {
	for _, name := range envFiles {
		path, err := FindUp(name)
		if err != nil {
			logger.Debug("Environment file not found", "name", name)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			logger.Error("Failed to load environment file", "path", path, "error", err)
			continue
		}
		logger.Info("Loaded environment file", "path", path)
		return
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file in working directory; using process environment")
	}
}

func maskValue(v string) string {
	if len(v) <= 6 {
		return "****"
	}
	return v[:2] + "****" + v[len(v)-4:]
}
