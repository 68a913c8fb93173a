package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var withdrawalDebitPolicies = map[string]struct{}{
	"by_type":        {},
	"legacy_deposit": {},
}

var eventBusDrivers = map[string]struct{}{
	"memory": {},
	"redis":  {},
	"kafka":  {},
}

func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	if len(envFilePath) == 0 {
		logger.Debug("No environment file specified, trying default .env")
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		logger.Debug("Looking for environment file", "path", path)
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	logger.Info("No valid environment files found, using process environment")
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
		"db", maskValue(cfg.DB.Url),
		"auth_jwt_expiry", cfg.Auth.Jwt.Expiry,
		"event_bus", cfg.EventBus.Driver,
		"withdrawal_debit", cfg.Ledger.WithdrawalDebit,
		"telegram_token", maskValue(cfg.Telegram.Token),
		"price_ticker", cfg.PriceTicker.BaseURL,
	)
	return &cfg, nil
}

func (c *App) validate() error {
	if c.Auth.Jwt.Secret == "" {
		return fmt.Errorf("config: AUTH_JWT_SECRET must not be empty")
	}
	if _, ok := withdrawalDebitPolicies[c.Ledger.WithdrawalDebit]; !ok {
		return fmt.Errorf("config: unknown LEDGER_WITHDRAWAL_DEBIT %q", c.Ledger.WithdrawalDebit)
	}
	if _, ok := eventBusDrivers[c.EventBus.Driver]; !ok {
		return fmt.Errorf("config: unknown EVENT_BUS_DRIVER %q", c.EventBus.Driver)
	}
	if c.Site.WithdrawalCharge.IsNegative() || c.Site.BotAmount.IsNegative() {
		return fmt.Errorf("config: site amounts must not be negative")
	}
	return nil
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
