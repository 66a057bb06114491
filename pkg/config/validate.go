package config

import (
	"fmt"
	"slices"

	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/shopspring/decimal"
)

// Validate rejects configurations the ledger cannot run with.
func (a *App) Validate() error {
	if a.DB != nil && !slices.Contains([]string{"postgres", "sqlite"}, a.DB.Driver) {
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", a.DB.Driver)
	}
	if l := a.Ledger; l != nil {
		if !money.Code(l.Currency).IsValid() {
			return fmt.Errorf("LEDGER_CURRENCY %q: %w", l.Currency, money.ErrInvalidCurrencyCode)
		}
		share := l.InvestorSharePercent
		if share.LessThanOrEqual(decimal.Zero) || share.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("LEDGER_INVESTOR_SHARE_PERCENT must be in (0, 100], got %s", share)
		}
		for name, v := range map[string]decimal.Decimal{
			"LEDGER_MIN_INVESTMENT": l.MinInvestment,
			"LEDGER_MIN_WITHDRAWAL": l.MinWithdrawal,
			"LEDGER_MIN_DEPOSIT":    l.MinDeposit,
		} {
			if v.IsNegative() {
				return fmt.Errorf("%s cannot be negative", name)
			}
		}
	}
	if p := a.PaymentProviders; p != nil &&
		!slices.Contains([]string{"mock", "paystack", "stripe"}, p.Provider) {
		return fmt.Errorf("PAYMENT_PROVIDER must be mock, paystack or stripe, got %q", p.Provider)
	}
	if e := a.EventBus; e != nil && !slices.Contains([]string{"memory", "redis", "kafka"}, e.Driver) {
		return fmt.Errorf("EVENT_BUS_DRIVER must be memory, redis or kafka, got %q", e.Driver)
	}
	return nil
}

// Minor converts a major-unit amount in the ledger currency to minor units.
func (l *Ledger) Minor(v decimal.Decimal) (money.Amount, error) {
	m, err := money.FromDecimal(v, money.Code(l.Currency))
	if err != nil {
		return 0, err
	}
	return m.Amount(), nil
}
