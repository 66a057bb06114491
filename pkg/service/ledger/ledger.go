// Package ledger pairs every wallet mutation with its journal entry and
// carries the platform's money rules.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy holds the business constants, in minor units of Currency.
type Policy struct {
	Currency         money.Code
	MinInvestment    money.Amount
	MinWithdrawal    money.Amount
	MinDeposit       money.Amount
	InvestorShare    decimal.Decimal
	AllowOverfunding bool
	GatewayTimeout   time.Duration
}

// DefaultPolicy mirrors the config defaults: GHS, 100 / 10 / 100 minimums,
// 80% investor share, overfunding allowed.
func DefaultPolicy() Policy {
	return Policy{
		Currency:         money.DefaultCurrency,
		MinInvestment:    10000,
		MinWithdrawal:    1000,
		MinDeposit:       10000,
		InvestorShare:    decimal.NewFromInt(80),
		AllowOverfunding: true,
		GatewayTimeout:   15 * time.Second,
	}
}

// PolicyFromConfig converts the major-unit config into a Policy.
func PolicyFromConfig(cfg *config.Ledger) (Policy, error) {
	if cfg == nil {
		return DefaultPolicy(), nil
	}
	p := Policy{
		Currency:         money.Code(cfg.Currency),
		InvestorShare:    cfg.InvestorSharePercent,
		AllowOverfunding: cfg.AllowOverfunding,
		GatewayTimeout:   cfg.GatewayTimeout,
	}
	var err error
	if p.MinInvestment, err = cfg.Minor(cfg.MinInvestment); err != nil {
		return Policy{}, fmt.Errorf("min investment: %w", err)
	}
	if p.MinWithdrawal, err = cfg.Minor(cfg.MinWithdrawal); err != nil {
		return Policy{}, fmt.Errorf("min withdrawal: %w", err)
	}
	if p.MinDeposit, err = cfg.Minor(cfg.MinDeposit); err != nil {
		return Policy{}, fmt.Errorf("min deposit: %w", err)
	}
	return p, nil
}

// Money wraps amount in the policy currency.
func (p Policy) Money(amount money.Amount) money.Money {
	return money.MustFromMinor(amount, p.Currency)
}

// Entry describes one wallet movement. Amount is always positive; the
// direction comes from the call.
type Entry struct {
	UserID      uuid.UUID
	Amount      money.Amount
	Type        journal.Type
	Reference   string
	Description string
}

// Debit removes the amount from the wallet and journals it as a negative
// entry. tx must be the unit of work passed to Do.
func Debit(ctx context.Context, tx repository.UnitOfWork, e Entry) (money.Amount, error) {
	if e.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	users, err := tx.UserRepository()
	if err != nil {
		return 0, err
	}
	balance, err := users.Debit(ctx, e.UserID, e.Amount)
	if err != nil {
		return 0, err
	}
	if err := appendEntry(ctx, tx, e, -e.Amount, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Credit adds the amount to the wallet and journals it as a positive entry.
func Credit(ctx context.Context, tx repository.UnitOfWork, e Entry) (money.Amount, error) {
	if e.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	users, err := tx.UserRepository()
	if err != nil {
		return 0, err
	}
	balance, err := users.Credit(ctx, e.UserID, e.Amount)
	if err != nil {
		return 0, err
	}
	if err := appendEntry(ctx, tx, e, e.Amount, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func appendEntry(ctx context.Context, tx repository.UnitOfWork, e Entry, signed, balance money.Amount) error {
	txs, err := tx.TransactionRepository()
	if err != nil {
		return err
	}
	_, err = txs.Append(ctx, journal.New(e.UserID, e.Type, signed, balance, e.Reference, e.Description))
	return err
}
