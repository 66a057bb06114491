package money

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCurrencyCode is returned for codes that are not 3 uppercase letters.
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	// ErrCurrencyMismatch is returned when arithmetic mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrTooPrecise is returned when an amount has more decimals than the currency allows.
	ErrTooPrecise = errors.New("amount has too many decimal places")
	// ErrInvalidAmountFormat is returned when an amount string cannot be parsed.
	ErrInvalidAmountFormat = errors.New("invalid amount format")
)

// Amount represents a monetary amount as an integer in the smallest currency unit (e.g., pesewas for GHS).
type Amount = int64

// Code is an ISO 4217 currency code.
type Code string

// DefaultCurrency is the platform currency when none is configured.
const DefaultCurrency Code = "GHS"

var currencyFormat = regexp.MustCompile(`^[A-Z]{3}$`)

// decimals lists minor-unit exponents that differ from 2.
var decimals = map[Code]int32{
	"JPY": 0,
	"KRW": 0,
	"XOF": 0,
	"XAF": 0,
	"KWD": 3,
	"BHD": 3,
}

// IsValid reports whether the code looks like an ISO 4217 code.
func (c Code) IsValid() bool {
	return currencyFormat.MatchString(string(c))
}

// Decimals returns the number of minor-unit digits of the currency.
func (c Code) Decimals() int32 {
	if d, ok := decimals[c]; ok {
		return d
	}
	return 2
}

func (c Code) String() string { return string(c) }

// Money represents a monetary value in a specific currency.
// Invariants:
//   - Amount is always stored in the smallest currency unit.
//   - Currency code must be valid ISO 4217 (3 uppercase letters).
//   - All arithmetic operations require matching currencies.
type Money struct {
	amount   Amount
	currency Code
}

// FromMinor creates Money from an amount already expressed in the smallest unit.
func FromMinor(amount Amount, code Code) (Money, error) {
	if code == "" {
		code = DefaultCurrency
	}
	if !code.IsValid() {
		return Money{}, ErrInvalidCurrencyCode
	}
	return Money{amount: amount, currency: code}, nil
}

// MustFromMinor is FromMinor for trusted values such as database rows.
func MustFromMinor(amount Amount, code Code) Money {
	m, err := FromMinor(amount, code)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts a major-unit decimal into Money.
// Amounts with more decimal places than the currency allows are rejected.
func FromDecimal(d decimal.Decimal, code Code) (Money, error) {
	if code == "" {
		code = DefaultCurrency
	}
	if !code.IsValid() {
		return Money{}, ErrInvalidCurrencyCode
	}
	minor := d.Shift(code.Decimals())
	if !minor.Equal(minor.Truncate(0)) {
		return Money{}, fmt.Errorf("%w: %s allows %d", ErrTooPrecise, code, code.Decimals())
	}
	if !minor.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("%w: amount overflows", ErrInvalidAmountFormat)
	}
	return Money{amount: minor.IntPart(), currency: code}, nil
}

// FromFloat converts a major-unit float (as decoded from JSON) into Money.
func FromFloat(f float64, code Code) (Money, error) {
	return FromDecimal(decimal.NewFromFloat(f), code)
}

// Parse converts a major-unit string such as "200.50" into Money.
func Parse(s string, code Code) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmountFormat, s)
	}
	return FromDecimal(d, code)
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() Amount {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() Code {
	return m.currency
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -m.currency.Decimals())
}

// Float returns the amount in major units as float64, for JSON responses.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// Add adds two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract subtracts other from m.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Negate flips the sign, used for journal debits.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// MulDecimal multiplies by a factor and rounds half away from zero to the minor unit.
func (m Money) MulDecimal(factor decimal.Decimal) Money {
	res := decimal.NewFromInt(m.amount).Mul(factor).Round(0)
	return Money{amount: res.IntPart(), currency: m.currency}
}

// Percent returns m scaled by pct/100, rounded to the minor unit.
func (m Money) Percent(pct decimal.Decimal) Money {
	return m.MulDecimal(pct.Div(decimal.NewFromInt(100)))
}

// LessThan compares two amounts of the same currency.
func (m Money) LessThan(other Money) (bool, error) {
	if !m.IsSameCurrency(other) {
		return false, ErrCurrencyMismatch
	}
	return m.amount < other.amount, nil
}

// Equals reports whether currency and amount match.
func (m Money) Equals(other Money) bool {
	return m.IsSameCurrency(other) && m.amount == other.amount
}

// IsSameCurrency checks whether both values share a currency.
func (m Money) IsSameCurrency(other Money) bool {
	return m.currency == other.currency
}

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount == 0
}

// String renders the amount with the currency's precision, e.g. "200.00 GHS".
func (m Money) String() string {
	return m.Decimal().StringFixed(m.currency.Decimals()) + " " + string(m.currency)
}
