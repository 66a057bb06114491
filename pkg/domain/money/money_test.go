package money_test

import (
	"testing"

	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Precision(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		currency money.Code
		minor    int64
		wantErr  error
	}{
		{"GHS with pesewas", "100.50", "GHS", 10050, nil},
		{"whole amount", "200", "GHS", 20000, nil},
		{"JPY whole numbers", "1000", "JPY", 1000, nil},
		{"KWD with 3 decimals", "100.123", "KWD", 100123, nil},
		{"too many decimals for GHS", "100.123", "GHS", 0, money.ErrTooPrecise},
		{"too many decimals for JPY", "100.5", "JPY", 0, money.ErrTooPrecise},
		{"garbage", "ten", "GHS", 0, money.ErrInvalidAmountFormat},
		{"invalid currency", "1", "cedi", 0, money.ErrInvalidCurrencyCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := money.Parse(tt.input, tt.currency)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.minor, m.Amount())
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestFromFloat_DefaultsCurrency(t *testing.T) {
	m, err := money.FromFloat(99.99, "")
	require.NoError(t, err)
	assert.Equal(t, money.DefaultCurrency, m.Currency())
	assert.Equal(t, int64(9999), m.Amount())
	assert.InDelta(t, 99.99, m.Float(), 0.0001)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := money.MustFromMinor(10000, "GHS")
	b := money.MustFromMinor(2550, "GHS")
	usd := money.MustFromMinor(100, "USD")

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(12550), sum.Amount())
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, int64(7450), diff.Amount())
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Add(usd)
		require.ErrorIs(t, err, money.ErrCurrencyMismatch)
		_, err = a.LessThan(usd)
		require.ErrorIs(t, err, money.ErrCurrencyMismatch)
	})

	t.Run("negate", func(t *testing.T) {
		assert.Equal(t, int64(-10000), a.Negate().Amount())
	})
}

func TestMoney_Percent(t *testing.T) {
	gross := money.MustFromMinor(100000, "GHS")

	pool := gross.Percent(decimal.NewFromInt(80))
	assert.Equal(t, int64(80000), pool.Amount())

	share := pool.Percent(decimal.RequireFromString("20.0000"))
	assert.Equal(t, int64(16000), share.Amount())

	// 1/3 of a pesewa rounds to nearest
	third := money.MustFromMinor(100, "GHS").Percent(decimal.RequireFromString("33.3333"))
	assert.Equal(t, int64(33), third.Amount())
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "200.00 GHS", money.MustFromMinor(20000, "GHS").String())
	assert.Equal(t, "1000 JPY", money.MustFromMinor(1000, "JPY").String())
}
