package report_test

import (
	"testing"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriod(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p, err := report.NewPeriod(day, day.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, day, p.From)

	accra := time.FixedZone("GMT+1", 3600)
	p, err = report.NewPeriod(time.Date(2026, 3, 1, 1, 0, 0, 0, accra), day.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, day, p.From)
	assert.Equal(t, time.UTC, p.From.Location())

	_, err = report.NewPeriod(day, day)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = report.NewPeriod(day, day.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = report.NewPeriod(day, day.AddDate(2, 0, 0))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLastDays(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)
	p := report.LastDays(now, 30)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), p.To)
	assert.Equal(t, time.Date(2026, 9, 19, 0, 0, 0, 0, time.UTC), p.From)
}

func TestBucket(t *testing.T) {
	d1 := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	d0 := time.Date(2026, 5, 1, 23, 59, 0, 0, time.UTC)

	days := report.Bucket(
		[]time.Time{d1, d0, d1.Add(3 * time.Hour)},
		[]money.Amount{10000, 5000, 2500},
	)
	require.Len(t, days, 2)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, report.Total{Count: 1, Amount: 5000}, days[0].Total)
	assert.Equal(t, report.Total{Count: 2, Amount: 12500}, days[1].Total)

	assert.Empty(t, report.Bucket(nil, nil))
}

func TestFinancialNet(t *testing.T) {
	f := report.Financial{
		Investments: report.Total{Count: 2, Amount: 30000},
		Withdrawals: report.Total{Count: 1, Amount: 12000},
	}
	assert.Equal(t, money.Amount(18000), f.Net())
}
