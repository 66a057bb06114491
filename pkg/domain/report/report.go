// Package report holds the back-office aggregates: platform counters and
// money movement over a period.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
)

// MaxPeriod bounds a financial report.
const MaxPeriod = 366 * 24 * time.Hour

// Total is a row count with the amount it sums to.
type Total struct {
	Count  int64
	Amount money.Amount
}

// Stats is the platform snapshot shown on the admin dashboard.
type Stats struct {
	Users              int64
	ActiveUsers        int64
	Investors          int64
	BusinessOwners     int64
	KYCPending         int64
	KYCVerified        int64
	KYCRejected        int64
	Projects           int64
	ProjectsByStatus   map[string]int64
	FundingGoal        money.Amount
	FundingRaised      money.Amount
	Investments        Total
	PendingWithdrawals Total
	WalletBalances     money.Amount
	ProfitDistributed  money.Amount
}

// Period is the half-open interval [From, To).
type Period struct {
	From time.Time
	To   time.Time
}

// NewPeriod normalizes the bounds to UTC and rejects empty, inverted or
// overlong intervals.
func NewPeriod(from, to time.Time) (Period, error) {
	p := Period{From: from.UTC(), To: to.UTC()}
	if !p.From.Before(p.To) {
		return Period{}, fmt.Errorf("%w: period start must be before its end", domain.ErrValidation)
	}
	if p.To.Sub(p.From) > MaxPeriod {
		return Period{}, fmt.Errorf("%w: period longer than %d days", domain.ErrValidation, int(MaxPeriod.Hours()/24))
	}
	return p, nil
}

// LastDays returns the period of n whole UTC days ending with today.
func LastDays(now time.Time, n int) Period {
	end := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	return Period{From: end.AddDate(0, 0, -n), To: end}
}

// Day is the investment volume of one UTC calendar day.
type Day struct {
	Date time.Time
	Total
}

// Financial is the money that moved through the platform in a period.
type Financial struct {
	Period
	Investments         Total
	Withdrawals         Total // completed payouts
	ProfitDistributions Total
	ProfitRuns          int64
	Daily               []Day
}

// Net is investments in minus withdrawals paid out.
func (f *Financial) Net() money.Amount {
	return f.Investments.Amount - f.Withdrawals.Amount
}

// Bucket groups timestamped amounts into UTC days, oldest first. Days with
// no activity are omitted.
func Bucket(at []time.Time, amounts []money.Amount) []Day {
	index := map[time.Time]int{}
	var days []Day
	for i, t := range at {
		d := t.UTC().Truncate(24 * time.Hour)
		j, ok := index[d]
		if !ok {
			j = len(days)
			index[d] = j
			days = append(days, Day{Date: d})
		}
		days[j].Count++
		days[j].Amount += amounts[i]
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}
