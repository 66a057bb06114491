// Package report runs the admin aggregates straight against the ledger
// tables. It owns no tables of its own.
package report

import (
	"context"
	"time"

	"github.com/demonyhq/demony/infra/repository/gormerr"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/domain/report"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	repo "github.com/demonyhq/demony/pkg/repository"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed report repository.
func New(db *gorm.DB) repo.ReportRepository {
	return &repository{db: db}
}

type userRow struct {
	Users          int64
	ActiveUsers    int64
	Investors      int64
	BusinessOwners int64
	KYCPending     int64 `gorm:"column:kyc_pending"`
	KYCVerified    int64 `gorm:"column:kyc_verified"`
	KYCRejected    int64 `gorm:"column:kyc_rejected"`
	WalletBalances int64
}

type projectRow struct {
	Status string
	Count  int64
	Goal   int64
	Raised int64
}

type totalRow struct {
	Count  int64
	Amount int64
}

func (t totalRow) total() report.Total {
	return report.Total{Count: t.Count, Amount: t.Amount}
}

const totalSelect = "COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount"

func (r *repository) Stats(ctx context.Context) (*report.Stats, error) {
	db := r.db.WithContext(ctx)

	var u userRow
	err := db.Table("users").Select(
		`COUNT(*) AS users,
		COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) AS active_users,
		COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS investors,
		COALESCE(SUM(CASE WHEN role = ? THEN 1 ELSE 0 END), 0) AS business_owners,
		COALESCE(SUM(CASE WHEN kyc_status = ? THEN 1 ELSE 0 END), 0) AS kyc_pending,
		COALESCE(SUM(CASE WHEN kyc_status = ? THEN 1 ELSE 0 END), 0) AS kyc_verified,
		COALESCE(SUM(CASE WHEN kyc_status = ? THEN 1 ELSE 0 END), 0) AS kyc_rejected,
		COALESCE(SUM(wallet_balance), 0) AS wallet_balances`,
		string(user.RoleInvestor), string(user.RoleBusinessOwner),
		string(user.KYCPending), string(user.KYCVerified), string(user.KYCRejected),
	).Scan(&u).Error
	if err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}

	var projects []projectRow
	err = db.Table("projects").
		Select("status, COUNT(*) AS count, COALESCE(SUM(goal_amount), 0) AS goal, COALESCE(SUM(current_funding), 0) AS raised").
		Group("status").
		Scan(&projects).Error
	if err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}

	var invs, pending totalRow
	if err := db.Table("investments").Select(totalSelect).
		Where("status = ?", string(investment.StatusActive)).Scan(&invs).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	if err := db.Table("withdrawals").Select(totalSelect).
		Where("status = ?", string(withdrawal.StatusPending)).Scan(&pending).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}
	var distributed int64
	if err := db.Table("profit_distributions").
		Select("COALESCE(SUM(amount), 0)").Scan(&distributed).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}

	s := &report.Stats{
		Users:              u.Users,
		ActiveUsers:        u.ActiveUsers,
		Investors:          u.Investors,
		BusinessOwners:     u.BusinessOwners,
		KYCPending:         u.KYCPending,
		KYCVerified:        u.KYCVerified,
		KYCRejected:        u.KYCRejected,
		ProjectsByStatus:   make(map[string]int64, len(projects)),
		Investments:        invs.total(),
		PendingWithdrawals: pending.total(),
		WalletBalances:     u.WalletBalances,
		ProfitDistributed:  distributed,
	}
	for _, p := range projects {
		s.ProjectsByStatus[p.Status] = p.Count
		if project.Status(p.Status) == project.StatusRemoved {
			continue
		}
		s.Projects += p.Count
		s.FundingGoal += p.Goal
		s.FundingRaised += p.Raised
	}
	return s, nil
}

type profitRow struct {
	Count  int64
	Amount int64
	Runs   int64
}

type investmentRow struct {
	CreatedAt time.Time
	Amount    int64
}

func (r *repository) Financial(ctx context.Context, period report.Period) (*report.Financial, error) {
	db := r.db.WithContext(ctx)
	inPeriod := func(column string) func(*gorm.DB) *gorm.DB {
		return func(q *gorm.DB) *gorm.DB {
			return q.Where(column+" >= ? AND "+column+" < ?", period.From, period.To)
		}
	}

	var rows []investmentRow
	err := db.Table("investments").Select("created_at, amount").
		Where("status = ?", string(investment.StatusActive)).
		Scopes(inPeriod("created_at")).
		Order("created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}

	var paid totalRow
	if err := db.Table("withdrawals").Select(totalSelect).
		Where("status = ?", string(withdrawal.StatusCompleted)).
		Scopes(inPeriod("processed_at")).
		Scan(&paid).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}

	var profits profitRow
	if err := db.Table("profit_distributions").
		Select(totalSelect + ", COUNT(DISTINCT run_id) AS runs").
		Scopes(inPeriod("created_at")).
		Scan(&profits).Error; err != nil {
		return nil, gormerr.MapGormErrorToDomain(err)
	}

	f := &report.Financial{
		Period:              period,
		Withdrawals:         paid.total(),
		ProfitDistributions: report.Total{Count: profits.Count, Amount: profits.Amount},
		ProfitRuns:          profits.Runs,
	}
	at := make([]time.Time, 0, len(rows))
	amounts := make([]money.Amount, 0, len(rows))
	for _, row := range rows {
		f.Investments.Count++
		f.Investments.Amount += row.Amount
		at = append(at, row.CreatedAt)
		amounts = append(amounts, row.Amount)
	}
	f.Daily = report.Bucket(at, amounts)
	return f, nil
}
