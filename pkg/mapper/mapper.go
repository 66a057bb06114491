// Package mapper converts domain records into the read DTOs served by the API.
// Amounts leave the core in minor units and are rendered in major units of
// the platform currency.
package mapper

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/deposit"
	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/journal"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/profit"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/domain/report"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/domain/withdrawal"
	"github.com/demonyhq/demony/pkg/dto"
	"github.com/demonyhq/demony/pkg/service/portfolio"
	reportsvc "github.com/demonyhq/demony/pkg/service/report"
	"github.com/google/uuid"
)

// Major renders a minor-unit amount in major units of code.
func Major(amount money.Amount, code money.Code) float64 {
	return money.MustFromMinor(amount, code).Float()
}

// MapUserToRead maps a domain user to dto.UserRead.
func MapUserToRead(u *user.User, code money.Code) dto.UserRead {
	return dto.UserRead{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		Role:               string(u.Role),
		WalletBalance:      Major(u.WalletBalance, code),
		TotalInvested:      Major(u.TotalInvested, code),
		TotalEarnings:      Major(u.TotalEarnings, code),
		Currency:           code.String(),
		IsVerified:         u.IsVerified,
		KYCStatus:          string(u.KYCStatus),
		KYCRejectionReason: u.KYCRejectionReason,
		IsActive:           u.IsActive,
		CreatedAt:          u.CreatedAt,
	}
}

// MapProjectToRead maps a domain project to dto.ProjectRead.
func MapProjectToRead(p *project.Project, code money.Code) dto.ProjectRead {
	return dto.ProjectRead{
		ID:                     p.ID,
		Name:                   p.Name,
		Category:               p.Category,
		Description:            p.Description,
		GoalAmount:             Major(p.GoalAmount, code),
		CurrentFunding:         Major(p.CurrentFunding, code),
		FundingProgress:        p.FundingProgress(),
		MinInvestment:          Major(p.MinInvestment, code),
		InvestorCount:          p.InvestorCount,
		Status:                 string(p.Status),
		TargetReturn:           p.TargetReturn,
		DurationMonths:         p.DurationMonths,
		RiskLevel:              string(p.RiskLevel),
		Featured:               p.Featured,
		Priority:               p.Priority,
		OwnerID:                p.OwnerID,
		InvestorSharePercent:   p.InvestorSharePercent,
		TotalProfitDistributed: Major(p.TotalProfitDistributed, code),
		LastDistributionAt:     p.LastDistributionAt,
		Currency:               code.String(),
		CreatedAt:              p.CreatedAt,
	}
}

// MapInvestmentToRead maps a domain investment to dto.InvestmentRead.
func MapInvestmentToRead(i *investment.Investment, code money.Code) dto.InvestmentRead {
	return dto.InvestmentRead{
		ID:               i.ID,
		UserID:           i.UserID,
		ProjectID:        i.ProjectID,
		Amount:           Major(i.Amount, code),
		Currency:         code.String(),
		OwnershipPercent: i.OwnershipPercent,
		Status:           string(i.Status),
		PaymentReference: i.PaymentReference,
		CreatedAt:        i.CreatedAt,
	}
}

// MapTransactionToRead maps a journal entry to dto.TransactionRead.
func MapTransactionToRead(t *journal.Transaction, code money.Code) dto.TransactionRead {
	return dto.TransactionRead{
		ID:           t.ID,
		Type:         string(t.Type),
		Amount:       Major(t.Amount, code),
		BalanceAfter: Major(t.BalanceAfter, code),
		Currency:     code.String(),
		Status:       t.Status,
		Reference:    t.Reference,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

// MapDepositToRead maps a domain deposit to dto.DepositRead.
func MapDepositToRead(d *deposit.Deposit, code money.Code) dto.DepositRead {
	return dto.DepositRead{
		ID:               d.ID,
		Amount:           Major(d.Amount, code),
		Currency:         code.String(),
		Reference:        d.Reference,
		Status:           string(d.Status),
		AuthorizationURL: d.AuthorizationURL,
		CreatedAt:        d.CreatedAt,
	}
}

// MapWithdrawalToRead maps a domain withdrawal to dto.WithdrawalRead.
func MapWithdrawalToRead(w *withdrawal.Withdrawal, code money.Code) dto.WithdrawalRead {
	return dto.WithdrawalRead{
		ID:              w.ID,
		UserID:          w.UserID,
		Amount:          Major(w.Amount, code),
		Currency:        code.String(),
		Method:          string(w.Method),
		Details:         w.Details,
		Status:          string(w.Status),
		RejectionReason: w.RejectionReason,
		PayoutReference: w.PayoutReference,
		ProcessedAt:     w.ProcessedAt,
		CreatedAt:       w.CreatedAt,
	}
}

// MapDistributionToRead maps a profit credit to dto.DistributionRead.
func MapDistributionToRead(d *profit.Distribution, code money.Code) dto.DistributionRead {
	return dto.DistributionRead{
		ID:                   d.ID,
		RunID:                d.RunID,
		UserID:               d.UserID,
		ProjectID:            d.ProjectID,
		InvestmentID:         d.InvestmentID,
		Amount:               Major(d.Amount, code),
		OwnershipPercent:     d.OwnershipPercent,
		GrossProfit:          Major(d.GrossProfit, code),
		InvestorSharePercent: d.InvestorSharePercent,
		Currency:             code.String(),
		CreatedAt:            d.CreatedAt,
	}
}

// MapSummaryToRead maps a profit run summary to dto.RunRead.
func MapSummaryToRead(s *profit.Summary, code money.Code) dto.RunRead {
	return dto.RunRead{
		RunID:         s.RunID,
		ProjectID:     s.ProjectID,
		Gross:         Major(s.Gross, code),
		InvestorShare: s.InvestorShare,
		InvestorPool:  Major(s.InvestorPool, code),
		PlatformFee:   Major(s.PlatformFee, code),
		Credited:      s.Credited,
		Skipped:       s.Skipped,
		CreditedTotal: Major(s.CreditedTotal, code),
		Currency:      code.String(),
		Distributions: MapSlice(s.Distributions, code, MapDistributionToRead),
	}
}

// MapSplitsToRead maps split reports to dto.SplitRead.
func MapSplitsToRead(reports []profit.SplitReport, code money.Code) []dto.SplitRead {
	out := make([]dto.SplitRead, 0, len(reports))
	for _, r := range reports {
		out = append(out, dto.SplitRead{
			InvestorSharePercent: r.InvestorSharePercent,
			Runs:                 r.Runs,
			Distributions:        r.Distributions,
			Total:                Major(r.Total, code),
		})
	}
	return out
}

// MapPortfolioToRead maps a portfolio summary to dto.PortfolioRead.
func MapPortfolioToRead(s *portfolio.Summary, code money.Code) dto.PortfolioRead {
	out := dto.PortfolioRead{
		WalletBalance: Major(s.WalletBalance, code),
		TotalInvested: Major(s.TotalInvested, code),
		TotalEarnings: Major(s.TotalEarnings, code),
		ActiveCount:   s.ActiveCount,
		PendingCount:  s.PendingCount,
		Currency:      code.String(),
		Allocation:    make([]dto.AllocationRead, 0, len(s.Allocation)),
		Holdings:      make([]dto.HoldingRead, 0, len(s.Holdings)),
	}
	for _, a := range s.Allocation {
		out.Allocation = append(out.Allocation, dto.AllocationRead{
			Category: a.Category,
			Amount:   Major(a.Amount, code),
			Percent:  a.Percent,
		})
	}
	for _, h := range s.Holdings {
		out.Holdings = append(out.Holdings, dto.HoldingRead{
			InvestmentRead: MapInvestmentToRead(h.Investment, code),
			ProjectName:    h.ProjectName,
			Category:       h.Category,
		})
	}
	return out
}

func mapTotal(t report.Total, code money.Code) dto.TotalRead {
	return dto.TotalRead{Count: t.Count, Amount: Major(t.Amount, code)}
}

// MapStatsToRead maps the platform snapshot to dto.StatsRead.
func MapStatsToRead(s *report.Stats, code money.Code) dto.StatsRead {
	var out dto.StatsRead
	out.Users.Total = s.Users
	out.Users.Active = s.ActiveUsers
	out.Users.Investors = s.Investors
	out.Users.BusinessOwners = s.BusinessOwners
	out.KYC.Pending = s.KYCPending
	out.KYC.Verified = s.KYCVerified
	out.KYC.Rejected = s.KYCRejected
	out.Projects.Total = s.Projects
	out.Projects.ByStatus = s.ProjectsByStatus
	out.Projects.Goal = Major(s.FundingGoal, code)
	out.Projects.Raised = Major(s.FundingRaised, code)
	out.Investments = mapTotal(s.Investments, code)
	out.PendingWithdrawals = mapTotal(s.PendingWithdrawals, code)
	out.WalletBalances = Major(s.WalletBalances, code)
	out.ProfitDistributed = Major(s.ProfitDistributed, code)
	out.Currency = code.String()
	return out
}

// MapFinancialToRead maps a period report to dto.FinancialRead.
func MapFinancialToRead(f *report.Financial, code money.Code) dto.FinancialRead {
	out := dto.FinancialRead{
		From:                f.From,
		To:                  f.To,
		Investments:         mapTotal(f.Investments, code),
		Withdrawals:         mapTotal(f.Withdrawals, code),
		ProfitDistributions: mapTotal(f.ProfitDistributions, code),
		ProfitRuns:          f.ProfitRuns,
		Net:                 Major(f.Net(), code),
		Currency:            code.String(),
		Daily:               make([]dto.DayRead, 0, len(f.Daily)),
	}
	for _, d := range f.Daily {
		out.Daily = append(out.Daily, dto.DayRead{
			Date:   d.Date.Format(time.DateOnly),
			Count:  d.Count,
			Amount: Major(d.Amount, code),
		})
	}
	return out
}

// MapUserDetailToRead maps an admin user view to dto.UserDetailRead.
func MapUserDetailToRead(d *reportsvc.UserDetail, code money.Code) dto.UserDetailRead {
	return dto.UserDetailRead{
		User:              MapUserToRead(d.User, code),
		Investments:       MapSlice(d.Investments, code, MapInvestmentToRead),
		Transactions:      MapSlice(d.Transactions, code, MapTransactionToRead),
		TotalTransactions: d.TotalTransactions,
	}
}

// MapProjectInvestmentsToRead lists a project's investments with their sum.
func MapProjectInvestmentsToRead(
	projectID uuid.UUID,
	status investment.Status,
	invs []*investment.Investment,
	code money.Code,
) dto.ProjectInvestmentsRead {
	var total money.Amount
	for _, inv := range invs {
		total += inv.Amount
	}
	return dto.ProjectInvestmentsRead{
		ProjectID:   projectID,
		Status:      string(status),
		Count:       len(invs),
		Total:       Major(total, code),
		Currency:    code.String(),
		Investments: MapSlice(invs, code, MapInvestmentToRead),
	}
}

// MapSlice applies fn to every element of in.
func MapSlice[T any, R any](in []T, code money.Code, fn func(T, money.Code) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v, code))
	}
	return out
}
