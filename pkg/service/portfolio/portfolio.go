// Package portfolio summarizes an investor's holdings.
package portfolio

import (
	"context"
	"sort"

	"github.com/demonyhq/demony/pkg/domain/investment"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation is the share of invested money in one project category.
type Allocation struct {
	Category string
	Amount   money.Amount
	Percent  decimal.Decimal
}

// Holding is one active investment with its project name.
type Holding struct {
	Investment  *investment.Investment
	ProjectName string
	Category    string
}

// Summary is the investor dashboard.
type Summary struct {
	WalletBalance money.Amount
	TotalInvested money.Amount
	TotalEarnings money.Amount
	ActiveCount   int
	PendingCount  int
	Allocation    []Allocation
	Holdings      []Holding
}

// Service builds portfolio summaries.
type Service struct {
	uow repository.UnitOfWork
}

func New(uow repository.UnitOfWork) *Service {
	return &Service{uow: uow}
}

// Summary aggregates the user's active investments by project category.
func (s *Service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	investments, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	invs, err := investments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects, err := s.uow.ProjectRepository()
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		WalletBalance: u.WalletBalance,
		TotalInvested: u.TotalInvested,
		TotalEarnings: u.TotalEarnings,
	}
	byCategory := map[string]money.Amount{}
	var invested money.Amount
	for _, inv := range invs {
		switch inv.Status {
		case investment.StatusPendingPayment:
			sum.PendingCount++
			continue
		case investment.StatusActive:
		default:
			continue
		}
		p, err := projects.Get(ctx, inv.ProjectID)
		if err != nil {
			return nil, err
		}
		sum.ActiveCount++
		invested += inv.Amount
		byCategory[p.Category] += inv.Amount
		sum.Holdings = append(sum.Holdings, Holding{Investment: inv, ProjectName: p.Name, Category: p.Category})
	}

	if invested > 0 {
		total := decimal.NewFromInt(invested)
		for category, amount := range byCategory {
			sum.Allocation = append(sum.Allocation, Allocation{
				Category: category,
				Amount:   amount,
				Percent:  decimal.NewFromInt(amount).Div(total).Mul(decimal.NewFromInt(100)).Round(2),
			})
		}
		sort.Slice(sum.Allocation, func(i, j int) bool {
			if sum.Allocation[i].Amount != sum.Allocation[j].Amount {
				return sum.Allocation[i].Amount > sum.Allocation[j].Amount
			}
			return sum.Allocation[i].Category < sum.Allocation[j].Category
		})
	}
	return sum, nil
}
