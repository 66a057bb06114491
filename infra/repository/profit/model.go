package profit

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/profit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Distribution is the gorm model backing the profit_distributions table.
// The composite unique index is the idempotency key of a run.
type Distribution struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RunID                string          `gorm:"size:64;not null;uniqueIndex:idx_profit_run_investment,priority:1"`
	InvestmentID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_profit_run_investment,priority:2"`
	UserID               uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProjectID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount               int64           `gorm:"not null"`
	OwnershipPercent     decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	GrossProfit          int64           `gorm:"not null"`
	InvestorSharePercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Description          string
	CreatedAt            time.Time
}

// TableName specifies the table name for the Distribution model.
func (Distribution) TableName() string {
	return "profit_distributions"
}

func mapDomainToModel(d *profit.Distribution) *Distribution {
	return &Distribution{
		ID:                   d.ID,
		RunID:                d.RunID,
		InvestmentID:         d.InvestmentID,
		UserID:               d.UserID,
		ProjectID:            d.ProjectID,
		Amount:               d.Amount,
		OwnershipPercent:     d.OwnershipPercent,
		GrossProfit:          d.GrossProfit,
		InvestorSharePercent: d.InvestorSharePercent,
		Description:          d.Description,
		CreatedAt:            d.CreatedAt,
	}
}

func mapModelToDomain(m *Distribution) *profit.Distribution {
	return &profit.Distribution{
		ID:                   m.ID,
		RunID:                m.RunID,
		UserID:               m.UserID,
		ProjectID:            m.ProjectID,
		InvestmentID:         m.InvestmentID,
		Amount:               m.Amount,
		OwnershipPercent:     m.OwnershipPercent,
		GrossProfit:          m.GrossProfit,
		InvestorSharePercent: m.InvestorSharePercent,
		Description:          m.Description,
		CreatedAt:            m.CreatedAt,
	}
}

// Run is the header of a distribution run, written by its first call.
type Run struct {
	RunID                string          `gorm:"size:64;primaryKey"`
	ProjectID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	GrossProfit          int64           `gorm:"not null"`
	InvestorSharePercent decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	InvestorPool         int64           `gorm:"not null"`
	PlatformFee          int64           `gorm:"not null"`
	Description          string
	CreatedAt            time.Time
	Shares               []RunShare `gorm:"foreignKey:RunID;references:RunID"`
}

// TableName specifies the table name for the Run model.
func (Run) TableName() string {
	return "profit_runs"
}

// RunShare is one investment's frozen share of a run.
type RunShare struct {
	RunID            string          `gorm:"size:64;primaryKey"`
	InvestmentID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null"`
	OwnershipPercent decimal.Decimal `gorm:"type:numeric(20,4);not null"`
	Amount           int64           `gorm:"not null"`
}

// TableName specifies the table name for the RunShare model.
func (RunShare) TableName() string {
	return "profit_run_shares"
}

func mapRunToModel(r *profit.Run) *Run {
	m := &Run{
		RunID:                r.RunID,
		ProjectID:            r.ProjectID,
		GrossProfit:          r.Gross,
		InvestorSharePercent: r.InvestorShare,
		InvestorPool:         r.InvestorPool,
		PlatformFee:          r.PlatformFee,
		Description:          r.Description,
		CreatedAt:            r.CreatedAt,
		Shares:               make([]RunShare, 0, len(r.Shares)),
	}
	for _, sh := range r.Shares {
		m.Shares = append(m.Shares, RunShare{
			RunID:            r.RunID,
			InvestmentID:     sh.InvestmentID,
			UserID:           sh.UserID,
			OwnershipPercent: sh.OwnershipPercent,
			Amount:           sh.Amount,
		})
	}
	return m
}

func mapRunToDomain(m *Run) *profit.Run {
	r := &profit.Run{
		RunID:         m.RunID,
		ProjectID:     m.ProjectID,
		Gross:         m.GrossProfit,
		InvestorShare: m.InvestorSharePercent,
		InvestorPool:  m.InvestorPool,
		PlatformFee:   m.PlatformFee,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
		Shares:        make([]profit.Share, 0, len(m.Shares)),
	}
	for _, sh := range m.Shares {
		r.Shares = append(r.Shares, profit.Share{
			InvestmentID:     sh.InvestmentID,
			UserID:           sh.UserID,
			OwnershipPercent: sh.OwnershipPercent,
			Amount:           sh.Amount,
		})
	}
	return r
}

// splitRow is the scan target of the split report aggregate.
type splitRow struct {
	InvestorSharePercent decimal.Decimal
	Runs                 int
	Distributions        int
	Total                int64
}
