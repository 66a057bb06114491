package project

import (
	"time"

	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project is the gorm model backing the projects table.
type Project struct {
	ID                     uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name                   string              `gorm:"size:255;not null"`
	Category               string              `gorm:"size:64;index;not null"`
	Description            string              `gorm:"type:text"`
	GoalAmount             int64               `gorm:"not null;check:chk_projects_goal_amount,goal_amount > 0"`
	CurrentFunding         int64               `gorm:"not null;default:0"`
	MinInvestment          int64               `gorm:"not null;default:0"`
	InvestorCount          int                 `gorm:"not null;default:0"`
	Status                 string              `gorm:"size:32;index;not null"`
	TargetReturn           decimal.Decimal     `gorm:"type:numeric(7,2);not null"`
	DurationMonths         int                 `gorm:"not null;default:0"`
	RiskLevel              string              `gorm:"size:16;not null;default:'medium'"`
	Featured               bool                `gorm:"index;not null;default:false"`
	Priority               int                 `gorm:"not null;default:0"`
	OwnerID                *uuid.UUID          `gorm:"type:uuid;index"`
	InvestorSharePercent   decimal.NullDecimal `gorm:"type:numeric(5,2)"`
	TotalProfitDistributed int64               `gorm:"not null;default:0"`
	LastDistributionAt     *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName specifies the table name for the Project model.
func (Project) TableName() string {
	return "projects"
}

func mapDomainToModel(p *project.Project) *Project {
	m := &Project{
		ID:                     p.ID,
		Name:                   p.Name,
		Category:               p.Category,
		Description:            p.Description,
		GoalAmount:             p.GoalAmount,
		CurrentFunding:         p.CurrentFunding,
		MinInvestment:          p.MinInvestment,
		InvestorCount:          p.InvestorCount,
		Status:                 string(p.Status),
		TargetReturn:           p.TargetReturn,
		DurationMonths:         p.DurationMonths,
		RiskLevel:              string(p.RiskLevel),
		Featured:               p.Featured,
		Priority:               p.Priority,
		OwnerID:                p.OwnerID,
		TotalProfitDistributed: p.TotalProfitDistributed,
		LastDistributionAt:     p.LastDistributionAt,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
}
	if p.InvestorSharePercent != nil {
		m.InvestorSharePercent = decimal.NewNullDecimal(*p.InvestorSharePercent)
}
	return m
}

func mapModelToDomain(m *Project) *project.Project {
	p := &project.Project{
		ID:                     m.ID,
		Name:                   m.Name,
		Category:               m.Category,
		Description:            m.Description,
		GoalAmount:             m.GoalAmount,
		CurrentFunding:         m.CurrentFunding,
		MinInvestment:          m.MinInvestment,
		InvestorCount:          m.InvestorCount,
		Status:                 project.Status(m.Status),
		TargetReturn:           m.TargetReturn,
		DurationMonths:         m.DurationMonths,
		RiskLevel:              project.RiskLevel(m.RiskLevel),
		Featured:               m.Featured,
		Priority:               m.Priority,
		OwnerID:                m.OwnerID,
		TotalProfitDistributed: m.TotalProfitDistributed,
		LastDistributionAt:     m.LastDistributionAt,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
}
	if m.InvestorSharePercent.Valid {
		share := m.InvestorSharePercent.Decimal
		p.InvestorSharePercent = &share
}
	return p
}
