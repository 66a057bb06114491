// Package testutils provides database fixtures shared by repository and
// service tests.
package testutils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/demonyhq/demony/infra"
	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/domain/project"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// IntegrationEnv enables the Testcontainers-backed tests when set to 1.
const IntegrationEnv = "DEMONY_INTEGRATION"

// NewSQLiteDB opens a private, migrated in-memory database for one test.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDBConnection(&config.DB{
		Driver:      "sqlite",
		Url:         fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString()),
		AutoMigrate: true,
	}, "test")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewPostgresDB starts a Postgres container and applies the migrations.
// The test is skipped unless DEMONY_INTEGRATION=1.
func NewPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if !config.EnvFlag(IntegrationEnv, false) {
		t.Skipf("set %s=1 to run Postgres integration tests", IntegrationEnv)
	}
	ctx := context.Background()

	pg, err := tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("demony"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDBConnection(&config.DB{
		Driver:      "postgres",
		Url:         dsn,
		AutoMigrate: true,
	}, "test")
	require.NoError(t, err)
	return db
}

// UserOption customizes a fixture user.
type UserOption func(u *user.User)

// WithBalance seeds the wallet.
func WithBalance(amount money.Amount) UserOption {
	return func(u *user.User) { u.WalletBalance = amount }
}

// WithRole sets the role, including admin.
func WithRole(role user.Role) UserOption {
	return func(u *user.User) { u.Role = role }
}

// Verified marks the user as KYC verified.
func Verified() UserOption {
	return func(u *user.User) {
		u.IsVerified = true
		u.KYCStatus = user.KYCVerified
	}
}

// Password is the plain-text password of every fixture user.
const Password = "password123"

// CreateUser inserts a user with a random email.
func CreateUser(t *testing.T, db *gorm.DB, opts ...UserOption) *user.User {
	t.Helper()
	u, err := user.New("Test User", fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8]), Password, user.RoleInvestor)
	require.NoError(t, err)
	for _, opt := range opts {
		opt(u)
	}
	users, err := infrarepo.NewUoW(db).UserRepository()
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

// ProjectOption customizes a fixture project.
type ProjectOption func(p *project.Project)

// WithStatus sets the project status.
func WithStatus(s project.Status) ProjectOption {
	return func(p *project.Project) { p.Status = s }
}

// WithMinInvestment sets the project minimum in minor units.
func WithMinInvestment(amount money.Amount) ProjectOption {
	return func(p *project.Project) { p.MinInvestment = amount }
}

// WithCategory sets the project category.
func WithCategory(category string) ProjectOption {
	return func(p *project.Project) { p.Category = category }
}

// WithInvestorShare overrides the platform investor share.
func WithInvestorShare(pct int64) ProjectOption {
	return func(p *project.Project) {
		share := decimal.NewFromInt(pct)
		p.InvestorSharePercent = &share
	}
}

// CreateProject inserts an active project with the given goal in minor units.
func CreateProject(t *testing.T, db *gorm.DB, goal money.Amount, opts ...ProjectOption) *project.Project {
	t.Helper()
	p, err := project.New(project.Params{
		Name:           "Test Farm " + uuid.NewString()[:6],
		Category:       "agriculture",
		GoalAmount:     goal,
		TargetReturn:   decimal.NewFromInt(15),
		DurationMonths: 12,
		RiskLevel:      project.RiskMedium,
	}, project.StatusActive, nil)
	require.NoError(t, err)
	for _, opt := range opts {
		opt(p)
	}
	projects, err := infrarepo.NewUoW(db).ProjectRepository()
	require.NoError(t, err)
	require.NoError(t, projects.Create(context.Background(), p))
	return p
}
