package infra

import (
	"errors"
	"fmt"
	"time"

	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the configured database. Postgres is the production
// driver; sqlite serves local runs and tests.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	databaseUrl := cnf.Url
	if databaseUrl == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
	}

	var dialector gorm.Dialector
	switch cnf.Driver {
	case "", "postgres":
		dialector = postgres.Open(databaseUrl)
	case "sqlite":
		dialector = sqlite.Open(databaseUrl)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cnf.Driver)
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cnf.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	lifetime := cnf.MaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	if cnf.Driver == "sqlite" {
		// sqlite serializes writers, and an in-memory database lives only as
		// long as its connection.
		maxOpen = 1
		lifetime = 0
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(lifetime)

	if cnf.AutoMigrate {
		if err := Migrate(connection, cnf.Driver); err != nil {
			return nil, err
		}
	}

	return connection, nil
}

// Migrate brings the schema up to date: golang-migrate for Postgres, gorm
// AutoMigrate for sqlite.
func Migrate(db *gorm.DB, driver string) error {
	if driver == "sqlite" {
		if err := db.AutoMigrate(infrarepo.Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}
	return RunMigrations(db)
}
