package repository

import (
	"github.com/demonyhq/demony/infra/repository/deposit"
	"github.com/demonyhq/demony/infra/repository/investment"
	"github.com/demonyhq/demony/infra/repository/profit"
	"github.com/demonyhq/demony/infra/repository/project"
	"github.com/demonyhq/demony/infra/repository/transaction"
	"github.com/demonyhq/demony/infra/repository/user"
	"github.com/demonyhq/demony/infra/repository/withdrawal"
)

// Models lists every gorm model in dependency order, for AutoMigrate.
func Models() []any {
	return []any{
		&user.User{},
		&project.Project{},
		&investment.Investment{},
		&transaction.Transaction{},
		&withdrawal.Withdrawal{},
		&profit.Distribution{},
		&profit.Run{},
		&profit.RunShare{},
		&deposit.Deposit{},
	}
}
