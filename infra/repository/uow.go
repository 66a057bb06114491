package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/demonyhq/demony/infra/repository/deposit"
	"github.com/demonyhq/demony/infra/repository/investment"
	"github.com/demonyhq/demony/infra/repository/profit"
	"github.com/demonyhq/demony/infra/repository/project"
	"github.com/demonyhq/demony/infra/repository/report"
	"github.com/demonyhq/demony/infra/repository/transaction"
	"github.com/demonyhq/demony/infra/repository/user"
	"github.com/demonyhq/demony/infra/repository/withdrawal"
	"github.com/demonyhq/demony/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides transaction boundary and repository access in one abstraction.
//
// Repositories handed out inside Do share the transaction session, so a
// debit, its journal entry and the funding increment commit or roll back together.
type UoW struct {
	db           *gorm.DB
	tx           *gorm.DB
	repoRegistry map[reflect.Type]func(*gorm.DB) any
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{
		db: db,
		repoRegistry: map[reflect.Type]func(*gorm.DB) any{
			typeOf[repository.UserRepository]():        func(db *gorm.DB) any { return user.New(db) },
			typeOf[repository.ProjectRepository]():     func(db *gorm.DB) any { return project.New(db) },
			typeOf[repository.InvestmentRepository]():  func(db *gorm.DB) any { return investment.New(db) },
			typeOf[repository.TransactionRepository](): func(db *gorm.DB) any { return transaction.New(db) },
			typeOf[repository.WithdrawalRepository]():  func(db *gorm.DB) any { return withdrawal.New(db) },
			typeOf[repository.ProfitRepository]():      func(db *gorm.DB) any { return profit.New(db) },
			typeOf[repository.DepositRepository]():     func(db *gorm.DB) any { return deposit.New(db) },
			typeOf[repository.ReportRepository]():      func(db *gorm.DB) any { return report.New(db) },
		},
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Do runs the given function in a transaction boundary, providing a UoW with repository access.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txnUow := &UoW{db: u.db, tx: tx, repoRegistry: u.repoRegistry}
		return fn(txnUow)
	})
}

// GetRepository returns a repository bound to the transaction session, or to
// the plain connection when called outside Do.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	constructor, ok := u.repoRegistry[repoType]
	if !ok {
		return nil, fmt.Errorf("unsupported repository type: %v", repoType)
	}
	return constructor(u.session()), nil
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func get[T any](u *UoW) (T, error) {
	var zero T
	repoAny, err := u.GetRepository(typeOf[T]())
	if err != nil {
		return zero, err
	}
	r, ok := repoAny.(T)
	if !ok {
		return zero, fmt.Errorf("repository %v has unexpected type %T", typeOf[T](), repoAny)
	}
	return r, nil
}

// UserRepository returns the user repository bound to the current session.
func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return get[repository.UserRepository](u)
}

// ProjectRepository returns the project repository bound to the current session.
func (u *UoW) ProjectRepository() (repository.ProjectRepository, error) {
	return get[repository.ProjectRepository](u)
}

// InvestmentRepository returns the investment repository bound to the current session.
func (u *UoW) InvestmentRepository() (repository.InvestmentRepository, error) {
	return get[repository.InvestmentRepository](u)
}

// TransactionRepository returns the journal bound to the current session.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return get[repository.TransactionRepository](u)
}

// WithdrawalRepository returns the withdrawal repository bound to the current session.
func (u *UoW) WithdrawalRepository() (repository.WithdrawalRepository, error) {
	return get[repository.WithdrawalRepository](u)
}

// ProfitRepository returns the distribution repository bound to the current session.
func (u *UoW) ProfitRepository() (repository.ProfitRepository, error) {
	return get[repository.ProfitRepository](u)
}

// DepositRepository returns the deposit repository bound to the current session.
func (u *UoW) DepositRepository() (repository.DepositRepository, error) {
	return get[repository.DepositRepository](u)
}

// ReportRepository returns the admin aggregates bound to the current session.
func (u *UoW) ReportRepository() (repository.ReportRepository, error) {
	return get[repository.ReportRepository](u)
}

var _ repository.UnitOfWork = (*UoW)(nil)
