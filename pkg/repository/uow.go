package repository

import (
	"context"
	"reflect"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Every repository obtained from the UnitOfWork passed to Do is bound to the
// same database transaction: either all writes made through it commit, or none do.
//
//	err := uow.Do(ctx, func(tx UnitOfWork) error {
//	    users, err := tx.UserRepository()
//	    ...
//	})
type UnitOfWork interface {
	// Do executes fn within a transaction boundary.
	// If fn returns an error, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	// GetRepository returns a repository of the requested interface type.
	//   repoAny, err := uow.GetRepository(reflect.TypeOf((*UserRepository)(nil)).Elem())
	GetRepository(repoType reflect.Type) (any, error)

	UserRepository() (UserRepository, error)
	ProjectRepository() (ProjectRepository, error)
	InvestmentRepository() (InvestmentRepository, error)
	TransactionRepository() (TransactionRepository, error)
	WithdrawalRepository() (WithdrawalRepository, error)
	ProfitRepository() (ProfitRepository, error)
	DepositRepository() (DepositRepository, error)
	ReportRepository() (ReportRepository, error)
}
