package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestUoW_DoAndGetRepository(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		repoAny, err := txUow.GetRepository(reflect.TypeOf((*repository.UserRepository)(nil)).Elem())
		require.NoError(err)
		_, ok := repoAny.(repository.UserRepository)
		assert.True(ok)

		repoAny, err = txUow.GetRepository(reflect.TypeOf((*repository.ProfitRepository)(nil)).Elem())
		require.NoError(err)
		_, ok = repoAny.(repository.ProfitRepository)
		assert.True(ok)
		return nil
	})
	assert.NoError(err)
	assert.NoError(mock.ExpectationsWereMet())
}

func TestUoW_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(repository.UnitOfWork) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_UnsupportedType(t *testing.T) {
	db, _ := newMockDB(t)
	_, err := NewUoW(db).GetRepository(reflect.TypeOf(""))
	assert.Error(t, err)
}

func TestUoW_TypeSafeMethods(t *testing.T) {
	require := require.New(t)
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	check := func(u repository.UnitOfWork) {
		users, err := u.UserRepository()
		require.NoError(err)
		require.NotNil(users)
		projects, err := u.ProjectRepository()
		require.NoError(err)
		require.NotNil(projects)
		investments, err := u.InvestmentRepository()
		require.NoError(err)
		require.NotNil(investments)
		journal, err := u.TransactionRepository()
		require.NoError(err)
		require.NotNil(journal)
		withdrawals, err := u.WithdrawalRepository()
		require.NoError(err)
		require.NotNil(withdrawals)
		profits, err := u.ProfitRepository()
		require.NoError(err)
		require.NotNil(profits)
		deposits, err := u.DepositRepository()
		require.NoError(err)
		require.NotNil(deposits)
	}

	check(uow)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		check(txUow)
		return nil
	}))
}

func TestUserRepository_DebitIsConditional(t *testing.T) {
	db, mock := newMockDB(t)
	users, err := NewUoW(db).UserRepository()
	require.NoError(t, err)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "users" SET .*wallet_balance - .* WHERE id = .* AND wallet_balance >= `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT "id","wallet_balance" FROM "users" WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "wallet_balance"}).AddRow(id.String(), 50))

	_, err = users.Debit(context.Background(), id, 100)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}
