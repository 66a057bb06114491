package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/user"
	authsvc "github.com/demonyhq/demony/pkg/service/auth"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStrategy struct {
	mock.Mock
}

func (m *mockStrategy) Login(ctx context.Context, email, password string) (*user.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockStrategy) Claims(token *jwt.Token) (*authsvc.Claims, error) {
	args := m.Called(token)
	c, _ := args.Get(0).(*authsvc.Claims)
	return c, args.Error(1)
}

func (m *mockStrategy) GenerateToken(ctx context.Context, u *user.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

var jwtCfg = &config.Jwt{Secret: "test-secret", Expiry: time.Hour}

func parse(t *testing.T, signed string) *jwt.Token {
	t.Helper()
	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) {
		return []byte(jwtCfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	return token
}

func TestLogin_IssuesTokenWithClaims(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	u := testutils.CreateUser(t, db, testutils.WithRole(user.RoleAdmin))
	svc := authsvc.NewWithJWT(infrarepo.NewUoW(db), jwtCfg, slog.Default())

	got, err := svc.Login(context.Background(), "  "+u.Email+" ", testutils.Password)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	signed, err := svc.GenerateToken(context.Background(), got)
	require.NoError(t, err)
	claims, err := svc.Claims(parse(t, signed))
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, user.RoleAdmin, claims.Role)

	id, err := svc.GetCurrentUserID(parse(t, signed))
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestLogin_Rejections(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	uow := infrarepo.NewUoW(db)
	active := testutils.CreateUser(t, db)
	suspended := testutils.CreateUser(t, db)
	users, err := uow.UserRepository()
	require.NoError(t, err)
	require.NoError(t, users.SetActive(context.Background(), suspended.ID, false))
	svc := authsvc.NewWithJWT(uow, jwtCfg, nil)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"wrong password", active.Email, "nope", domain.ErrUnauthorized},
		{"unknown email", "ghost@example.com", testutils.Password, domain.ErrUnauthorized},
		{"suspended", suspended.Email, testutils.Password, domain.ErrUserSuspended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Login(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, got)
		})
	}
}

func TestClaims_RejectsMalformedTokens(t *testing.T) {
	svc := authsvc.NewWithJWT(nil, jwtCfg, nil)

	_, err := svc.Claims(nil)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "not-a-uuid"})
	token.Valid = true
	_, err = svc.Claims(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestService_DelegatesToStrategy(t *testing.T) {
	strategy := new(mockStrategy)
	strategy.On("Login", mock.Anything, "user@example.com", "wrong").Return(nil, errors.New("invalid password")).Once()
	u := &user.User{ID: uuid.New()}
	strategy.On("GenerateToken", mock.Anything, u).Return("", errors.New("no key")).Once()

	svc := authsvc.New(strategy, nil)
	got, err := svc.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)
	assert.Nil(t, got)

	_, err = svc.GenerateToken(context.Background(), u)
	require.Error(t, err)
	strategy.AssertExpectations(t)
}

func TestBasicAuthStrategy(t *testing.T) {
	db := testutils.NewSQLiteDB(t)
	u := testutils.CreateUser(t, db)
	svc := authsvc.NewWithBasic(infrarepo.NewUoW(db), nil)

	got, err := svc.Login(context.Background(), u.Email, testutils.Password)
	require.NoError(t, err)
	token, err := svc.GenerateToken(context.Background(), got)
	require.NoError(t, err)
	assert.Empty(t, token)
}
