// Package auth authenticates users and issues their access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/config"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/demonyhq/demony/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is what a verified token says about its bearer.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Role   user.Role
}

type Strategy interface {
	Login(ctx context.Context, email, password string) (*user.User, error)
	Claims(token *jwt.Token) (*Claims, error)
	GenerateToken(ctx context.Context, u *user.User) (string, error)
}

type Service struct {
	strategy Strategy
	logger   *slog.Logger
}

func New(strategy Strategy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{strategy: strategy, logger: logger.With("service", "auth")}
}

func NewWithBasic(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return New(&BasicAuthStrategy{uow: uow}, logger)
}

func NewWithJWT(uow repository.UnitOfWork, cfg *config.Jwt, logger *slog.Logger) *Service {
	return New(&JWTStrategy{uow: uow, cfg: cfg}, logger)
}

// Login checks the credentials and refuses suspended accounts.
func (s *Service) Login(ctx context.Context, email, password string) (u *user.User, err error) {
	log := s.logger.With("method", "Login")
	u, err = s.strategy.Login(ctx, email, password)
	if err != nil {
		log.Warn("Login failed", "error", err)
		return nil, err
	}
	log.Info("Login successful", "user_id", u.ID)
	return u, nil
}

func (s *Service) GenerateToken(ctx context.Context, u *user.User) (string, error) {
	token, err := s.strategy.GenerateToken(ctx, u)
	if err != nil {
		s.logger.Error("GenerateToken failed", "user_id", u.ID, "error", err)
		return "", err
	}
	return token, nil
}

// Claims extracts the bearer's identity from a token the middleware has
// already verified.
func (s *Service) Claims(token *jwt.Token) (*Claims, error) {
	c, err := s.strategy.Claims(token)
	if err != nil {
		s.logger.Debug("Claims rejected", "error", err)
		return nil, err
	}
	return c, nil
}

// GetCurrentUserID returns the user id claim of token.
func (s *Service) GetCurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	c, err := s.Claims(token)
	if err != nil {
		return uuid.Nil, err
	}
	return c.UserID, nil
}

// dummyHash keeps unknown-email logins as slow as wrong-password ones.
const dummyHash = "$2a$10$7zFqzDbD3RrlkMTczbXG9OWZ0FLOXjIxXzSZ.QZxkVXjXcx7QZQiC"

func checkCredentials(ctx context.Context, uow repository.UnitOfWork, email, password string) (*user.User, error) {
	users, err := uow.UserRepository()
	if err != nil {
		return nil, err
	}
	u, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		_ = utils.CheckPasswordHash(password, dummyHash)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, user.ErrUserUnauthorized
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, u.HashedPassword) {
		return nil, user.ErrUserUnauthorized
	}
	if !u.IsActive {
		return nil, domain.ErrUserSuspended
	}
	return u, nil
}

// JWTStrategy issues HS256 tokens carrying user_id, email, role and exp.
type JWTStrategy struct {
	uow repository.UnitOfWork
	cfg *config.Jwt
}

func NewJWTStrategy(uow repository.UnitOfWork, cfg *config.Jwt) *JWTStrategy {
	return &JWTStrategy{uow: uow, cfg: cfg}
}

func (s *JWTStrategy) Login(ctx context.Context, email, password string) (*user.User, error) {
	return checkCredentials(ctx, s.uow, email, password)
}

func (s *JWTStrategy) GenerateToken(_ context.Context, u *user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID.String(),
		"email":   u.Email,
		"role":    string(u.Role),
		"exp":     time.Now().Add(s.cfg.Expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTStrategy) Claims(token *jwt.Token) (*Claims, error) {
	if token == nil || !token.Valid {
		return nil, user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, user.ErrUserUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return nil, user.ErrUserUnauthorized
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, user.ErrUserUnauthorized
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return &Claims{UserID: id, Email: email, Role: user.Role(role)}, nil
}

// BasicAuthStrategy checks a password without issuing tokens. The admin CLI uses it.
type BasicAuthStrategy struct {
	uow repository.UnitOfWork
}

func NewBasicAuthStrategy(uow repository.UnitOfWork) *BasicAuthStrategy {
	return &BasicAuthStrategy{uow: uow}
}

func (s *BasicAuthStrategy) Login(ctx context.Context, email, password string) (*user.User, error) {
	return checkCredentials(ctx, s.uow, email, password)
}

func (s *BasicAuthStrategy) Claims(*jwt.Token) (*Claims, error) {
	return nil, user.ErrUserUnauthorized
}

func (s *BasicAuthStrategy) GenerateToken(context.Context, *user.User) (string, error) {
	return "", nil
}
