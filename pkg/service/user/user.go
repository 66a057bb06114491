// Package user provides account management: signup, lookups, KYC review
// and admin controls.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/eventbus"
	"github.com/demonyhq/demony/pkg/repository"
	"github.com/google/uuid"
)

// Service provides business logic for user operations.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger
}

// New creates a new Service with a UnitOfWork and logger.
func New(uow repository.UnitOfWork, bus eventbus.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, bus: bus, logger: logger.With("service", "user")}
}

// Signup creates an investor or business owner account.
func (s *Service) Signup(ctx context.Context, name, email, password string, role user.Role) (*user.User, error) {
	u, err := user.New(name, email, password, role)
	if err != nil {
		return nil, err
	}
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	if err := users.Create(ctx, u); err != nil {
		s.logger.Warn("Signup failed", "email", u.Email, "error", err)
		return nil, err
	}
	s.logger.Info("User signed up", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return users.Get(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, err
	}
	return users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// List returns a page of users and the total count.
func (s *Service) List(ctx context.Context, filter repository.UserFilter) ([]*user.User, int64, error) {
	users, err := s.uow.UserRepository()
	if err != nil {
		return nil, 0, err
	}
	filter.Page = filter.Page.Normalize()
	return users.List(ctx, filter)
}

// SubmitKYC queues the user's documents for admin review.
func (s *Service) SubmitKYC(ctx context.Context, id uuid.UUID) error {
	return s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		users, err := tx.UserRepository()
		if err != nil {
			return err
		}
		u, err := users.Get(ctx, id)
		if err != nil {
			return err
		}
		if u.KYCStatus == user.KYCVerified || u.KYCStatus == user.KYCPending {
			return fmt.Errorf("%w: kyc is %s", domain.ErrValidation, u.KYCStatus)
		}
		return users.UpdateKYC(ctx, id, user.KYCPending, false, "")
	})
}

// ReviewKYC records an admin decision. Approval is what unlocks withdrawals.
func (s *Service) ReviewKYC(ctx context.Context, id uuid.UUID, decision user.KYCDecision, reason string) (*user.User, error) {
	status, verified, err := user.ApplyKYC(decision, reason)
	if err != nil {
		return nil, err
	}
	if decision == user.KYCApprove {
		reason = ""
	}
	var u *user.User
	err = s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		users, err := tx.UserRepository()
		if err != nil {
			return err
		}
		if err := users.UpdateKYC(ctx, id, status, verified, reason); err != nil {
			return err
		}
		u, err = users.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("KYC reviewed", "user_id", id, "status", status)
	eventbus.Publish(ctx, s.bus, s.logger, &events.KYCReviewed{
		UserID:    id,
		Status:    string(status),
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
	return u, nil
}

// SetActive suspends or reinstates a user. Suspended users cannot log in or
// move money.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	users, err := s.uow.UserRepository()
	if err != nil {
		return err
	}
	if err := users.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.logger.Info("User status changed", "user_id", id, "active", active)
	return nil
}

// MakeAdmin grants the admin role to the user with email.
func (s *Service) MakeAdmin(ctx context.Context, email string) (*user.User, error) {
	var u *user.User
	err := s.uow.Do(ctx, func(tx repository.UnitOfWork) error {
		users, err := tx.UserRepository()
		if err != nil {
			return err
		}
		if u, err = users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email))); err != nil {
			return err
		}
		if u.IsAdmin() {
			return nil
		}
		if err := users.SetRole(ctx, u.ID, user.RoleAdmin); err != nil {
			return err
		}
		u.Role = user.RoleAdmin
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Admin role granted", "user_id", u.ID)
	return u, nil
}
