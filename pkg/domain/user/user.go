package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/money"
	"github.com/demonyhq/demony/pkg/utils"
	"github.com/google/uuid"
)

var (
	// ErrUserUnauthorized is returned when credentials do not match.
	ErrUserUnauthorized = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	// ErrInvalidRole is returned for unknown or non self-assignable roles.
	ErrInvalidRole = errors.New("invalid role")
)

// Role is the authorization role of a user.
type Role string

const (
	RoleInvestor      Role = "investor"
	RoleBusinessOwner Role = "business_owner"
	RoleAdmin         Role = "admin"
)

// SelfAssignable reports whether a user may pick the role at signup.
func (r Role) SelfAssignable() bool {
	return r == RoleInvestor || r == RoleBusinessOwner
}

// KYCStatus tracks identity verification.
type KYCStatus string

const (
	KYCNone     KYCStatus = "none"
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

// User is a platform member and the owner of a wallet.
//
// Invariants:
//   - WalletBalance is never negative.
//   - TotalInvested and TotalEarnings only grow.
//   - Users are never hard-deleted; IsActive=false suspends them.
type User struct {
	ID                 uuid.UUID
	Email              string
	Name               string
	HashedPassword     string
	Role               Role
	WalletBalance      money.Amount
	TotalInvested      money.Amount
	TotalEarnings      money.Amount
	IsVerified         bool
	KYCStatus          KYCStatus
	KYCRejectionReason string
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// New creates a new User with a hashed password and current timestamps.
func New(name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}
	if !utils.IsEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}
	if role == "" {
		role = RoleInvestor
	}
	if !role.SelfAssignable() {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidRole)
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		ID:             uuid.New(),
		Email:          email,
		Name:           name,
		HashedPassword: hashed,
		Role:           role,
		KYCStatus:      KYCNone,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanWithdraw checks the KYC gate for payouts.
func (u *User) CanWithdraw() error {
	if !u.IsVerified {
		return domain.ErrKYCRequired
	}
	return nil
}

// KYCDecision is an admin verdict on a user's identity documents.
type KYCDecision string

const (
	KYCApprove KYCDecision = "approve"
	KYCReject  KYCDecision = "reject"
)

// ApplyKYC returns the verification state resulting from decision.
func ApplyKYC(decision KYCDecision, reason string) (KYCStatus, bool, error) {
	switch decision {
	case KYCApprove:
		return KYCVerified, true, nil
	case KYCReject:
		if strings.TrimSpace(reason) == "" {
			return "", false, fmt.Errorf("%w: rejection reason required", domain.ErrValidation)
		}
		return KYCRejected, false, nil
	default:
		return "", false, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}
}
