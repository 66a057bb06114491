package user_test

import (
	"testing"

	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	u, err := user.New("  Ama Mensah ", "Ama@Example.com", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, "Ama Mensah", u.Name)
	assert.Equal(t, "ama@example.com", u.Email)
	assert.Equal(t, user.RoleInvestor, u.Role)
	assert.Equal(t, user.KYCNone, u.KYCStatus)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsVerified)
	assert.Zero(t, u.WalletBalance)
	assert.True(t, utils.CheckPasswordHash("password123", u.HashedPassword))
}

func TestNew_Validation(t *testing.T) {
	cases := map[string]struct {
		name, email, password string
		role                  user.Role
	}{
		"empty name":     {"", "a@b.com", "password123", user.RoleInvestor},
		"bad email":      {"A", "not-an-email", "password123", user.RoleInvestor},
		"short password": {"A", "a@b.com", "123", user.RoleInvestor},
		"admin signup":   {"A", "a@b.com", "password123", user.RoleAdmin},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := user.New(tc.name, tc.email, tc.password, tc.role)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCanWithdraw(t *testing.T) {
	u := &user.User{}
	require.ErrorIs(t, u.CanWithdraw(), domain.ErrKYCRequired)
	u.IsVerified = true
	require.NoError(t, u.CanWithdraw())
}

func TestApplyKYC(t *testing.T) {
	status, verified, err := user.ApplyKYC(user.KYCApprove, "")
	require.NoError(t, err)
	assert.Equal(t, user.KYCVerified, status)
	assert.True(t, verified)

	_, _, err = user.ApplyKYC(user.KYCReject, " ")
	require.ErrorIs(t, err, domain.ErrValidation)

	status, verified, err = user.ApplyKYC(user.KYCReject, "blurry document")
	require.NoError(t, err)
	assert.Equal(t, user.KYCRejected, status)
	assert.False(t, verified)

	_, _, err = user.ApplyKYC("maybe", "")
	require.ErrorIs(t, err, domain.ErrValidation)
}
