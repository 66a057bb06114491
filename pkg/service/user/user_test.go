package user_test

import (
	"context"
	"testing"

	"github.com/demonyhq/demony/infra/eventbus"
	infrarepo "github.com/demonyhq/demony/infra/repository"
	"github.com/demonyhq/demony/pkg/domain"
	"github.com/demonyhq/demony/pkg/domain/events"
	"github.com/demonyhq/demony/pkg/domain/user"
	"github.com/demonyhq/demony/pkg/repository"
	usersvc "github.com/demonyhq/demony/pkg/service/user"
	"github.com/demonyhq/demony/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*usersvc.Service, *eventbus.MemoryEventBus) {
	t.Helper()
	db := testutils.NewSQLiteDB(t)
	bus := eventbus.NewWithMemory(nil)
	return usersvc.New(infrarepo.NewUoW(db), bus, nil), bus
}

func TestSignup(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, "Ama Mensah", "Ama@Example.com", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, user.RoleInvestor, u.Role)
	assert.Equal(t, "ama@example.com", u.Email)
	assert.True(t, u.IsActive)

	_, err = svc.Signup(ctx, "Ama Again", "ama@example.com", "secret1", user.RoleInvestor)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = svc.Signup(ctx, "Mallory", "mallory@example.com", "secret1", user.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrValidation)

	owner, err := svc.Signup(ctx, "Kofi", "kofi@example.com", "secret1", user.RoleBusinessOwner)
	require.NoError(t, err)
	got, err := svc.GetByEmail(ctx, " KOFI@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
}

func TestReviewKYC(t *testing.T) {
	svc, bus := newService(t)
	ctx := context.Background()
	u, err := svc.Signup(ctx, "Esi", "esi@example.com", "secret1", "")
	require.NoError(t, err)

	require.NoError(t, svc.SubmitKYC(ctx, u.ID))
	assert.ErrorIs(t, svc.SubmitKYC(ctx, u.ID), domain.ErrValidation)

	_, err = svc.ReviewKYC(ctx, u.ID, user.KYCReject, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	rejected, err := svc.ReviewKYC(ctx, u.ID, user.KYCReject, "blurry id")
	require.NoError(t, err)
	assert.Equal(t, user.KYCRejected, rejected.KYCStatus)
	assert.False(t, rejected.IsVerified)
	assert.Equal(t, "blurry id", rejected.KYCRejectionReason)

	approved, err := svc.ReviewKYC(ctx, u.ID, user.KYCApprove, "ignored")
	require.NoError(t, err)
	assert.Equal(t, user.KYCVerified, approved.KYCStatus)
	assert.True(t, approved.IsVerified)
	assert.Empty(t, approved.KYCRejectionReason)

	_, err = svc.ReviewKYC(ctx, uuid.New(), user.KYCApprove, "")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.Len(t, bus.Published(), 2)
	last, ok := bus.Published()[1].(*events.KYCReviewed)
	require.True(t, ok)
	assert.Equal(t, string(user.KYCVerified), last.Status)
}

func TestAdminControls(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Signup(ctx, "Yaw", "yaw@example.com", "secret1", "")
	require.NoError(t, err)

	admin, err := svc.MakeAdmin(ctx, "YAW@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	again, err := svc.MakeAdmin(ctx, "yaw@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, again.Role)

	_, err = svc.MakeAdmin(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, svc.SetActive(ctx, u.ID, false))
	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	admins, total, err := svc.List(ctx, repository.UserFilter{Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, admins, 1)
}
