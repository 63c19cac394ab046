package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-admin-store/internal/models"
	"github.com/noah-isme/course-admin-store/internal/store"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

func newUserFixture() (*store.Store, *UserService, *AuditService) {
	st := store.New()
	audit := NewAuditService(st, nil, nil)
	return st, NewUserService(st, audit, nil, nil), audit
}

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()
	_, svc, audit := newUserFixture()

	user, err := svc.Create(ctx, CreateUserRequest{
		Email:    " alice@example.com ",
		Name:     "Alice",
		Role:     models.RoleStudent,
		Password: "secret123",
	}, 42)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.UserStatusActive, user.Status)
	require.NotEmpty(t, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))

	logs := audit.FindByActor(ctx, 42)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AdminActionUserCreate, logs[0].Action)
	require.NotNil(t, logs[0].TargetID)
	assert.Equal(t, user.ID, *logs[0].TargetID)

	_, err = svc.Create(ctx, CreateUserRequest{Email: "alice@example.com", Name: "Dup", Role: models.RoleStudent}, 0)
	assert.ErrorIs(t, err, appErrors.ErrUniquenessViolation)
	assert.Len(t, audit.Recent(ctx, 0), 1, "no actor, no journal entry")
}

func TestUserServiceCreateValidation(t *testing.T) {
	_, svc, _ := newUserFixture()
	cases := []CreateUserRequest{
		{Email: "not-an-email", Name: "A", Role: models.RoleStudent},
		{Email: "a@x.com", Role: models.RoleStudent},
		{Email: "a@x.com", Name: "A", Role: "janitor"},
		{Email: "a@x.com", Name: "A", Role: models.RoleStudent, Password: "123"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req, 0)
		assert.ErrorIs(t, err, appErrors.ErrValidation, "%+v", req)
	}
}

func TestUserServiceUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newUserFixture()
	user, err := svc.Create(ctx, CreateUserRequest{Email: "a@x.com", Name: "A", Role: models.RoleStudent}, 0)
	require.NoError(t, err)

	suspended := models.UserStatusSuspended
	updated, err := svc.Update(ctx, user.ID, UpdateUserRequest{Status: &suspended}, 0)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusSuspended, updated.Status)
	assert.Equal(t, "A", updated.Name)

	bad := "nope"
	_, err = svc.Update(ctx, user.ID, UpdateUserRequest{Email: &bad}, 0)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	assert.Len(t, svc.List(ctx, UserFilter{Status: models.UserStatusSuspended}), 1)
	assert.Empty(t, svc.List(ctx, UserFilter{Role: models.RoleAdmin}))

	require.NoError(t, svc.Delete(ctx, user.ID, 0))
	assert.ErrorIs(t, svc.Delete(ctx, user.ID, 0), appErrors.ErrNotFound)
	_, err = svc.Get(ctx, user.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUserServiceVerifyPassword(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newUserFixture()
	user, err := svc.Create(ctx, CreateUserRequest{Email: "a@x.com", Name: "A", Role: models.RoleAdmin, Password: "secret123"}, 0)
	require.NoError(t, err)
	assert.Nil(t, user.LastLoginAt)

	_, err = svc.VerifyPassword(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = svc.VerifyPassword(ctx, "b@x.com", "secret123")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	logged, err := svc.VerifyPassword(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.NotNil(t, logged.LastLoginAt)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret123", "another1"))
	_, err = svc.VerifyPassword(ctx, "a@x.com", "secret123")
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = svc.VerifyPassword(ctx, "a@x.com", "another1")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "wrong", "another2"), appErrors.ErrInvalidCredentials)

	inactive := models.UserStatusInactive
	_, err = svc.Update(ctx, user.ID, UpdateUserRequest{Status: &inactive}, 0)
	require.NoError(t, err)
	_, err = svc.VerifyPassword(ctx, "a@x.com", "another1")
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}
