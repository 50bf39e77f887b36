package services

import (
	"context"
	"testing"

	"trxflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, testStore) {
	t.Helper()
	store := newTestStore(t)
	return NewUserService(store.users, NewUserIDService(store.users), bcrypt.MinCost, nil), store
}

func TestRegisterAssignsRoleSequence(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	ana, err := svc.Register(ctx, RegisterUserInput{Name: "Ana", Email: "ana@example.com", Password: "secret1", Role: models.RoleOperador})
	require.NoError(t, err)
	assert.Equal(t, "op-001", ana.UserID)
	assert.NotEqual(t, "secret1", ana.Password)

	luis, err := svc.Register(ctx, RegisterUserInput{Name: "Luis", Email: "luis@example.com", Password: "secret2", Role: models.RoleOperador})
	require.NoError(t, err)
	assert.Equal(t, "op-002", luis.UserID)

	eva, err := svc.Register(ctx, RegisterUserInput{Name: "Eva", Email: "eva@example.com", Password: "secret3", Role: models.RoleAprobador})
	require.NoError(t, err)
	assert.Equal(t, "ap-001", eva.UserID)
}

func TestRegisterRejectsDuplicatesAndBadRoles(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserInput{Name: "Ana", Email: "ana@example.com", Password: "secret1", Role: models.RoleOperador})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterUserInput{Name: "Ana", Email: "other@example.com", Password: "x", Role: models.RoleOperador})
	assertKind(t, err, KindDuplicate)

	_, err = svc.Register(ctx, RegisterUserInput{Name: "Other", Email: "ana@example.com", Password: "x", Role: models.RoleAprobador})
	assertKind(t, err, KindDuplicate)

	_, err = svc.Register(ctx, RegisterUserInput{Name: "Bob", Email: "bob@example.com", Password: "x", Role: "ADMIN"})
	assertKind(t, err, KindValidation)
}

func TestAuthenticate(t *testing.T) {
	svc, store := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserInput{Name: "Ana", Email: "ana@example.com", Password: "secret1", Role: models.RoleOperador})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, " ana@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "op-001", user.UserID)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret2"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.users.Create(ctx, &models.User{
		UserID:   "legacy-1",
		Name:     "Legacy",
		Email:    "legacy@example.com",
		Password: string(hashed),
	}))

	_, err = svc.Authenticate(ctx, "legacy@example.com", "secret2")
	assertKind(t, err, KindPermission)
}

func TestByEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserInput{Name: "Eva", Email: "eva@example.com", Password: "secret3", Role: models.RoleAprobador})
	require.NoError(t, err)

	user, err := svc.ByEmail(ctx, "eva@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAprobador, user.Role)
}
