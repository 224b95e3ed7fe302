package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/hms-api/internal/config"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository/memory"
	"github.com/medisync/hms-api/pkg/security"
)

func newService() (*Service, *memory.UserRepository) {
	users := memory.NewUserRepository()
	svc := NewService(users, security.NewBcryptHasher(4), config.JWTConfig{
		Secret:             "test-secret",
		RefreshSecret:      "test-refresh-secret",
		ExpiryHours:        1,
		RefreshExpiryHours: 24,
	})
	return svc, users
}

func register(t *testing.T, svc *Service) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &model.CreateUserRequest{
		Email:    "jane@example.test",
		Password: "s3cret-pass",
		FullName: "Jane Doe",
		Role:     model.RolePatient,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _ := newService()
	user := register(t, svc)

	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.True(t, user.IsActive)
}

func TestLogin(t *testing.T) {
	svc, _ := newService()
	register(t, svc)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "jane@example.test",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.test", claims.Email)
	assert.Equal(t, model.RolePatient, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newService()
	register(t, svc)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "jane@example.test",
		Password: "wrong",
	})
	assert.Error(t, err)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, users := newService()
	user := register(t, svc)

	user.IsActive = false
	require.NoError(t, users.Update(context.Background(), user))

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "jane@example.test",
		Password: "s3cret-pass",
	})
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	svc, _ := newService()
	register(t, svc)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "jane@example.test",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// The access token is signed with a different secret and must not work
	// as a refresh token.
	_, err = svc.Refresh(context.Background(), tokens.AccessToken)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newService()
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
