package services

import (
	"context"
	"testing"
	"time"

	"schoolhub/internal/adapters/persistence/models"
	"schoolhub/internal/adapters/persistence/repositories"
	"schoolhub/internal/config"
	"schoolhub/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEnv(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()

	env := newTestEnv(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	auth := NewAuthService(
		repositories.NewUserRepository(env.db),
		repositories.NewProfileRepository(env.db),
		repositories.NewRefreshTokenRepository(env.db),
		cfg,
	)
	return env, auth
}

// seedCredentials provisions a teacher whose password is actually hashed
func seedCredentials(t *testing.T, env *testEnv, email, plain string) *models.Profile {
	t.Helper()

	hashed, err := password.Hash(plain)
	require.NoError(t, err)

	profile, err := env.users.CreateUser(context.Background(), &CreateUserInput{
		Email:    email,
		Name:     "Login User",
		Role:     models.RoleTeacher,
		SchoolID: env.school.ID,
	}, hashed)
	require.NoError(t, err)
	return profile
}

func TestLogin(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()

	profile := seedCredentials(t, env, "login@test.local", "secret123456")

	resp, err := auth.Login(ctx, &LoginInput{Email: "login@test.local", Password: "secret123456"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, profile.ID, resp.Profile.ID)
	assert.Equal(t, env.school.ID, resp.Profile.SchoolID)

	// Access token claims carry identity and school affiliation
	claims, err := auth.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, profile.UserID, claims.UserID)
	assert.Equal(t, profile.ID, claims.ProfileID)
	assert.Equal(t, env.school.ID, claims.SchoolID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestLoginRejections(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()

	profile := seedCredentials(t, env, "login@test.local", "secret123456")

	_, err := auth.Login(ctx, &LoginInput{Email: "login@test.local", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, &LoginInput{Email: "nobody@test.local", Password: "secret123456"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.users.SetUserActive(ctx, profile.UserID, false))
	_, err = auth.Login(ctx, &LoginInput{Email: "login@test.local", Password: "secret123456"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestRefreshTokenRotation(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()

	seedCredentials(t, env, "login@test.local", "secret123456")
	login, err := auth.Login(ctx, &LoginInput{Email: "login@test.local", Password: "secret123456"})
	require.NoError(t, err)

	refreshed, err := auth.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token was rotated out and cannot be replayed
	_, err = auth.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The new one still works
	_, err = auth.RefreshToken(ctx, refreshed.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshTokenInvalid(t *testing.T) {
	_, auth := newAuthEnv(t)

	_, err := auth.RefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()

	seedCredentials(t, env, "login@test.local", "secret123456")
	login, err := auth.Login(ctx, &LoginInput{Email: "login@test.local", Password: "secret123456"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, login.RefreshToken))

	_, err = auth.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestPurgeExpiredTokens(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()

	profile := seedCredentials(t, env, "login@test.local", "secret123456")
	login, err := auth.Login(ctx, &LoginInput{Email: "login@test.local", Password: "secret123456"})
	require.NoError(t, err)

	// One token well past expiry alongside the live session
	require.NoError(t, env.db.Create(&models.RefreshToken{
		UserID:    profile.UserID,
		TokenHash: "stale-hash",
		ExpiresAt: time.Now().Add(-48 * time.Hour),
	}).Error)

	require.NoError(t, auth.PurgeExpiredTokens(ctx))

	var count int64
	require.NoError(t, env.db.Model(&models.RefreshToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The surviving session still refreshes
	_, err = auth.RefreshToken(ctx, login.RefreshToken)
	assert.NoError(t, err)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()

	profile := seedCredentials(t, env, "login@test.local", "secret123456")

	first, err := auth.Login(ctx, &LoginInput{Email: "login@test.local", Password: "secret123456"})
	require.NoError(t, err)
	second, err := auth.Login(ctx, &LoginInput{Email: "login@test.local", Password: "secret123456"})
	require.NoError(t, err)

	require.NoError(t, auth.LogoutAll(ctx, profile.UserID))

	_, err = auth.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = auth.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
