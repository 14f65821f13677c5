package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "jack@example.com", true)

	result, err := env.auth.Login(ctx, LoginParams{Email: "jack@example.com", Password: "password"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.UserID)
	assert.True(t, result.AccessTokenExpiresAt.After(time.Now()))

	claims, err := env.auth.(*authServiceImpl).parseJWTToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	actor, err := env.auth.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.ID)
	assert.Equal(t, "jack@example.com", actor.Email)
	assert.True(t, actor.IsAdmin)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.createUser(t, "jack@example.com", false)

	_, err := env.auth.Login(ctx, LoginParams{Email: "jack@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, LoginParams{Email: "will@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "jack@example.com", false)

	_, err := env.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	foreign := NewAuthService(zerolog.Nop(), env.store, env.hasher, "test", []byte("other"), time.Hour)
	result, err := foreign.Login(ctx, LoginParams{Email: user.Email, Password: "password"})
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	expired := NewAuthService(zerolog.Nop(), env.store, env.hasher, "test", []byte("secret"), -time.Minute)
	result, err = expired.Login(ctx, LoginParams{Email: user.Email, Password: "password"})
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuthenticateDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "jack@example.com", false)

	result, err := env.auth.Login(ctx, LoginParams{Email: user.Email, Password: "password"})
	require.NoError(t, err)

	require.NoError(t, env.users.Delete(ctx, user.Actor(), user.ID))

	_, err = env.auth.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
