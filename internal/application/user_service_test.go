package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizpay/quizpay-api/internal/infrastructure/memory"
	"github.com/quizpay/quizpay-api/pkg/helpers"
)

func newUserFixture(t *testing.T) (*UserService, *memory.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	return NewUserService(store, jwt, rdb, logger, nil), store, mr
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, mr := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "password123", u.Password, "password must be stored hashed")

	res, pair, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))

	assert.True(t, mr.Exists("user:session:1"))
	assert.Equal(t, "alice@example.com", mr.HGet("user:session:1", "email"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "other", "alice@example.com", "password456")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, u.ID))

	_, _, err = svc.Login(ctx, "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, mr := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	_, pair, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	oldSID := mr.HGet("user:session:1", "sid")

	newPair, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, newPair.AccessToken)

	newSID := mr.HGet("user:session:1", "sid")
	assert.NotEqual(t, oldSID, newSID, "refresh must rotate the session id")

	// The old refresh token is bound to the retired session.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutDropsSession(t *testing.T) {
	svc, _, mr := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	require.True(t, mr.Exists("user:session:1"))

	svc.Logout(ctx, u.ID)
	assert.False(t, mr.Exists("user:session:1"))
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Name: "alicia"})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	_, err = svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Email: "bob@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.UpdateProfile(ctx, 9999, UpdateProfileInput{Name: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeactivate(t *testing.T) {
	svc, store, mr := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, u.ID))
	assert.False(t, mr.Exists("user:session:1"), "deactivation must end the session")

	stored, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive())

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	assert.ErrorIs(t, svc.Deactivate(ctx, 9999), ErrUserNotFound)
}
