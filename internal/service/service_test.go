package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/internal/store/drivers/sqlite"
	"github.com/hireline/hireline/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store  store.Store
	tokens *service.TokenService
	users  *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	tokens := &service.TokenService{
		Signer:     jwtx.NewHS256([]byte("test-secret"), "hireline-test"),
		Store:      s,
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
		Issuer:     "hireline-test",
	}
	return &testEnv{
		store:  s,
		tokens: tokens,
		users:  &service.UserService{Store: s, Tokens: tokens},
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("issues a working pair", func(t *testing.T) {
		user, pair, err := env.users.Register(ctx, "Alice", "Alice@Example.COM", "password123", "employer")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email, "email must be stored normalized")
		require.Equal(t, domain.RoleEmployer, user.Role)

		p, err := env.tokens.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, p.ID)
		require.Equal(t, domain.RoleEmployer, p.Role)
	})

	t.Run("admin role cannot be requested", func(t *testing.T) {
		user, _, err := env.users.Register(ctx, "Mallory", "mallory@example.com", "password123", "admin")
		require.NoError(t, err)
		require.Equal(t, domain.RoleEmployee, user.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, _, err := env.users.Register(ctx, "Alice 2", "alice@example.com", "password123", "")
		require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	})

	t.Run("short password", func(t *testing.T) {
		_, _, err := env.users.Register(ctx, "Bob", "bob@example.com", "short", "")
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.users.Register(ctx, "Alice", "alice@example.com", "password123", "")
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, pair, err := env.users.Login(ctx, "ALICE@example.com", "password123")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email)
		require.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.users.Login(ctx, "alice@example.com", "nope-nope-nope")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical", func(t *testing.T) {
		_, _, err := env.users.Login(ctx, "ghost@example.com", "password123")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, pair, err := env.users.Register(ctx, "Alice", "alice@example.com", "password123", "")
	require.NoError(t, err)

	t.Run("rotates the pair", func(t *testing.T) {
		refreshed, fresh, err := env.tokens.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, refreshed.ID)

		p, err := env.tokens.VerifyAccess(fresh.AccessToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, p.ID)
	})

	t.Run("picks up a role change", func(t *testing.T) {
		require.NoError(t, env.store.Users().UpdateRole(ctx, user.ID, domain.RoleAdmin))

		_, fresh, err := env.tokens.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		p, err := env.tokens.VerifyAccess(fresh.AccessToken)
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, p.Role, "refresh must re-read the stored role")
	})

	t.Run("empty token", func(t *testing.T) {
		_, _, err := env.tokens.Refresh(ctx, "")
		require.ErrorIs(t, err, domain.ErrRefreshMissing)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, _, err := env.tokens.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, domain.ErrRefreshInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := env.tokens.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, domain.ErrRefreshInvalid)
	})

	t.Run("vanished user", func(t *testing.T) {
		ghost, err := env.tokens.Signer.Sign(jwtx.NewSessionClaims(
			"ghost", "ghost@example.com", domain.RoleEmployee, jwtx.KindRefresh, time.Hour, "hireline-test", time.Now()))
		require.NoError(t, err)

		_, _, err = env.tokens.Refresh(ctx, ghost)
		require.ErrorIs(t, err, domain.ErrRefreshUserGone)
	})
}

func TestVerifyAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, pair, err := env.users.Register(ctx, "Alice", "alice@example.com", "password123", "")
	require.NoError(t, err)

	t.Run("refresh token rejected as access", func(t *testing.T) {
		_, err := env.tokens.VerifyAccess(pair.RefreshToken)
		require.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("expired token reported distinctly", func(t *testing.T) {
		expired := &service.TokenService{
			Signer:    env.tokens.Signer,
			Store:     env.store,
			AccessTTL: -time.Minute, RefreshTTL: time.Hour,
			Issuer: "hireline-test",
		}
		p, err := expired.IssuePair(domain.Principal{ID: "u", Email: "e@example.com", Role: domain.RoleEmployee})
		require.NoError(t, err)

		_, err = env.tokens.VerifyAccess(p.AccessToken)
		require.ErrorIs(t, err, domain.ErrExpiredToken)
	})
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, _, err := env.users.Register(ctx, "Alice", "alice@example.com", "password123", "")
	require.NoError(t, err)

	got, err := env.users.Profile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, got.Email)

	_, err = env.users.Profile(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpsertIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("creates with requested role", func(t *testing.T) {
		user, err := env.users.UpsertIdentity(ctx, "Alice", "alice@example.com", "employer")
		require.NoError(t, err)
		require.Equal(t, domain.RoleEmployer, user.Role)
	})

	t.Run("existing account wins over state role", func(t *testing.T) {
		user, err := env.users.UpsertIdentity(ctx, "Alice Again", "ALICE@example.com", "employee")
		require.NoError(t, err)
		require.Equal(t, domain.RoleEmployer, user.Role, "existing role must not change")
		require.Equal(t, "Alice", user.Name)
	})

	t.Run("placeholder credential never matches a password", func(t *testing.T) {
		_, _, err := env.users.Login(ctx, "alice@example.com", "")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}
