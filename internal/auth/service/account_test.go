package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/quarterdeck-labs/quarterdeck/internal/auth/store/drivers/sqlite"
	"github.com/quarterdeck-labs/quarterdeck/pkg/cryptox"
	"github.com/quarterdeck-labs/quarterdeck/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := filepath.Abs("testdata")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	m.Run()
}

const testSecret = "test-secret-must-be-at-least-32-bytes!!"

func newTestService(t *testing.T) *AccountService {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "auth.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner("HS256", []byte(testSecret))
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifier("HS256", []byte(testSecret), "test-issuer")
	require.NoError(t, err)

	return &AccountService{
		Store:     st,
		Signer:    signer,
		Verifier:  verifier,
		Issuer:    "test-issuer",
		AccessTTL: 30 * time.Minute,
	}
}

func registerAlice(t *testing.T, svc *AccountService) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterParams{
		Username:        "alice",
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
	})
	require.NoError(t, err)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with defaults", func(t *testing.T) {
		svc := newTestService(t)

		user, err := svc.Register(ctx, RegisterParams{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
		})
		require.NoError(t, err)
		require.NotEmpty(t, user.ID)
		require.Equal(t, "alice", user.Username)
		require.Equal(t, DefaultRole, user.Role)
		require.NotEqual(t, "hunter2hunter2", user.PasswordHash)
		require.Contains(t, user.PasswordHash, "$argon2id$")

		stored, err := svc.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, user.ID, stored.ID)
	})

	t.Run("honours explicit role and contact details", func(t *testing.T) {
		svc := newTestService(t)

		user, err := svc.Register(ctx, RegisterParams{
			Username:        "bob",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
			Role:            "admin",
			Email:           "bob@example.com",
			MobileNumber:    "0400000000",
		})
		require.NoError(t, err)
		require.Equal(t, "admin", user.Role)
		require.Equal(t, "bob@example.com", user.Email)
		require.Equal(t, "0400000000", user.MobileNumber)
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		svc := newTestService(t)

		_, err := svc.Register(ctx, RegisterParams{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "different",
		})
		require.ErrorIs(t, err, ErrPasswordMismatch)

		// Nothing should have been written.
		count, err := svc.Store.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		svc := newTestService(t)
		registerAlice(t, svc)

		_, err := svc.Register(ctx, RegisterParams{
			Username:        "alice",
			Password:        "completely-different",
			ConfirmPassword: "completely-different",
		})
		require.ErrorIs(t, err, ErrUsernameTaken)

		count, err := svc.Store.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues verifiable token", func(t *testing.T) {
		svc := newTestService(t)
		registerAlice(t, svc)

		creds, err := svc.Login(ctx, "alice", "hunter2hunter2")
		require.NoError(t, err)
		require.Equal(t, "Bearer", creds.TokenType)
		require.Equal(t, DefaultRole, creds.Role)
		require.Equal(t, 30*time.Minute, creds.ExpiresIn)

		claims, err := svc.Verifier.Verify(creds.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Subject)
		require.Equal(t, "test-issuer", claims.Issuer)
	})

	t.Run("wrong password is invalid credentials", func(t *testing.T) {
		svc := newTestService(t)
		registerAlice(t, svc)

		_, err := svc.Login(ctx, "alice", "not the password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username is the same error", func(t *testing.T) {
		svc := newTestService(t)
		registerAlice(t, svc)

		_, err := svc.Login(ctx, "mallory", "hunter2hunter2")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestResolveRole(t *testing.T) {
	ctx := context.Background()

	t.Run("returns current role from the store", func(t *testing.T) {
		svc := newTestService(t)
		registerAlice(t, svc)

		creds, err := svc.Login(ctx, "alice", "hunter2hunter2")
		require.NoError(t, err)

		username, role, err := svc.ResolveRole(ctx, creds.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice", username)
		require.Equal(t, DefaultRole, role)
	})

	t.Run("role change takes effect without reissuing the token", func(t *testing.T) {
		svc := newTestService(t)
		registerAlice(t, svc)

		creds, err := svc.Login(ctx, "alice", "hunter2hunter2")
		require.NoError(t, err)

		user, err := svc.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NoError(t, svc.Store.Users().UpdateUserRole(ctx, user.ID, "admin"))

		_, role, err := svc.ResolveRole(ctx, creds.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "admin", role)
	})

	t.Run("expired token", func(t *testing.T) {
		svc := newTestService(t)
		registerAlice(t, svc)

		// Sign a token that expired five minutes ago.
		claims := jwtx.NewAccessClaims("alice", DefaultRole, time.Minute, svc.Issuer, time.Now().Add(-6*time.Minute))
		token, err := svc.Signer.Sign(claims)
		require.NoError(t, err)

		_, _, err = svc.ResolveRole(ctx, token)
		require.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc := newTestService(t)

		_, _, err := svc.ResolveRole(ctx, "not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token for deleted user", func(t *testing.T) {
		svc := newTestService(t)
		registerAlice(t, svc)

		creds, err := svc.Login(ctx, "alice", "hunter2hunter2")
		require.NoError(t, err)

		user, err := svc.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NoError(t, svc.Store.Users().DeleteUser(ctx, user.ID))

		_, _, err = svc.ResolveRole(ctx, creds.AccessToken)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *AccountService {
		svc := newTestService(t)
		registerAlice(t, svc)
		_, err := svc.Register(ctx, RegisterParams{
			Username:        "root",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
			Role:            "admin",
		})
		require.NoError(t, err)
		return svc
	}

	t.Run("admin can promote", func(t *testing.T) {
		svc := setup(t)

		updated, err := svc.ChangeRole(ctx, "root", "alice", "moderator")
		require.NoError(t, err)
		require.Equal(t, "moderator", updated.Role)

		stored, err := svc.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "moderator", stored.Role)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.ChangeRole(ctx, "alice", "root", "user")
		require.ErrorIs(t, err, ErrInsufficientRole)
	})

	t.Run("unknown target", func(t *testing.T) {
		svc := setup(t)

		_, err := svc.ChangeRole(ctx, "root", "nobody", "admin")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}
