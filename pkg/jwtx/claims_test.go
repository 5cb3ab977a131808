package jwtx_test

import (
	"testing"
	"time"

	"github.com/quarterdeck-labs/quarterdeck/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewAccessClaims(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := jwtx.NewAccessClaims("bob", "user", 30*time.Minute, "quarterdeck", now)

	require.Equal(t, "bob", c.Subject)
	require.Equal(t, "user", c.Role)
	require.Equal(t, "quarterdeck", c.Issuer)
	require.Equal(t, now, c.IssuedAt.Time)
	require.Equal(t, now, c.NotBefore.Time)
	require.Equal(t, now.Add(30*time.Minute), c.ExpiresAt.Time)
	require.NotEmpty(t, c.ID)
}

func TestNewJTIUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 100)
	for range 100 {
		jti := jwtx.NewJTI()
		require.NotEmpty(t, jti)
		_, dup := seen[jti]
		require.False(t, dup)
		seen[jti] = struct{}{}
	}
}

func TestValidateIssuer(t *testing.T) {
	t.Parallel()

	c := jwtx.NewAccessClaims("bob", "user", time.Minute, "quarterdeck", time.Now())

	require.NoError(t, c.ValidateIssuer(""))
	require.NoError(t, c.ValidateIssuer("quarterdeck"))
	require.ErrorIs(t, c.ValidateIssuer("other"), jwtx.ErrIssuer)
}
