package auth_test

import (
	"testing"

	"github.com/quarterdeck-labs/quarterdeck/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginInvalidCredentials verifies that a wrong password and an unknown
// username produce the same error, so a caller cannot probe which usernames
// exist.
func TestLoginInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerUser(t, client, "alice", "")

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(t.Context(), "alice", "not-the-password")
		assertAPIError(t, err, authsdk.ErrorCodeInvalidCredentials, "wrong password")
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := client.Login(t.Context(), "nobody", testPassword)
		assertAPIError(t, err, authsdk.ErrorCodeInvalidCredentials, "unknown username")
	})
}

// TestLoginTokenGrantsRoleLookup verifies a fresh token works against the
// role endpoint.
func TestLoginTokenGrantsRoleLookup(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerUser(t, client, "alice", "")
	session := loginUser(t, client, "alice")

	resolved, err := session.GetRole(t.Context())
	require.NoError(t, err)
	require.Equal(t, "alice", resolved.Username)
	require.Equal(t, "user", resolved.Role)
}
