package auth_test

import (
	"testing"

	"github.com/quarterdeck-labs/quarterdeck/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestLoginRateLimit verifies the strict profile throttles repeated login
// attempts from one client. Uses the default production limits instead of
// the relaxed ones the other tests run with.
func TestLoginRateLimit(t *testing.T) {
	baseURL, cleanup := setupAuthContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerUser(t, client, "alice", "")

	// Burn through the strict budget with bad credentials, then confirm the
	// next attempt is throttled rather than rejected for its credentials.
	limited := false
	for range 20 {
		_, err := client.Login(t.Context(), "alice", "wrong-password")
		require.Error(t, err)

		var apiErr *authsdk.APIError
		require.ErrorAs(t, err, &apiErr)
		if apiErr.Code == "rate_limit_exceeded" {
			limited = true
			break
		}
		require.Equal(t, authsdk.ErrorCodeInvalidCredentials, apiErr.Code)
	}
	require.True(t, limited, "expected a 429 before exhausting 20 attempts")
}
