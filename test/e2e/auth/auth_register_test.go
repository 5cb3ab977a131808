package auth_test

import (
	"errors"
	"testing"

	"github.com/quarterdeck-labs/quarterdeck/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRegisterAndLogin covers the happy path from a fresh database.
func TestRegisterAndLogin(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	created := registerUser(t, client, "alice", "")
	require.NotEmpty(t, created.UserID)
	require.Equal(t, "user", created.Role, "role should default to user")

	session := loginUser(t, client, "alice")
	require.NotEmpty(t, session.AccessToken())
	require.Equal(t, "user", session.Role())
	require.False(t, session.Expired())
}

// TestRegisterDuplicateUsername verifies uniqueness is enforced end to end.
func TestRegisterDuplicateUsername(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	registerUser(t, client, "alice", "")

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Username:        "alice",
		Password:        "another-password-entirely",
		ConfirmPassword: "another-password-entirely",
	})
	assertAPIError(t, err, authsdk.ErrorCodeUsernameTaken, "duplicate registration")
}

// TestRegisterValidation verifies field validation happens server-side too.
func TestRegisterValidation(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Username:        "al",
		Password:        "short",
		ConfirmPassword: "short",
	})
	require.Error(t, err)

	var validationErr *authsdk.ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.NotEmpty(t, validationErr.Details["username"])
	require.NotEmpty(t, validationErr.Details["password"])
}

// TestRegisterPasswordMismatch verifies the confirmation check.
func TestRegisterPasswordMismatch(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Username:        "alice",
		Password:        testPassword,
		ConfirmPassword: testPassword + "x",
	})
	assertAPIError(t, err, authsdk.ErrorCodePasswordMismatch, "mismatched confirmation")
}
