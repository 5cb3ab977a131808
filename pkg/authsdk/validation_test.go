package authsdk_test

import (
	"testing"

	"github.com/quarterdeck-labs/quarterdeck/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func validRequest() authsdk.RegisterRequest {
	return authsdk.RegisterRequest{
		Username:        "alice",
		Password:        "hunter2hunter2",
		ConfirmPassword: "hunter2hunter2",
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	t.Run("minimal valid request", func(t *testing.T) {
		require.Nil(t, validRequest().Validate())
	})

	t.Run("full valid request", func(t *testing.T) {
		req := validRequest()
		req.Role = "moderator"
		req.Email = "alice@example.com"
		req.MobileNumber = "+61 400 000 000"
		require.Nil(t, req.Validate())
	})

	t.Run("missing username", func(t *testing.T) {
		req := validRequest()
		req.Username = ""
		errs := req.Validate()
		require.Equal(t, "required", errs["username"])
	})

	t.Run("username too short", func(t *testing.T) {
		req := validRequest()
		req.Username = "al"
		errs := req.Validate()
		require.Contains(t, errs["username"], "3-32")
	})

	t.Run("username with invalid characters", func(t *testing.T) {
		req := validRequest()
		req.Username = "alice!"
		errs := req.Validate()
		require.NotEmpty(t, errs["username"])
	})

	t.Run("password too short", func(t *testing.T) {
		req := validRequest()
		req.Password = "short"
		req.ConfirmPassword = "short"
		errs := req.Validate()
		require.Contains(t, errs["password"], "too short")
	})

	t.Run("missing confirmation", func(t *testing.T) {
		req := validRequest()
		req.ConfirmPassword = ""
		errs := req.Validate()
		require.Equal(t, "required", errs["confirm_password"])
	})

	t.Run("uppercase role rejected", func(t *testing.T) {
		req := validRequest()
		req.Role = "Admin"
		errs := req.Validate()
		require.NotEmpty(t, errs["role"])
	})

	t.Run("bad email", func(t *testing.T) {
		req := validRequest()
		req.Email = "not-an-email"
		errs := req.Validate()
		require.NotEmpty(t, errs["email"])
	})

	t.Run("bad mobile number", func(t *testing.T) {
		req := validRequest()
		req.MobileNumber = "call me"
		errs := req.Validate()
		require.NotEmpty(t, errs["mobile_number"])
	})
}
