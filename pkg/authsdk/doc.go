/*
Package authsdk provides a client SDK for the Quarterdeck credential service.

# Overview

The package is organized around two main types:

  - SDKClient: unauthenticated operations (register, login, health probes)
  - Session: authenticated operations bound to one access token

Create an SDKClient to talk to public endpoints:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Create an account
	created, err := client.Register(ctx, authsdk.RegisterRequest{
		Username:        "alice",
		Password:        "secret-password",
		ConfirmPassword: "secret-password",
	})

	// Log in to get a session
	session, err := client.Login(ctx, "alice", "secret-password")

Use the Session for authenticated operations:

	// Ask the server for the current role. This re-reads the store, so a
	// role changed after login is reflected without a new token.
	role, err := session.GetRole(ctx)

	// Admins can change other users' roles
	updated, err := session.ChangeRole(ctx, "bob", "moderator")

# Token Lifetime

Access tokens expire (30 minutes by default) and there is no refresh flow.
Check session.Expired() and log in again when it reports true.

# Error Handling

Server errors surface as *APIError with the machine-readable code intact:

	session, err := client.Login(ctx, username, password)
	if err != nil {
		var apiErr *authsdk.APIError
		if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeInvalidCredentials {
			// bad username or password; the server does not say which
		}
		return err
	}

Validation failures from Register surface as *ValidationError with per-field
details.

# Thread Safety

Sessions are safe for concurrent use. Multiple goroutines can share a single
Session and make authenticated requests concurrently.
*/
package authsdk
