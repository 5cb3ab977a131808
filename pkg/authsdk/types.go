package authsdk

// ErrorResponse is the standard error envelope returned by every endpoint.
// Used internally for parsing HTTP error responses; client code should use
// the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the machine-readable error code (e.g., "invalid_credentials")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ValidationErrorResponse is returned when request validation fails.
type ValidationErrorResponse struct {
	// Code is the error code (always "validation_error")
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains field-specific validation errors (field name: error message)
	Details map[string]string `json:"details,omitempty"`
}

// RegisterRequest is the body of POST /v1/auth/register.
type RegisterRequest struct {
	// Username is the unique login name (3-32 chars, alphanumeric with _ or -)
	Username string `json:"username"`

	// Password is the cleartext password (8-128 chars); never stored as-is
	Password string `json:"password"`

	// ConfirmPassword must match Password exactly
	ConfirmPassword string `json:"confirm_password"`

	// Role is the requested role; defaults to "user" when empty
	Role string `json:"role,omitempty"`

	// Email is an optional contact address
	Email string `json:"email,omitempty"`

	// MobileNumber is an optional contact number
	MobileNumber string `json:"mobile_number,omitempty"`
}

// RegisterResponse confirms a created account. The password hash never
// appears here.
type RegisterResponse struct {
	// UserID is the ULID assigned to the new account
	UserID string `json:"user_id"`

	// Username echoes the registered login name
	Username string `json:"username"`

	// Role is the role the account was created with
	Role string `json:"role"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	// AccessToken is the signed JWT used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// Role is the account's role at the moment of login. Display only; the
	// server re-reads the role on every authorization decision.
	Role string `json:"role"`
}

// RoleResponse is returned by GET /v1/auth/role and by role updates. The role
// reflects the store at the time of the request, not the token claims.
type RoleResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ChangeRoleRequest is the body of PUT /v1/users/{username}/role.
type ChangeRoleRequest struct {
	// Role is the new role name (lowercase, e.g. "admin", "moderator")
	Role string `json:"role"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Signer   string `json:"signer,omitempty"`
}

// HealthResponse is returned by the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
