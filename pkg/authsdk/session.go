package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Session is an authenticated handle on the credential service. There is no
// refresh token; once the access token expires the caller logs in again.
// Safe for concurrent use.
type Session struct {
	client   *SDKClient
	username string

	mu          sync.RWMutex
	accessToken string
	role        string
	expiresAt   time.Time
}

func newSession(c *SDKClient, username string, token *LoginResponse) *Session {
	return &Session{
		client:      c,
		username:    username,
		accessToken: token.AccessToken,
		role:        token.Role,
		expiresAt:   time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}
}

// RestoreSession rebuilds a Session from a previously saved access token,
// for callers that persist tokens across restarts. The token's expiry is
// unknown here, so Expired reports false until a request fails.
func RestoreSession(c *SDKClient, username, accessToken string) *Session {
	return &Session{
		client:      c,
		username:    username,
		accessToken: accessToken,
	}
}

// Username returns the login name this session was created with.
func (s *Session) Username() string { return s.username }

// AccessToken returns the raw bearer token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// Role returns the role as of the last login or GetRole call. For an
// authoritative answer, call GetRole.
func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Expired reports whether the access token's lifetime has elapsed.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.expiresAt.IsZero() && time.Now().After(s.expiresAt)
}

// GetRole asks the server for the CURRENT role of this session's subject.
// The server re-reads the role from its store, so a role changed after login
// shows up here without a new token.
func (s *Session) GetRole(ctx context.Context) (*RoleResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/role", nil, nil)
	if err != nil {
		return nil, err
	}

	var role RoleResponse
	if err := decodeJSON(resp, &role, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.role = role.Role
	s.mu.Unlock()

	return &role, nil
}

// ChangeRole sets another user's role. Requires the session's subject to
// currently hold the admin role.
func (s *Session) ChangeRole(ctx context.Context, username, newRole string) (*RoleResponse, error) {
	body, err := json.Marshal(ChangeRoleRequest{Role: newRole})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	path := "/v1/users/" + url.PathEscape(username) + "/role"
	resp, err := s.doAuthRequest(ctx, http.MethodPut, path, bytes.NewReader(body), jsonHeaders)
	if err != nil {
		return nil, err
	}

	var role RoleResponse
	if err := decodeJSON(resp, &role, http.StatusOK); err != nil {
		return nil, err
	}

	return &role, nil
}
