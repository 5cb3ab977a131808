package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/quarterdeck-labs/quarterdeck/internal/auth/service"
	"github.com/quarterdeck-labs/quarterdeck/pkg/authsdk"
	"github.com/quarterdeck-labs/quarterdeck/pkg/httpx"
	"github.com/quarterdeck-labs/quarterdeck/pkg/slogx"
)

type RoleHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP resolves the caller's current role.
//
//	@Summary		Get the caller's current role
//	@Description	Verifies the access token and returns the subject's role as stored right now. A role changed after the token was issued is reflected immediately; the role claim inside the token is never consulted.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.RoleResponse	"Current username and role"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Missing, invalid or expired access token"
//	@Failure		404	{object}	authsdk.ErrorResponse	"The token's subject no longer exists"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/role [get].
func (h *RoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw, ok := bearerToken(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	username, role, err := h.AccountService.ResolveRole(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExpired):
			authsdk.ErrTokenExpired.WriteError(w)
		case errors.Is(err, service.ErrInvalidToken):
			authsdk.ErrInvalidToken.WriteError(w)
		case errors.Is(err, service.ErrUserNotFound):
			authsdk.ErrNotFound.WriteError(w)
		default:
			log.Error("role resolution failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RoleResponse{
		Username: username,
		Role:     role,
	})
}

type ChangeRoleHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP changes another user's role. Admin only.
//
//	@Summary		Change a user's role
//	@Description	Sets the target user's role. The caller must hold the admin role at the time of the request; the check re-reads the caller from the store rather than trusting token claims.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			username	path		string						true	"Target username"
//	@Param			request		body		authsdk.ChangeRoleRequest	true	"New role"
//	@Success		200			{object}	authsdk.RoleResponse		"Updated username and role"
//	@Failure		400			{object}	authsdk.ErrorResponse		"Invalid request body or role name"
//	@Failure		401			{object}	authsdk.ErrorResponse		"Missing or invalid access token"
//	@Failure		403			{object}	authsdk.ErrorResponse		"Caller is not an admin"
//	@Failure		404			{object}	authsdk.ErrorResponse		"Target user not found"
//	@Failure		500			{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/users/{username}/role [put].
func (h *ChangeRoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	caller := httpx.UsernameFromCtx(ctx)
	if caller == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	target := r.PathValue("username")
	if target == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	var req authsdk.ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if !validRoleName(req.Role) {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	updated, err := h.AccountService.ChangeRole(ctx, caller, target, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientRole):
			authsdk.ErrInsufficientRole.WriteError(w)
		case errors.Is(err, service.ErrUserNotFound):
			authsdk.ErrNotFound.WriteError(w)
		case errors.Is(err, service.ErrInvalidToken):
			authsdk.ErrInvalidToken.WriteError(w)
		default:
			log.Error("role change failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RoleResponse{
		Username: updated.Username,
		Role:     updated.Role,
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	return token, token != ""
}

func validRoleName(role string) bool {
	if role == "" || len(role) > 32 {
		return false
	}
	for i, c := range role {
		switch {
		case c >= 'a' && c <= 'z':
		case i > 0 && (c >= '0' && c <= '9' || c == '_' || c == '-'):
		default:
			return false
		}
	}
	return true
}
