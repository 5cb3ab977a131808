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

type RegisterHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP handles account registration.
//
//	@Summary		Register a new account
//	@Description	Creates a new account with a unique username. The password is hashed with Argon2id before storage; the cleartext never persists.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest			true	"Registration details"
//	@Success		201		{object}	authsdk.RegisterResponse		"Account created"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"Invalid request body or validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse			"Username already taken"
//	@Failure		500		{object}	authsdk.ErrorResponse			"Internal server error"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if errs := req.Validate(); errs != nil {
		authsdk.WriteValidationError(w, errs)
		return
	}

	user, err := h.AccountService.Register(ctx, service.RegisterParams{
		Username:        strings.TrimSpace(req.Username),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
		Email:           req.Email,
		MobileNumber:    req.MobileNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			authsdk.ErrUsernameTaken.WriteError(w)
		case errors.Is(err, service.ErrPasswordMismatch):
			authsdk.ErrPasswordMismatch.WriteError(w)
		default:
			log.Error("registration failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}
