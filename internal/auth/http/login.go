package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quarterdeck-labs/quarterdeck/internal/auth/service"
	"github.com/quarterdeck-labs/quarterdeck/pkg/authsdk"
	"github.com/quarterdeck-labs/quarterdeck/pkg/httpx"
	"github.com/quarterdeck-labs/quarterdeck/pkg/slogx"
)

type LoginHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP handles login and token issuance.
//
//	@Summary		Log in with username and password
//	@Description	Verifies the credentials and returns a signed access token. Unknown usernames and wrong passwords return the same error so account existence cannot be probed.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"Access token and current role"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid request body"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid username or password"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	creds, err := h.AccountService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			authsdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		AccessToken: creds.AccessToken,
		TokenType:   creds.TokenType,
		ExpiresIn:   int(creds.ExpiresIn.Seconds()),
		Role:        creds.Role,
	})
}
