package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	authhttp "github.com/quarterdeck-labs/quarterdeck/internal/auth/http"
	"github.com/quarterdeck-labs/quarterdeck/internal/auth/service"
	"github.com/quarterdeck-labs/quarterdeck/internal/auth/store/drivers/sqlite"
	"github.com/quarterdeck-labs/quarterdeck/pkg/authsdk"
	"github.com/quarterdeck-labs/quarterdeck/pkg/cryptox"
	"github.com/quarterdeck-labs/quarterdeck/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-must-be-at-least-32-bytes!!"

func TestMain(m *testing.M) {
	dir, err := filepath.Abs("testdata")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))
	m.Run()
}

func newTestServer(t *testing.T) (*httptest.Server, *service.AccountService) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "auth.db")
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSigner("HS256", []byte(testSecret))
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifier("HS256", []byte(testSecret), "test-issuer")
	require.NoError(t, err)

	svc := &service.AccountService{
		Store:     st,
		Signer:    signer,
		Verifier:  verifier,
		Issuer:    "test-issuer",
		AccessTTL: 30 * time.Minute,
	}

	router := authhttp.NewRouter(
		signer, verifier,
		"test-issuer", "test",
		st,
		slog.New(slog.DiscardHandler),
		nil,
	)
	router.AccountService = svc
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, svc
}

func postJSON(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	return sendJSON(t, http.MethodPost, url, body, token)
}

func sendJSON(t *testing.T, method, url string, body any, token string) *http.Response {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func register(t *testing.T, srv *httptest.Server, req authsdk.RegisterRequest) authsdk.RegisterResponse {
	t.Helper()

	resp := postJSON(t, srv.URL+"/v1/auth/register", req, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[authsdk.RegisterResponse](t, resp)
}

func login(t *testing.T, srv *httptest.Server, username, password string) authsdk.LoginResponse {
	t.Helper()

	resp := postJSON(t, srv.URL+"/v1/auth/login", authsdk.LoginRequest{
		Username: username,
		Password: password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[authsdk.LoginResponse](t, resp)
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		srv, _ := newTestServer(t)

		created := register(t, srv, authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
		})
		require.NotEmpty(t, created.UserID)
		require.Equal(t, "alice", created.Username)
		require.Equal(t, "user", created.Role)
	})

	t.Run("validation failure returns field details", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/v1/auth/register", authsdk.RegisterRequest{
			Username:        "al",
			Password:        "short",
			ConfirmPassword: "short",
		}, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody[authsdk.ValidationErrorResponse](t, resp)
		require.Equal(t, "validation_error", body.Code)
		require.NotEmpty(t, body.Details["username"])
		require.NotEmpty(t, body.Details["password"])
	})

	t.Run("mismatched confirmation", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/v1/auth/register", authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter3",
		}, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody[authsdk.ErrorResponse](t, resp)
		require.Equal(t, authsdk.ErrorCodePasswordMismatch, body.Error)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		srv, _ := newTestServer(t)
		register(t, srv, authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
		})

		resp := postJSON(t, srv.URL+"/v1/auth/register", authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "other-password",
			ConfirmPassword: "other-password",
		}, "")
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		body := decodeBody[authsdk.ErrorResponse](t, resp)
		require.Equal(t, authsdk.ErrorCodeUsernameTaken, body.Error)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("returns bearer token and role", func(t *testing.T) {
		srv, _ := newTestServer(t)
		register(t, srv, authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
		})

		token := login(t, srv, "alice", "hunter2hunter2")
		require.NotEmpty(t, token.AccessToken)
		require.Equal(t, "Bearer", token.TokenType)
		require.Equal(t, int((30 * time.Minute).Seconds()), token.ExpiresIn)
		require.Equal(t, "user", token.Role)
	})

	t.Run("wrong password and unknown user look identical", func(t *testing.T) {
		srv, _ := newTestServer(t)
		register(t, srv, authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
		})

		wrongPw := postJSON(t, srv.URL+"/v1/auth/login", authsdk.LoginRequest{
			Username: "alice", Password: "wrong",
		}, "")
		unknown := postJSON(t, srv.URL+"/v1/auth/login", authsdk.LoginRequest{
			Username: "mallory", Password: "wrong",
		}, "")

		require.Equal(t, http.StatusUnauthorized, wrongPw.StatusCode)
		require.Equal(t, http.StatusUnauthorized, unknown.StatusCode)

		a := decodeBody[authsdk.ErrorResponse](t, wrongPw)
		b := decodeBody[authsdk.ErrorResponse](t, unknown)
		require.Equal(t, a, b)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp := postJSON(t, srv.URL+"/v1/auth/login", authsdk.LoginRequest{}, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRoleEndpoint(t *testing.T) {
	t.Run("returns current role", func(t *testing.T) {
		srv, _ := newTestServer(t)
		register(t, srv, authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
		})
		token := login(t, srv, "alice", "hunter2hunter2")

		resp := sendJSON(t, http.MethodGet, srv.URL+"/v1/auth/role", nil, token.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[authsdk.RoleResponse](t, resp)
		require.Equal(t, "alice", body.Username)
		require.Equal(t, "user", body.Role)
	})

	t.Run("reflects role change on an old token", func(t *testing.T) {
		srv, svc := newTestServer(t)
		register(t, srv, authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
		})
		token := login(t, srv, "alice", "hunter2hunter2")

		// Promote alice behind the token's back.
		ctx := context.Background()
		user, err := svc.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NoError(t, svc.Store.Users().UpdateUserRole(ctx, user.ID, "admin"))

		resp := sendJSON(t, http.MethodGet, srv.URL+"/v1/auth/role", nil, token.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[authsdk.RoleResponse](t, resp)
		require.Equal(t, "admin", body.Role)
	})

	t.Run("missing token", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp := sendJSON(t, http.MethodGet, srv.URL+"/v1/auth/role", nil, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp := sendJSON(t, http.MethodGet, srv.URL+"/v1/auth/role", nil, "not.a.token")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeBody[authsdk.ErrorResponse](t, resp)
		require.Equal(t, authsdk.ErrorCodeInvalidToken, body.Error)
	})
}

func TestChangeRoleEndpoint(t *testing.T) {
	setup := func(t *testing.T) (*httptest.Server, authsdk.LoginResponse, authsdk.LoginResponse) {
		srv, _ := newTestServer(t)
		register(t, srv, authsdk.RegisterRequest{
			Username:        "root",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
			Role:            "admin",
		})
		register(t, srv, authsdk.RegisterRequest{
			Username:        "alice",
			Password:        "hunter2hunter2",
			ConfirmPassword: "hunter2hunter2",
		})
		admin := login(t, srv, "root", "hunter2hunter2")
		user := login(t, srv, "alice", "hunter2hunter2")
		return srv, admin, user
	}

	t.Run("admin promotes a user", func(t *testing.T) {
		srv, admin, user := setup(t)

		resp := sendJSON(t, http.MethodPut, srv.URL+"/v1/users/alice/role",
			authsdk.ChangeRoleRequest{Role: "moderator"}, admin.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[authsdk.RoleResponse](t, resp)
		require.Equal(t, "alice", body.Username)
		require.Equal(t, "moderator", body.Role)

		// The user's unchanged token now resolves to the new role.
		roleResp := sendJSON(t, http.MethodGet, srv.URL+"/v1/auth/role", nil, user.AccessToken)
		require.Equal(t, http.StatusOK, roleResp.StatusCode)
		role := decodeBody[authsdk.RoleResponse](t, roleResp)
		require.Equal(t, "moderator", role.Role)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		srv, _, user := setup(t)

		resp := sendJSON(t, http.MethodPut, srv.URL+"/v1/users/root/role",
			authsdk.ChangeRoleRequest{Role: "user"}, user.AccessToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown target", func(t *testing.T) {
		srv, admin, _ := setup(t)

		resp := sendJSON(t, http.MethodPut, srv.URL+"/v1/users/nobody/role",
			authsdk.ChangeRoleRequest{Role: "admin"}, admin.AccessToken)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad role name", func(t *testing.T) {
		srv, admin, _ := setup(t)

		resp := sendJSON(t, http.MethodPut, srv.URL+"/v1/users/alice/role",
			authsdk.ChangeRoleRequest{Role: "Not A Role"}, admin.AccessToken)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		srv, _, _ := setup(t)

		resp := sendJSON(t, http.MethodPut, srv.URL+"/v1/users/alice/role",
			authsdk.ChangeRoleRequest{Role: "admin"}, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("livez", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/livez")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[authsdk.HealthResponse](t, resp)
		require.Equal(t, "ok", body.Status)
		require.Equal(t, "test", body.Version)
	})

	t.Run("readyz", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/readyz")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody[authsdk.HealthResponse](t, resp)
		require.Equal(t, "ok", body.Status)
		require.NotNil(t, body.Checks)
		require.Equal(t, "ok", body.Checks.Database)
		require.Equal(t, "ok", body.Checks.Signer)
	})
}
