package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atticlabs/attic-auth/internal/identity/notify"
	"github.com/atticlabs/attic-auth/internal/identity/service"
	"github.com/atticlabs/attic-auth/internal/identity/store/drivers/sqlite"
	"github.com/atticlabs/attic-auth/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

type testServer struct {
	server   *httptest.Server
	recorder *notify.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.New([]byte("test-secret"), "attic-auth")
	require.NoError(t, err)

	recorder := &notify.Recorder{}

	router := NewRouter(http.NewServeMux())
	router.Store = st
	router.Tokens = codec
	router.Accounts = &service.AccountService{Store: st, Tokens: codec, Notifier: recorder}
	router.Auth = &service.AuthService{Store: st, Tokens: codec, Notifier: recorder}
	router.Users = &service.UserService{Store: st, Tokens: codec, Notifier: recorder}
	router.ApplyRoutes()

	srv := httptest.NewServer(router.Mux)
	t.Cleanup(srv.Close)

	return &testServer{server: srv, recorder: recorder}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, ts.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

// TestEnterpriseLifecycle walks the full tenant flow: provision the account
// and its admin, redeem the invite, log in, invite a member, list members,
// then remove the member.
func TestEnterpriseLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/accounts/create-account", "", map[string]string{
		"account_type": "enterprise",
		"account_name": "Acme Corp",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	account := body["account"].(map[string]any)
	require.Equal(t, "Acme Corp", account["name"])

	resp, body = ts.do(t, http.MethodPost, "/api/accounts/create-superuser", "", map[string]string{
		"first_name":   "Ada",
		"last_name":    "Boss",
		"email":        "ada@acme.com",
		"account_name": "Acme Corp",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, body["temp_password"])

	invite, ok := ts.recorder.LastInvitation()
	require.True(t, ok)
	require.Equal(t, "ada@acme.com", invite.Email)

	resp, _ = ts.do(t, http.MethodPost, "/api/accounts/set-password", "", map[string]string{
		"token":    invite.Token,
		"password": "admin-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, http.MethodPost, "/api/accounts/login", "", map[string]string{
		"email":    "ada@acme.com",
		"password": "admin-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)
	require.NotEmpty(t, token)
	require.Equal(t, "enterprise_admin", body["role"].(map[string]any)["name"])

	resp, _ = ts.do(t, http.MethodPost, "/api/users/add-user", token, map[string]string{
		"first_name": "Sam",
		"last_name":  "Lee",
		"email":      "sam@acme.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = ts.do(t, http.MethodGet, "/api/users/members", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	members := body["members"].([]any)
	require.Len(t, members, 1)
	require.Equal(t, "sam@acme.com", members[0].(map[string]any)["email"])

	resp, body = ts.do(t, http.MethodDelete, "/api/users/delete", token, map[string]string{
		"email": "sam@acme.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["deleted_id"])

	resp, body = ts.do(t, http.MethodGet, "/api/users/members", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body["members"])
}

func TestCreateAccountRejectsUnknownType(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/accounts/create-account", "", map[string]string{
		"account_type": "galactic",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid account type", body["error"])
}

func TestLoginFailureShape(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/accounts/login", "", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid credentials", body["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodGet, "/api/users/user", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/api/users/user", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeletedUserTokenStopsWorking(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(t, http.MethodPost, "/api/accounts/create-account", "", map[string]string{
		"account_type": "creator",
		"first_name":   "Jess",
		"last_name":    "Park",
		"email":        "jess@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	invite, ok := ts.recorder.LastInvitation()
	require.True(t, ok)

	resp, _ = ts.do(t, http.MethodPost, "/api/accounts/set-password", "", map[string]string{
		"token":    invite.Token,
		"password": "creator-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := ts.do(t, http.MethodPost, "/api/accounts/login", "", map[string]string{
		"email":    "jess@example.com",
		"password": "creator-password",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	resp, _ = ts.do(t, http.MethodDelete, "/api/users/delete", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Deletion revokes the session: the same bearer token now fails.
	resp, _ = ts.do(t, http.MethodGet, "/api/users/user", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerifyResetTokenEndpointAlways200(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/api/accounts/verify-reset-token", "", map[string]string{
		"token": "garbage",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, false, body["valid"])
	require.Equal(t, "TOKEN_USED", body["code"])
}

func TestStrictRateLimit(t *testing.T) {
	ts := newTestServer(t)

	var last *http.Response
	for i := 0; i < 6; i++ {
		last, _ = ts.do(t, http.MethodPost, "/api/accounts/login", "", map[string]string{
			"email":    "ghost@example.com",
			"password": "whatever",
		})
	}
	require.Equal(t, http.StatusTooManyRequests, last.StatusCode)
	require.NotEmpty(t, last.Header.Get("Retry-After"))
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])

	resp, body = ts.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
}
