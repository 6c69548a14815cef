package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/internal/users/policy"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/internal/users/store/drivers/sqlite"
	"github.com/opshelm/warden/pkg/cryptox"
	"github.com/opshelm/warden/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "http-test-")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// newTestServer builds the full router over an in-memory store, the same
// wiring the application does at startup.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256("test-secret-at-least-32-bytes-long", "warden-test")
	require.NoError(t, err)

	audit := &service.AuditService{Store: st}
	lockouts := &service.LockoutService{Store: st, Config: service.DefaultLockoutConfig()}
	sessions := &service.SessionService{Store: st}
	users := &service.UserService{Store: st, Policy: policy.Default(), Audit: audit}
	auth := &service.AuthService{
		Store:    st,
		Signer:   signer,
		Policy:   policy.Default(),
		Lockouts: lockouts,
		Sessions: sessions,
		Audit:    audit,
		Issuer:   "warden-test",
	}

	router := NewRouter(signer, "test", st, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.AuthService = auth
	router.UserService = users
	router.LockoutService = lockouts
	router.SessionService = sessions
	router.AuditService = audit
	router.OrganizationService = &service.OrganizationService{Store: st}
	router.InvitationService = &service.InvitationService{Store: st, Auth: auth}
	router.PreferencesService = &service.PreferencesService{Store: st}
	router.BulkService = &service.BulkService{Store: st, Users: users, Audit: audit}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path, body, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, srv *httptest.Server, path, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv, "/v1/auth/register",
		`{"name":"alice","password":"Sup3rSecret!","profession":"engineer"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var registered struct {
		Role string `json:"role"`
	}
	decode(t, resp, &registered)
	require.Equal(t, "admin", registered.Role, "first account becomes admin")

	resp = postJSON(t, srv, "/v1/auth/login",
		`{"name":"alice","password":"Sup3rSecret!"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var login struct {
		AccessToken string `json:"accessToken"`
		SessionID   string `json:"sessionId"`
	}
	decode(t, resp, &login)
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.SessionID)

	t.Run("token grants access to the profile", func(t *testing.T) {
		resp := get(t, srv, "/v1/profile", login.AccessToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile struct {
			Name string `json:"name"`
		}
		decode(t, resp, &profile)
		require.Equal(t, "alice", profile.Name)
	})

	t.Run("no token is unauthorized", func(t *testing.T) {
		resp := get(t, srv, "/v1/profile", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong password and unknown name read the same", func(t *testing.T) {
		bad := postJSON(t, srv, "/v1/auth/login", `{"name":"alice","password":"Wr0ngPass!x"}`, "")
		require.Equal(t, http.StatusUnauthorized, bad.StatusCode)
		var badBody map[string]any
		decode(t, bad, &badBody)

		ghost := postJSON(t, srv, "/v1/auth/login", `{"name":"nobody","password":"Wr0ngPass!x"}`, "")
		require.Equal(t, http.StatusUnauthorized, ghost.StatusCode)
		var ghostBody map[string]any
		decode(t, ghost, &ghostBody)

		require.Equal(t, badBody["message"], ghostBody["message"])
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		resp := postJSON(t, srv, "/v1/auth/login", `{"name":`, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminGate(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv, "/v1/auth/register",
		`{"name":"admin-user","password":"Sup3rSecret!","profession":""}`, "")
	postJSON(t, srv, "/v1/auth/register",
		`{"name":"regular","password":"Sup3rSecret!","profession":""}`, "")

	loginAs := func(name string) string {
		resp := postJSON(t, srv, "/v1/auth/login",
			`{"name":"`+name+`","password":"Sup3rSecret!"}`, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var login struct {
			AccessToken string `json:"accessToken"`
		}
		decode(t, resp, &login)
		return login.AccessToken
	}

	adminToken := loginAs("admin-user")
	userToken := loginAs("regular")

	t.Run("admin can list users", func(t *testing.T) {
		resp := get(t, srv, "/v1/users", adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("regular user cannot", func(t *testing.T) {
		resp := get(t, srv, "/v1/users", userToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("audit query is admin only", func(t *testing.T) {
		resp := get(t, srv, "/v1/audit", userToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = get(t, srv, "/v1/audit", adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("users can read their own trail", func(t *testing.T) {
		resp := get(t, srv, "/v1/audit/my", userToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestPublicEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/livez",
		"/readyz",
		"/v1/password-policy",
		"/v1/lockouts/policy",
		"/v1/preferences/defaults",
	} {
		resp := get(t, srv, path, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
