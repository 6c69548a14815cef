package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/pkg/httpx"
	"github.com/opshelm/warden/pkg/jwtx"
)

func newTestSigner(t *testing.T) *jwtx.HS256 {
	t.Helper()
	signer, err := jwtx.NewHS256("test-secret-at-least-32-bytes-long", "warden-test")
	require.NoError(t, err)
	return signer
}

func signTestToken(t *testing.T, signer *jwtx.HS256, userID int64, role string) string {
	t.Helper()
	claims := jwtx.NewAccessClaims(userID, "alice", role, "", "warden-test", time.Hour, time.Now())
	raw, err := signer.Sign(claims)
	require.NoError(t, err)
	return raw
}

func TestAuthnMiddleware(t *testing.T) {
	signer := newTestSigner(t)

	var gotUserID int64
	var gotRole string
	handler := httpx.AuthnMiddleware(signer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = httpx.UserIDFromCtx(r.Context())
		gotRole = httpx.RoleFromCtx(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing token rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		other, err := jwtx.NewHS256("another-secret-also-32-bytes-long!!", "warden-test")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, other, 1, "user"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token populates the context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, signer, 42, "admin"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, int64(42), gotUserID)
		require.Equal(t, "admin", gotRole)
	})
}

func TestRequireRole(t *testing.T) {
	signer := newTestSigner(t)

	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		httpx.AuthnMiddleware(signer),
		httpx.RequireRole("admin"),
	)

	t.Run("wrong role forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, signer, 1, "user"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("matching role passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, signer, 1, "admin"))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("decodes a single object", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}`))

		var p payload
		require.NoError(t, httpx.ReadJSON(httptest.NewRecorder(), req, &p))
		require.Equal(t, "alice", p.Name)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice","extra":1}`))

		var p payload
		require.Error(t, httpx.ReadJSON(httptest.NewRecorder(), req, &p))
	})

	t.Run("trailing garbage rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}{"name":"bob"}`))

		var p payload
		require.Error(t, httpx.ReadJSON(httptest.NewRecorder(), req, &p))
	})
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())
}
