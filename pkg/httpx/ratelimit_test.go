package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opshelm/warden/pkg/httpx"
)

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"

		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")

		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")

		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestUserIDKeyExtractor(t *testing.T) {
	t.Run("empty for anonymous request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Empty(t, httpx.UserIDKeyExtractor(req))
	})

	t.Run("formats the context user id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), httpx.CtxKeyUserID, int64(42))

		require.Equal(t, "42", httpx.UserIDKeyExtractor(req.WithContext(ctx)))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":",
		httpx.UserIDKeyExtractor,
		httpx.IPKeyExtractor,
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	t.Run("skips empty parts", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", extractor(req))
	})

	t.Run("joins present parts", func(t *testing.T) {
		ctx := context.WithValue(req.Context(), httpx.CtxKeyUserID, int64(7))
		require.Equal(t, "7:192.168.1.1", extractor(req.WithContext(ctx)))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allows up to the burst then rejects", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
		handler := httpx.RateLimitByIP(cfg)(okHandler)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "198.51.100.1:1000"
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.1:1000"
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("buckets are per key", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		handler := httpx.RateLimitByIP(cfg)(okHandler)

		first := httptest.NewRequest(http.MethodGet, "/", nil)
		first.RemoteAddr = "198.51.100.2:1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		require.Equal(t, http.StatusOK, rec.Code)

		exhausted := httptest.NewRequest(http.MethodGet, "/", nil)
		exhausted.RemoteAddr = "198.51.100.2:1000"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, exhausted)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		other := httptest.NewRequest(http.MethodGet, "/", nil)
		other.RemoteAddr = "198.51.100.3:1000"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, other)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
