package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/slogx"
)

// writeErr classifies err and writes it. Storage failures are logged with
// their cause; the response body only ever carries the generic message.
func writeErr(ctx context.Context, w http.ResponseWriter, err error) {
	ae := apierr.From(err)
	if ae.Status >= http.StatusInternalServerError {
		slogx.FromContext(ctx).Error("request failed", "err", err)
	}
	ae.WriteError(w)
}

// pathID parses a numeric path segment.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, apierr.Validation(name + " must be a positive integer")
	}
	return id, nil
}

// requestMeta pulls the caller attribution recorded in audit entries.
func requestMeta(r *http.Request) service.RequestMeta {
	return service.RequestMeta{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
