package httpx

import "net/http"

// RequireRole gates a handler on the caller's role claim. The caller must
// already have passed AuthnMiddleware.
func RequireRole(required string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromCtx(r.Context()) != required {
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":   "forbidden",
					"message": "access denied: " + required + " role required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
