package http

import (
	"net/http"

	"github.com/opshelm/warden/internal/users/policy"
	"github.com/opshelm/warden/pkg/httpx"
)

type PasswordPolicyHandler struct {
	Policy policy.Policy
}

// ServeHTTP publishes the password composition rules so clients can validate
// before submitting.
//
//	@Summary	Get the password policy
//	@Tags		Policy
//	@Produce	json
//	@Success	200	{object}	policy.Policy
//	@Router		/v1/password-policy [get].
func (h *PasswordPolicyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Policy)
}
