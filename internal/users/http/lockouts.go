package http

import (
	"net/http"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/httpx"
	"github.com/opshelm/warden/pkg/slogx"
)

// LockoutsHandler is the admin lockout surface.
type LockoutsHandler struct {
	LockoutService *service.LockoutService
	AuditService   *service.AuditService
}

type lockedAccountsResponse struct {
	Accounts []domain.LockedAccount `json:"accounts"`
	Total    int                    `json:"total"`
}

// HandleList returns every account currently locked.
//
//	@Summary	List locked accounts
//	@Tags		Lockouts
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	lockedAccountsResponse
//	@Failure	403	{object}	apierr.Error	"Admin role required"
//	@Router		/v1/lockouts [get].
func (h *LockoutsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := h.LockoutService.ListLocked(ctx)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, lockedAccountsResponse{
		Accounts: accounts,
		Total:    len(accounts),
	})
}

// HandleStatus reports the lockout state of one user.
//
//	@Summary	Get a user's lockout status
//	@Tags		Lockouts
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"user id"
//	@Success	200	{object}	domain.LockoutStatus
//	@Router		/v1/lockouts/{id} [get].
func (h *LockoutsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	status, err := h.LockoutService.Status(ctx, id)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, status)
}

// HandleUnlock clears a user's lock and attempt history.
//
//	@Summary	Unlock an account
//	@Tags		Lockouts
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"user id"
//	@Success	200	{object}	messageResponse
//	@Router		/v1/lockouts/{id} [delete].
func (h *LockoutsHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	if err := h.LockoutService.Clear(ctx, id); err != nil {
		writeErr(ctx, w, err)
		return
	}

	h.AuditService.Record(ctx, service.Event{
		UserID:    id,
		Action:    domain.AuditActionAccountUnlock,
		Resource:  "auth",
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	slogx.FromContext(ctx).Info("account unlocked by admin", "user_id", id)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "account unlocked"})
}

// HandlePolicy publishes the lockout configuration.
//
//	@Summary	Get the lockout policy
//	@Tags		Lockouts
//	@Produce	json
//	@Success	200	{object}	domain.LockoutPolicy
//	@Router		/v1/lockouts/policy [get].
func (h *LockoutsHandler) HandlePolicy(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.LockoutService.Policy())
}
