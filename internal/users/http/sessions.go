package http

import (
	"fmt"
	"net/http"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/httpx"
)

// SessionsHandler lets users inspect and revoke their own sessions.
type SessionsHandler struct {
	SessionService *service.SessionService
	AuditService   *service.AuditService
}

type sessionsResponse struct {
	Sessions []domain.Session `json:"sessions"`
	Total    int              `json:"total"`
}

// HandleList returns the caller's active sessions, oldest first.
//
//	@Summary	List own sessions
//	@Tags		Sessions
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	sessionsResponse
//	@Router		/v1/sessions [get].
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := h.SessionService.ListForUser(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionsResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}

// HandleListForUser returns another user's active sessions.
//
//	@Summary	List a user's sessions
//	@Tags		Sessions
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"user id"
//	@Success	200	{object}	sessionsResponse
//	@Failure	403	{object}	apierr.Error	"Admin only"
//	@Router		/v1/users/{id}/sessions [get].
func (h *SessionsHandler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	sessions, err := h.SessionService.ListForUser(ctx, userID)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionsResponse{
		Sessions: sessions,
		Total:    len(sessions),
	})
}

// HandleRevoke terminates one of the caller's sessions by token.
//
//	@Summary	Revoke one session
//	@Tags		Sessions
//	@Security	BearerAuth
//	@Produce	json
//	@Param		token	path		string	true	"session token"
//	@Success	200		{object}	messageResponse
//	@Failure	404		{object}	apierr.Error
//	@Router		/v1/sessions/{token} [delete].
func (h *SessionsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.PathValue("token")

	session, err := h.SessionService.RevokeOwned(ctx, token, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	h.AuditService.Record(ctx, service.Event{
		UserID:     session.UserID,
		Action:     domain.AuditActionSessionRevoke,
		Resource:   "session",
		ResourceID: fmt.Sprintf("%d", session.ID),
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
	})

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "session revoked"})
}

type revokeAllResponse struct {
	Revoked int `json:"revoked"`
}

// HandleRevokeAll terminates every active session of the caller. Passing
// the current session token via the except query parameter keeps it alive
// ("log out everywhere else").
//
//	@Summary	Revoke all own sessions
//	@Tags		Sessions
//	@Security	BearerAuth
//	@Produce	json
//	@Param		except	query		string	false	"session token to keep"
//	@Success	200		{object}	revokeAllResponse
//	@Router		/v1/sessions [delete].
func (h *SessionsHandler) HandleRevokeAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := httpx.UserIDFromCtx(ctx)

	n, err := h.SessionService.RevokeAllForUser(ctx, userID, r.URL.Query().Get("except"))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	h.AuditService.Record(ctx, service.Event{
		UserID:    userID,
		Action:    domain.AuditActionSessionRevoke,
		Resource:  "session",
		Details:   map[string]any{"revoked": n},
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, revokeAllResponse{Revoked: n})
}
