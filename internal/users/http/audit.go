package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/httpx"
)

// AuditHandler exposes the admin audit trail query.
type AuditHandler struct {
	AuditService *service.AuditService
}

// HandleQuery returns one page of the audit trail, newest first.
//
//	@Summary	Query the audit trail
//	@Tags		Audit
//	@Security	BearerAuth
//	@Produce	json
//	@Param		userId		query		int		false	"filter by user id"
//	@Param		action		query		string	false	"filter by action"
//	@Param		resource	query		string	false	"filter by resource"
//	@Param		resourceId	query		string	false	"filter by resource id"
//	@Param		status		query		string	false	"'success' or 'failure'"
//	@Param		start		query		string	false	"RFC 3339 lower bound"
//	@Param		end			query		string	false	"RFC 3339 upper bound"
//	@Param		page		query		int		false	"page number (default 1)"
//	@Param		limit		query		int		false	"page size (default 50, max 500)"
//	@Success	200			{object}	domain.AuditPage
//	@Failure	403			{object}	apierr.Error	"Admin role required"
//	@Router		/v1/audit [get].
func (h *AuditHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := domain.AuditFilter{
		Action:     q.Get("action"),
		Resource:   q.Get("resource"),
		ResourceID: q.Get("resourceId"),
		Status:     domain.AuditStatus(q.Get("status")),
	}
	filter.UserID, _ = strconv.ParseInt(q.Get("userId"), 10, 64)
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	if raw := q.Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeErr(ctx, w, apierr.Validation("start must be an RFC 3339 timestamp"))
			return
		}
		filter.Start = &t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeErr(ctx, w, apierr.Validation("end must be an RFC 3339 timestamp"))
			return
		}
		filter.End = &t
	}

	page, err := h.AuditService.Query(ctx, filter)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, page)
}

type auditEntriesResponse struct {
	Entries []domain.AuditEntry `json:"entries"`
	Total   int                 `json:"total"`
}

// HandleMy returns the caller's own recent security events.
//
//	@Summary	Own recent audit events
//	@Tags		Audit
//	@Security	BearerAuth
//	@Produce	json
//	@Param		limit	query		int	false	"max entries (default 50, max 500)"
//	@Success	200		{object}	auditEntriesResponse
//	@Router		/v1/audit/my [get].
func (h *AuditHandler) HandleMy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.AuditService.RecentForUser(ctx, httpx.UserIDFromCtx(ctx), limit)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, auditEntriesResponse{
		Entries: entries,
		Total:   len(entries),
	})
}
