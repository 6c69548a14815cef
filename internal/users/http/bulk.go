package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/httpx"
)

// BulkHandler imports and exports user accounts as CSV.
type BulkHandler struct {
	BulkService *service.BulkService
}

// HandleImport reads a CSV body (columns: name, password, profession, role)
// and creates the accounts. Conflict handling is tuned with the
// skipDuplicates and updateExisting query flags.
//
//	@Summary	Bulk import users from CSV
//	@Tags		Bulk
//	@Security	BearerAuth
//	@Accept		plain
//	@Produce	json
//	@Param		skipDuplicates	query		bool	false	"count existing names as skipped"
//	@Param		updateExisting	query		bool	false	"update profession/role on existing names"
//	@Success	200				{object}	service.BulkReport
//	@Failure	400				{object}	apierr.Error	"Too many rows"
//	@Router		/v1/bulk/users [post].
func (h *BulkHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	opts := service.BulkOptions{}
	opts.SkipDuplicates, _ = strconv.ParseBool(q.Get("skipDuplicates"))
	opts.UpdateExisting, _ = strconv.ParseBool(q.Get("updateExisting"))

	report, err := h.BulkService.ImportCSV(ctx, r.Body, opts, requestMeta(r))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, report)
}

// HandleExport streams every account as CSV or JSON. Password material is
// never included.
//
//	@Summary	Export users
//	@Tags		Bulk
//	@Security	BearerAuth
//	@Produce	plain
//	@Param		format	query		string	false	"'csv' (default) or 'json'"
//	@Success	200		{string}	string	"CSV or JSON body"
//	@Router		/v1/bulk/users [get].
func (h *BulkHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	// Buffer the export so a storage failure can still produce a JSON
	// error instead of a truncated body.
	var buf bytes.Buffer
	var contentType, filename string
	switch format {
	case "csv":
		contentType, filename = "text/csv", "users.csv"
		if err := h.BulkService.ExportCSV(ctx, &buf); err != nil {
			writeErr(ctx, w, err)
			return
		}
	case "json":
		contentType, filename = "application/json", "users.json"
		if err := h.BulkService.ExportJSON(ctx, &buf); err != nil {
			writeErr(ctx, w, err)
			return
		}
	default:
		writeErr(ctx, w, apierr.Validation("format must be 'csv' or 'json'"))
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = buf.WriteTo(w)
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// HandleDelete removes a batch of accounts.
//
//	@Summary	Bulk delete users
//	@Tags		Bulk
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		bulkDeleteRequest	true	"user ids"
//	@Success	200		{object}	service.BulkActionReport
//	@Router		/v1/bulk/delete [post].
func (h *BulkHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkDeleteRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	report, err := h.BulkService.DeleteMany(ctx, req.IDs, httpx.UserIDFromCtx(ctx), requestMeta(r))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, report)
}

type bulkUpdateRoleRequest struct {
	IDs  []int64 `json:"ids"`
	Role string  `json:"role"`
}

// HandleUpdateRole assigns one role to a batch of accounts.
//
//	@Summary	Bulk update roles
//	@Tags		Bulk
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		bulkUpdateRoleRequest	true	"user ids and role"
//	@Success	200		{object}	service.BulkActionReport
//	@Router		/v1/bulk/update-role [post].
func (h *BulkHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkUpdateRoleRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	report, err := h.BulkService.UpdateRoleMany(ctx, req.IDs, domain.Role(req.Role), httpx.UserIDFromCtx(ctx), requestMeta(r))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, report)
}
