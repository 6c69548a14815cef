package http

import (
	"net/http"
	"strconv"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/httpx"
)

// UsersHandler is the admin user-management surface.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleList returns one page of users.
//
//	@Summary	List users
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Param		name	query		string	false	"name substring filter"
//	@Param		page	query		int		false	"page number (default 1)"
//	@Param		limit	query		int		false	"page size (default 50, max 500)"
//	@Success	200		{object}	service.UserPage
//	@Failure	403		{object}	apierr.Error	"Admin role required"
//	@Router		/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.UserService.List(ctx, q.Get("name"), page, limit)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, result)
}

// HandleGet returns one user.
//
//	@Summary	Get a user
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"user id"
//	@Success	200	{object}	domain.PublicUser
//	@Failure	404	{object}	apierr.Error
//	@Router		/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	user, err := h.UserService.GetByID(ctx, id)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, user.Public())
}

type updateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// HandleUpdateRole sets a user's account-level role.
//
//	@Summary	Change a user's role
//	@Tags		Users
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"user id"
//	@Param		body	body		updateRoleRequest	true	"'user' or 'admin'"
//	@Success	200		{object}	domain.PublicUser
//	@Failure	400		{object}	apierr.Error	"Unknown role"
//	@Failure	404		{object}	apierr.Error
//	@Router		/v1/users/{id}/role [put].
func (h *UsersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	var req updateRoleRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	user, err := h.UserService.UpdateRole(ctx, id, req.Role)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, user.Public())
}

// HandleDelete removes an account. Admins cannot delete themselves.
//
//	@Summary	Delete a user
//	@Tags		Users
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"user id"
//	@Success	200	{object}	messageResponse
//	@Failure	404	{object}	apierr.Error
//	@Failure	409	{object}	apierr.Error	"Attempted self-deletion"
//	@Router		/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	if id == httpx.UserIDFromCtx(ctx) {
		writeErr(ctx, w, apierr.Conflict("cannot delete your own account"))
		return
	}

	if err := h.UserService.Delete(ctx, id, requestMeta(r)); err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "user deleted"})
}
