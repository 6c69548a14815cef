package http

import (
	"net/http"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/httpx"
)

// OrganizationsHandler manages organizations and their memberships.
type OrganizationsHandler struct {
	OrganizationService *service.OrganizationService
}

type organizationRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Settings    map[string]string `json:"settings"`
}

type organizationsResponse struct {
	Organizations []domain.Organization `json:"organizations"`
	Total         int                   `json:"total"`
}

// HandleList returns every organization, newest first.
//
//	@Summary	List organizations
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	organizationsResponse
//	@Router		/v1/orgs [get].
func (h *OrganizationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgs, err := h.OrganizationService.List(ctx)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, organizationsResponse{
		Organizations: orgs,
		Total:         len(orgs),
	})
}

// HandleMy returns the organizations the caller belongs to.
//
//	@Summary	List my organizations
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	organizationsResponse
//	@Router		/v1/orgs/my [get].
func (h *OrganizationsHandler) HandleMy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgs, err := h.OrganizationService.ListForUser(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, organizationsResponse{
		Organizations: orgs,
		Total:         len(orgs),
	})
}

// HandleCreate makes a new organization with the caller as owner.
//
//	@Summary	Create an organization
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		organizationRequest	true	"organization details"
//	@Success	201		{object}	domain.Organization
//	@Failure	409		{object}	apierr.Error	"Name already taken"
//	@Router		/v1/orgs [post].
func (h *OrganizationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req organizationRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	org, err := h.OrganizationService.Create(ctx, req.Name, req.Description, req.Settings, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, org)
}

// HandleGet returns one organization with its members.
//
//	@Summary	Get an organization
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"organization id"
//	@Success	200	{object}	domain.Organization
//	@Failure	404	{object}	apierr.Error
//	@Router		/v1/orgs/{id} [get].
func (h *OrganizationsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	org, err := h.OrganizationService.Get(ctx, id)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, org)
}

// HandleUpdate changes an organization's name, description or settings.
// Omitted fields keep their current values.
//
//	@Summary	Update an organization
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"organization id"
//	@Param		request	body		organizationRequest	true	"fields to change"
//	@Success	200		{object}	domain.Organization
//	@Failure	404		{object}	apierr.Error
//	@Router		/v1/orgs/{id} [patch].
func (h *OrganizationsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	var req organizationRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	org, err := h.OrganizationService.Update(ctx, id, req.Name, req.Description, req.Settings)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, org)
}

// HandleDelete removes an organization and all its memberships.
//
//	@Summary	Delete an organization
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"organization id"
//	@Success	200	{object}	messageResponse
//	@Failure	404	{object}	apierr.Error
//	@Router		/v1/orgs/{id} [delete].
func (h *OrganizationsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	if err := h.OrganizationService.Delete(ctx, id); err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "organization deleted"})
}

type memberRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// HandleAddMember adds a user to an organization.
//
//	@Summary	Add a member
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int				true	"organization id"
//	@Param		request	body		memberRequest	true	"user and role"
//	@Success	200		{object}	domain.Organization
//	@Failure	409		{object}	apierr.Error	"Already a member"
//	@Router		/v1/orgs/{id}/members [post].
func (h *OrganizationsHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	var req memberRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	org, err := h.OrganizationService.AddMember(ctx, id, req.UserID, domain.MemberRole(req.Role))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, org)
}

type memberRoleRequest struct {
	Role string `json:"role"`
}

// HandleUpdateMember changes a member's organization role.
//
//	@Summary	Change a member's role
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"organization id"
//	@Param		userId	path		int					true	"user id"
//	@Param		request	body		memberRoleRequest	true	"new role"
//	@Success	200		{object}	domain.Organization
//	@Failure	409		{object}	apierr.Error	"Would leave no owner"
//	@Router		/v1/orgs/{id}/members/{userId} [put].
func (h *OrganizationsHandler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	var req memberRoleRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	org, err := h.OrganizationService.UpdateMemberRole(ctx, id, userID, domain.MemberRole(req.Role))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, org)
}

// HandleRemoveMember removes a user from an organization.
//
//	@Summary	Remove a member
//	@Tags		Organizations
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id		path		int	true	"organization id"
//	@Param		userId	path		int	true	"user id"
//	@Success	200		{object}	domain.Organization
//	@Failure	409		{object}	apierr.Error	"Would leave no owner"
//	@Router		/v1/orgs/{id}/members/{userId} [delete].
func (h *OrganizationsHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	org, err := h.OrganizationService.RemoveMember(ctx, id, userID)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, org)
}
