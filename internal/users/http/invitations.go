package http

import (
	"net/http"
	"time"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/httpx"
)

// InvitationsHandler issues, lists and redeems account invitations.
type InvitationsHandler struct {
	InvitationService *service.InvitationService
}

type createInvitationRequest struct {
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID int64  `json:"organizationId"`
}

// HandleCreate issues an invitation. The raw token appears only in this
// response; only its fingerprint is stored.
//
//	@Summary	Create an invitation
//	@Tags		Invitations
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		createInvitationRequest	true	"invitation details"
//	@Success	201		{object}	service.CreatedInvitation
//	@Failure	409		{object}	apierr.Error	"Pending invitation exists"
//	@Router		/v1/invitations [post].
func (h *InvitationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createInvitationRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	created, err := h.InvitationService.Create(ctx, req.Email, domain.Role(req.Role), req.OrganizationID, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, created)
}

type invitationsResponse struct {
	Invitations []domain.Invitation `json:"invitations"`
	Total       int                 `json:"total"`
}

// HandleList returns invitations, optionally filtered by status.
//
//	@Summary	List invitations
//	@Tags		Invitations
//	@Security	BearerAuth
//	@Produce	json
//	@Param		status	query		string	false	"'pending', 'accepted', 'revoked' or 'expired'"
//	@Success	200		{object}	invitationsResponse
//	@Router		/v1/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	invitations, err := h.InvitationService.List(ctx, domain.InvitationStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, invitationsResponse{
		Invitations: invitations,
		Total:       len(invitations),
	})
}

// HandleRevoke cancels a pending invitation.
//
//	@Summary	Revoke an invitation
//	@Tags		Invitations
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"invitation id"
//	@Success	200	{object}	messageResponse
//	@Failure	409	{object}	apierr.Error	"Not pending"
//	@Router		/v1/invitations/{id} [delete].
func (h *InvitationsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	if err := h.InvitationService.Revoke(ctx, id); err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "invitation revoked"})
}

type invitationPreviewResponse struct {
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID int64  `json:"organizationId,omitempty"`
	ExpiresAt      string `json:"expiresAt"`
}

// HandleGetByToken previews a pending invitation so a signup form can be
// prefilled. The response omits internal ids and the inviter.
//
//	@Summary	Preview an invitation by token
//	@Tags		Invitations
//	@Produce	json
//	@Param		token	path		string	true	"raw invitation token"
//	@Success	200		{object}	invitationPreviewResponse
//	@Failure	404		{object}	apierr.Error	"Unknown or expired token"
//	@Router		/v1/invitations/token/{token} [get].
func (h *InvitationsHandler) HandleGetByToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inv, err := h.InvitationService.GetByToken(ctx, r.PathValue("token"))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, invitationPreviewResponse{
		Email:          inv.Email,
		Role:           string(inv.Role),
		OrganizationID: inv.OrganizationID,
		ExpiresAt:      inv.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

type acceptInvitationRequest struct {
	Token      string `json:"token"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	Profession string `json:"profession"`
}

// HandleAccept redeems an invitation token and registers the account.
//
//	@Summary	Accept an invitation
//	@Tags		Invitations
//	@Accept		json
//	@Produce	json
//	@Param		request	body		acceptInvitationRequest	true	"token and account details"
//	@Success	201		{object}	domain.PublicUser
//	@Failure	404		{object}	apierr.Error	"Unknown or expired token"
//	@Router		/v1/invitations/accept [post].
func (h *InvitationsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req acceptInvitationRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}
	if req.Token == "" {
		writeErr(ctx, w, apierr.Validation("token is required"))
		return
	}

	user, err := h.InvitationService.Accept(ctx, req.Token, req.Name, req.Password, req.Profession, requestMeta(r))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, user)
}
