package http

import (
	"net/http"

	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/httpx"
)

type ProfileHandler struct {
	UserService *service.UserService
}

// HandleGet returns the authenticated user's profile.
//
//	@Summary	Get own profile
//	@Tags		Profile
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.PublicUser
//	@Failure	401	{object}	apierr.Error
//	@Router		/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.UserService.GetByID(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, user.Public())
}

type updateProfileRequest struct {
	Name       string `json:"name"`
	Profession string `json:"profession"`
}

// HandleUpdate changes name and profession. Blank fields keep their current
// values.
//
//	@Summary	Update own profile
//	@Tags		Profile
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		updateProfileRequest	true	"fields to change"
//	@Success	200		{object}	domain.PublicUser
//	@Failure	409		{object}	apierr.Error	"Name already taken"
//	@Router		/v1/profile [patch].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateProfileRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	user, err := h.UserService.UpdateProfile(ctx, httpx.UserIDFromCtx(ctx), req.Name, req.Profession)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, user.Public())
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleChangePassword rotates the caller's password.
//
//	@Summary		Change own password
//	@Description	The current password must verify, the new one must satisfy the policy,
//	@Description	and none of the recently used passwords may be reused.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		changePasswordRequest	true	"current and new password"
//	@Success		200		{object}	messageResponse
//	@Failure		400		{object}	apierr.Error	"Policy violation or recent reuse"
//	@Failure		401		{object}	apierr.Error	"Current password incorrect"
//	@Router			/v1/profile/password [put].
func (h *ProfileHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changePasswordRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeErr(ctx, w, apierr.Validation("currentPassword and newPassword are required"))
		return
	}

	err := h.UserService.ChangePassword(ctx, httpx.UserIDFromCtx(ctx),
		req.CurrentPassword, req.NewPassword, requestMeta(r))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "password changed"})
}

// HandlePasswordStatus reports expiry information for the caller's password.
//
//	@Summary	Get own password expiry status
//	@Tags		Profile
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	service.PasswordStatus
//	@Router		/v1/profile/password-status [get].
func (h *ProfileHandler) HandlePasswordStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.UserService.GetByID(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, h.UserService.PasswordStatusFor(user))
}
