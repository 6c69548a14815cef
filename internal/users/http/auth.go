package http

import (
	"net/http"

	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/httpx"
)

type RegisterHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	Profession string `json:"profession"`
}

// ServeHTTP creates a new account.
//
//	@Summary		Register a new account
//	@Description	Creates a user account. The password must satisfy the published password policy.
//	@Description	The first account ever registered becomes an admin.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerRequest	true	"name, password, profession"
//	@Success		201		{object}	domain.PublicUser
//	@Failure		400		{object}	apierr.Error	"Password policy violations or bad name"
//	@Failure		409		{object}	apierr.Error	"Name already taken"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	user, err := h.AuthService.Register(ctx, req.Name, req.Password, req.Profession, requestMeta(r))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, user)
}

type LoginHandler struct {
	AuthService *service.AuthService
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ServeHTTP authenticates a user and issues a session.
//
//	@Summary		Log in
//	@Description	Verifies credentials and returns a JWT access token plus an opaque session id.
//	@Description	Unknown names and wrong passwords produce the same error. Repeated failures
//	@Description	lock the account temporarily.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"name and password"
//	@Success		200		{object}	service.LoginResult
//	@Failure		401		{object}	apierr.Error	"Invalid name or password"
//	@Failure		423		{object}	apierr.Error	"Account temporarily locked"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	result, err := h.AuthService.Login(ctx, req.Name, req.Password, requestMeta(r))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, result)
}

type LogoutHandler struct {
	AuthService *service.AuthService
}

type logoutRequest struct {
	SessionID string `json:"sessionId"`
}

// ServeHTTP revokes the presented session.
//
//	@Summary	Log out
//	@Tags		Auth
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		logoutRequest	true	"session id returned at login"
//	@Success	200		{object}	messageResponse
//	@Failure	404		{object}	apierr.Error	"Unknown session"
//	@Router		/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req logoutRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	if err := h.AuthService.Logout(ctx, req.SessionID, requestMeta(r)); err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

type messageResponse struct {
	Message string `json:"message"`
}
