package http

import (
	"encoding/json"
	"net/http"

	"github.com/opshelm/warden/internal/users/domain"
	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/pkg/apierr"
	"github.com/opshelm/warden/pkg/httpx"
)

// PreferencesHandler manages the caller's own settings.
type PreferencesHandler struct {
	PreferencesService *service.PreferencesService
}

// HandleGet returns the caller's effective preferences.
//
//	@Summary	Get own preferences
//	@Tags		Preferences
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.Preferences
//	@Router		/v1/preferences [get].
func (h *PreferencesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	prefs, err := h.PreferencesService.Get(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, prefs)
}

// HandleUpdate applies a partial patch; omitted fields keep their current
// values.
//
//	@Summary	Patch own preferences
//	@Tags		Preferences
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		domain.PreferencesPatch	true	"fields to change"
//	@Success	200		{object}	domain.Preferences
//	@Failure	400		{object}	apierr.Error
//	@Router		/v1/preferences [patch].
func (h *PreferencesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch domain.PreferencesPatch
	if err := httpx.ReadJSON(w, r, &patch); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	prefs, err := h.PreferencesService.Update(ctx, httpx.UserIDFromCtx(ctx), patch)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, prefs)
}

// HandleDefaults returns the settings every user starts with.
//
//	@Summary	Default preferences
//	@Tags		Preferences
//	@Produce	json
//	@Success	200	{object}	domain.Preferences
//	@Router		/v1/preferences/defaults [get].
func (h *PreferencesHandler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, domain.DefaultPreferences())
}

// HandleExport returns the caller's settings as a downloadable document.
//
//	@Summary	Export own preferences
//	@Tags		Preferences
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.Preferences
//	@Router		/v1/preferences/export [get].
func (h *PreferencesHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	prefs, err := h.PreferencesService.Get(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="preferences.json"`)
	httpx.WriteJSON(w, http.StatusOK, prefs)
}

// HandleImport replaces the caller's settings with an uploaded document.
// Unknown fields are dropped rather than rejected so older exports keep
// importing.
//
//	@Summary	Import preferences
//	@Tags		Preferences
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		domain.Preferences	true	"full settings document"
//	@Success	200		{object}	domain.Preferences
//	@Failure	400		{object}	apierr.Error
//	@Router		/v1/preferences/import [post].
func (h *PreferencesHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc := domain.DefaultPreferences()
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeErr(ctx, w, apierr.Validation("invalid request body"))
		return
	}

	prefs, err := h.PreferencesService.Import(ctx, httpx.UserIDFromCtx(ctx), doc)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, prefs)
}

// HandleGetForUser is the admin view of another user's preferences.
//
//	@Summary	Get a user's preferences
//	@Tags		Preferences
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"user id"
//	@Success	200	{object}	domain.Preferences
//	@Failure	404	{object}	apierr.Error
//	@Router		/v1/users/{id}/preferences [get].
func (h *PreferencesHandler) HandleGetForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	prefs, err := h.PreferencesService.GetForUser(ctx, id)
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, prefs)
}

// HandleReset restores the defaults.
//
//	@Summary	Reset own preferences
//	@Tags		Preferences
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	domain.Preferences
//	@Router		/v1/preferences [delete].
func (h *PreferencesHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	prefs, err := h.PreferencesService.Reset(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeErr(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, prefs)
}
