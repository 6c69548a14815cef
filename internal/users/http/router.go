// Package http wires the user-management API surface: registration, login,
// profile, admin user management, lockouts, sessions, audit, organizations,
// invitations, preferences and bulk import.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/opshelm/warden/internal/users/service"
	"github.com/opshelm/warden/internal/users/store"
	"github.com/opshelm/warden/pkg/httpx"
	"github.com/opshelm/warden/pkg/jwtx"
	"github.com/opshelm/warden/pkg/slogx"

	_ "github.com/opshelm/warden/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	AuthService         *service.AuthService
	UserService         *service.UserService
	LockoutService      *service.LockoutService
	SessionService      *service.SessionService
	AuditService        *service.AuditService
	OrganizationService *service.OrganizationService
	InvitationService   *service.InvitationService
	PreferencesService  *service.PreferencesService
	BulkService         *service.BulkService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerUsers()
	r.registerLockouts()
	r.registerSessions()
	r.registerAudit()
	r.registerOrganizations()
	r.registerInvitations()
	r.registerPreferences()
	r.registerBulk()
	r.registerPasswordPolicy()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Warden User Management API
//	@version		0.1.0
//	@description	Account security service: credential storage with argon2id, login lockout,
//	@description	session management with JWT access tokens, and a security audit trail.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	register := &RegisterHandler{AuthService: r.AuthService}
	login := &LoginHandler{AuthService: r.AuthService}
	logout := &LogoutHandler{AuthService: r.AuthService}

	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logout,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{UserService: r.UserService}

	secured := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/profile", secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /v1/profile", secured(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("GET /v1/profile/password-status", secured(http.HandlerFunc(h.HandlePasswordStatus)))

	// Password change verifies the current password; limit it like a login.
	r.Mux.Handle("PUT /v1/profile/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	admin := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/users", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/users/{id}", admin(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PUT /v1/users/{id}/role", admin(http.HandlerFunc(h.HandleUpdateRole)))
	r.Mux.Handle("DELETE /v1/users/{id}", admin(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerLockouts() {
	h := &LockoutsHandler{LockoutService: r.LockoutService, AuditService: r.AuditService}

	admin := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/lockouts", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/lockouts/{id}", admin(http.HandlerFunc(h.HandleStatus)))
	r.Mux.Handle("DELETE /v1/lockouts/{id}", admin(http.HandlerFunc(h.HandleUnlock)))

	// Published policy is public read-only.
	r.Mux.Handle("GET /v1/lockouts/policy",
		httpx.Chain(http.HandlerFunc(h.HandlePolicy),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{SessionService: r.SessionService, AuditService: r.AuditService}

	secured := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	admin := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/sessions", secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("DELETE /v1/sessions", secured(http.HandlerFunc(h.HandleRevokeAll)))
	r.Mux.Handle("DELETE /v1/sessions/{token}", secured(http.HandlerFunc(h.HandleRevoke)))
	r.Mux.Handle("GET /v1/users/{id}/sessions", admin(http.HandlerFunc(h.HandleListForUser)))
}

func (r *Router) registerAudit() {
	h := &AuditHandler{AuditService: r.AuditService}

	r.Mux.Handle("GET /v1/audit",
		httpx.Chain(http.HandlerFunc(h.HandleQuery),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Users can always inspect their own trail.
	r.Mux.Handle("GET /v1/audit/my",
		httpx.Chain(http.HandlerFunc(h.HandleMy),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerOrganizations() {
	h := &OrganizationsHandler{OrganizationService: r.OrganizationService}

	secured := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/orgs", secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("POST /v1/orgs", secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/orgs/my", secured(http.HandlerFunc(h.HandleMy)))
	r.Mux.Handle("GET /v1/orgs/{id}", secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /v1/orgs/{id}", secured(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/orgs/{id}", secured(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /v1/orgs/{id}/members", secured(http.HandlerFunc(h.HandleAddMember)))
	r.Mux.Handle("PUT /v1/orgs/{id}/members/{userId}", secured(http.HandlerFunc(h.HandleUpdateMember)))
	r.Mux.Handle("DELETE /v1/orgs/{id}/members/{userId}", secured(http.HandlerFunc(h.HandleRemoveMember)))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InvitationService: r.InvitationService}

	admin := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("POST /v1/invitations", admin(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/invitations", admin(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("DELETE /v1/invitations/{id}", admin(http.HandlerFunc(h.HandleRevoke)))

	// Accept and preview are public signup endpoints; limit them like
	// registration.
	r.Mux.Handle("POST /v1/invitations/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/invitations/token/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleGetByToken),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPreferences() {
	h := &PreferencesHandler{PreferencesService: r.PreferencesService}

	secured := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /v1/preferences", secured(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("PATCH /v1/preferences", secured(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/preferences", secured(http.HandlerFunc(h.HandleReset)))
	r.Mux.Handle("GET /v1/preferences/export", secured(http.HandlerFunc(h.HandleExport)))
	r.Mux.Handle("POST /v1/preferences/import", secured(http.HandlerFunc(h.HandleImport)))

	// Defaults are public; they leak nothing user-specific.
	r.Mux.Handle("GET /v1/preferences/defaults",
		httpx.Chain(http.HandlerFunc(h.HandleDefaults),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /v1/users/{id}/preferences",
		httpx.Chain(http.HandlerFunc(h.HandleGetForUser),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerBulk() {
	h := &BulkHandler{BulkService: r.BulkService}

	admin := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole("admin"),
			httpx.RateLimitByUser(httpx.StrictLimit),
		)
	}

	r.Mux.Handle("POST /v1/bulk/users", admin(http.HandlerFunc(h.HandleImport)))
	r.Mux.Handle("GET /v1/bulk/users", admin(http.HandlerFunc(h.HandleExport)))
	r.Mux.Handle("POST /v1/bulk/delete", admin(http.HandlerFunc(h.HandleDelete)))
	r.Mux.Handle("POST /v1/bulk/update-role", admin(http.HandlerFunc(h.HandleUpdateRole)))
}

func (r *Router) registerPasswordPolicy() {
	h := &PasswordPolicyHandler{Policy: r.UserService.Policy}

	r.Mux.Handle("GET /v1/password-policy",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
