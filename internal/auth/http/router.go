package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/metrics"
	"github.com/aussiebroadwan/sessiond/internal/auth/service"
	"github.com/aussiebroadwan/sessiond/internal/auth/store"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"

	_ "github.com/aussiebroadwan/sessiond/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	registry     *prometheus.Registry

	Cookies    httpx.CookieOptions
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	AuthService    *service.AuthService
	AccessService  *service.AccessService
	RefreshService *service.RefreshService
	SessionService *service.SessionService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		registry:     registry,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.HTTPMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSessions()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			sessiond Authentication Service API
//	@version		0.1.0
//	@description	Session-based authentication with short-lived HS256 access tokens bound to a
//	@description	per-login secret cookie, and single-use rotating refresh secrets.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/sessiond
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token, "Bearer {token}". Must be sent with the __Secure-Fgp1 cookie.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authHandler() *AuthHandler {
	return &AuthHandler{
		Auth:       r.AuthService,
		Refresh:    r.RefreshService,
		Cookies:    r.Cookies,
		AccessTTL:  r.AccessTTL,
		RefreshTTL: r.RefreshTTL,
	}
}

func (r *Router) registerAuth() {
	h := r.authHandler()

	// POST /sign-up - strict rate limit by IP
	r.Mux.Handle("POST /v1/auth/sign-up",
		httpx.Chain(http.HandlerFunc(h.HandleSignUp),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict, keyed by IP + email to slow down credential stuffing
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /refresh - strict rate limit by IP
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.AccessService),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /password - strict by user, it verifies a password
	r.Mux.Handle("POST /v1/auth/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.AccessService),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionsHandler{Sessions: r.SessionService}

	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.AccessService),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.AccessService),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/auth/sessions", securedList)
	r.Mux.Handle("DELETE /v1/auth/sessions/{id}", securedDelete)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Auth: r.AuthService, Sessions: r.SessionService}

	admins := []string{domain.RoleAdmin.String(), domain.RoleSuperAdmin.String()}

	securedList := httpx.Chain(http.HandlerFunc(h.HandleListUserSessions),
		httpx.AuthnMiddleware(r.AccessService),
		httpx.RequireRole(admins...),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	securedEnd := httpx.Chain(http.HandlerFunc(h.HandleEndUserSessions),
		httpx.AuthnMiddleware(r.AccessService),
		httpx.RequireRole(admins...),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	// Role changes are reserved for super admins.
	securedRole := httpx.Chain(http.HandlerFunc(h.HandleSetRole),
		httpx.AuthnMiddleware(r.AccessService),
		httpx.RequireRole(domain.RoleSuperAdmin.String()),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/admin/users/{id}/sessions", securedList)
	r.Mux.Handle("DELETE /v1/admin/users/{id}/sessions", securedEnd)
	r.Mux.Handle("PUT /v1/admin/users/{id}/role", securedRole)
}

func (r *Router) registerSystem() {
	var signer ReadinessChecker
	if r.AccessService != nil {
		signer, _ = r.AccessService.Verifier.(ReadinessChecker)
	}

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
