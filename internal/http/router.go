package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/pkg/httpx"
	"github.com/hireline/hireline/pkg/jwtx"
	"github.com/hireline/hireline/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     *jwtx.HS256
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// Dev exposes error detail text in responses.
	Dev bool
	// FrontendURL is where browser flows land after OAuth.
	FrontendURL string
	Cookies     *CookieWriter

	Users        *service.UserService
	Tokens       *service.TokenService
	OAuth        *service.OAuthCoordinator
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Analytics    *service.AnalyticsService

	// Limiter instances, one per tier, injected so tests can swap them.
	strict   *httpx.RateLimiter
	moderate *httpx.RateLimiter
	lenient  *httpx.RateLimiter
	public   *httpx.RateLimiter
}

func NewRouter(
	verifier *jwtx.HS256,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		Cookies:      &CookieWriter{},

		strict:   httpx.NewRateLimiter(httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}),
		moderate: httpx.NewRateLimiter(httpx.RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 10}),
		lenient:  httpx.NewRateLimiter(httpx.RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 20}),
		public:   httpx.NewRateLimiter(httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 100}),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerOAuth()
	r.registerJobs()
	r.registerApplications()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, httpx.DefaultCredentialSources()...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Users:   r.Users,
		Tokens:  r.Tokens,
		Cookies: r.Cookies,
		Dev:     r.Dev,
	}

	// Credential endpoints take authentication attempts; strict limit by IP.
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			r.strict.ByIP(),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			r.strict.ByIP(),
		),
	)

	// Refresh is called automatically by clients; moderate limit by IP.
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			r.moderate.ByIP(),
		),
	)

	r.Mux.Handle("GET /api/auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleProfile),
			r.authn(),
			r.lenient.ByUser(),
		),
	)
}

func (r *Router) registerOAuth() {
	h := &GoogleOAuthHandler{
		OAuth:       r.OAuth,
		Cookies:     r.Cookies,
		FrontendURL: r.FrontendURL,
		Dev:         r.Dev,
	}

	r.Mux.Handle("GET /api/auth/google/start",
		httpx.Chain(http.HandlerFunc(h.HandleStart),
			r.moderate.ByIP(),
		),
	)
	r.Mux.Handle("GET /api/auth/google/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			r.moderate.ByIP(),
		),
	)
}

func (r *Router) registerJobs() {
	h := &JobsHandler{Jobs: r.Jobs, Dev: r.Dev}

	// Browsing is public; high limit by IP.
	r.Mux.Handle("GET /api/jobs",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.public.ByIP(),
		),
	)
	r.Mux.Handle("GET /api/jobs/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.public.ByIP(),
		),
	)

	// Writes are employer or admin only.
	write := func(next http.HandlerFunc) http.Handler {
		return httpx.Chain(next,
			r.authn(),
			httpx.RequireRole(domain.RoleEmployer, domain.RoleAdmin),
			r.moderate.ByUser(),
		)
	}
	r.Mux.Handle("POST /api/jobs", write(h.HandleCreate))
	r.Mux.Handle("PUT /api/jobs/{id}", write(h.HandleUpdate))
	r.Mux.Handle("DELETE /api/jobs/{id}", write(h.HandleDelete))
}

func (r *Router) registerApplications() {
	h := &ApplicationsHandler{Applications: r.Applications, Dev: r.Dev}

	r.Mux.Handle("POST /api/jobs/{id}/applications",
		httpx.Chain(http.HandlerFunc(h.HandleApply),
			r.authn(),
			httpx.RequireRole(domain.RoleEmployee),
			r.moderate.ByUser(),
		),
	)
	r.Mux.Handle("GET /api/jobs/{id}/applications",
		httpx.Chain(http.HandlerFunc(h.HandleListForJob),
			r.authn(),
			httpx.RequireRole(domain.RoleEmployer, domain.RoleAdmin),
			r.lenient.ByUser(),
		),
	)
	r.Mux.Handle("GET /api/applications/mine",
		httpx.Chain(http.HandlerFunc(h.HandleMine),
			r.authn(),
			r.lenient.ByUser(),
		),
	)
	r.Mux.Handle("PATCH /api/applications/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateStatus),
			r.authn(),
			httpx.RequireRole(domain.RoleEmployer, domain.RoleAdmin),
			r.moderate.ByUser(),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Analytics: r.Analytics, Dev: r.Dev}

	r.Mux.Handle("GET /api/admin/stats",
		httpx.Chain(http.HandlerFunc(h.HandleStats),
			r.authn(),
			httpx.RequireRole(domain.RoleAdmin),
			r.moderate.ByUser(),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring systems may poll frequently; lenient limits.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			r.lenient.ByIP(),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			r.lenient.ByIP(),
		),
	)
}
