package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/flowency/kavostack/internal/backend/service"
	"github.com/flowency/kavostack/internal/backend/store"
	"github.com/flowency/kavostack/pkg/httpx"
	"github.com/flowency/kavostack/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	SessionService    *service.SessionService
	InvitationService *service.InvitationService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	sessions *service.SessionService,
	invitations *service.InvitationService,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:               http.NewServeMux(),
		buildVersion:      buildVersion,
		startTime:         time.Now(),
		logger:            logger,
		store:             st,
		SessionService:    sessions,
		InvitationService: invitations,
	}

	// Global chain: request logging first, then session resolution, then the
	// access gate. The gate sees every request before routing.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		SessionMiddleware(r.SessionService),
		GateMiddleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvitations()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /api/auth/login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{SessionService: r.SessionService}
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /api/auth/logout - lenient rate limit
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(LogoutHandler(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	acceptHandler := &InvitationAcceptHandler{InvitationService: r.InvitationService}
	lookupHandler := &InvitationLookupHandler{InvitationService: r.InvitationService}
	mintHandler := &InvitationMintHandler{InvitationService: r.InvitationService}

	// POST /api/invitations/{token}/accept - strict rate limit by IP
	// (public signup endpoint)
	r.Mux.Handle("POST /api/invitations/{token}/accept",
		httpx.Chain(acceptHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /api/invitations/{token} - moderate rate limit by IP (public
	// landing-page lookup)
	r.Mux.Handle("GET /api/invitations/{token}",
		httpx.Chain(lookupHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /api/clients/{id}/invitations - moderate rate limit by user
	// (admin operation; the handler enforces role and tenant guards)
	r.Mux.Handle("POST /api/clients/{id}/invitations",
		httpx.Chain(mintHandler,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
