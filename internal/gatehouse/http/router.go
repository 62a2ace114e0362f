package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hwylde/gatehouse/internal/gatehouse/secrets"
	"github.com/hwylde/gatehouse/internal/gatehouse/service"
	"github.com/hwylde/gatehouse/internal/gatehouse/store"
	"github.com/hwylde/gatehouse/pkg/httpx"
	"github.com/hwylde/gatehouse/pkg/slogx"

	_ "github.com/hwylde/gatehouse/api/gatehouse" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	kv      store.KV
	secrets secrets.Store
	Auth    *service.AuthService
}

func NewRouter(
	auth *service.AuthService,
	kv store.KV,
	sec secrets.Store,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		kv:           kv,
		secrets:      sec,
		Auth:         auth,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerCron()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Gatehouse Authentication API
//	@version		0.1.0
//	@description	Multi-role authentication for the editorial site: credential verification,
//	@description	HMAC-signed session tokens, admin step-up for destructive operations, and
//	@description	server-side revocation.
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
//	@description				Session token (or the cron secret for cron routes). Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /v1/auth/{role}/verify - strict limit, this is the brute-force surface.
	// The service-level (role, ip) lockout still applies underneath.
	verifyHandler := &VerifyHandler{Auth: r.Auth}
	r.Mux.Handle("POST /v1/auth/{role}/verify",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /v1/auth/step-up - strict limit (password re-verification)
	stepUpHandler := &StepUpHandler{Auth: r.Auth}
	r.Mux.Handle("POST /v1/auth/step-up",
		httpx.Chain(stepUpHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	sessionHandler := &SessionHandler{Auth: r.Auth}
	r.Mux.Handle("GET /v1/auth/session",
		httpx.Chain(http.HandlerFunc(sessionHandler.HandleIntrospect),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(sessionHandler.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	revokeHandler := &RevokeHandler{Auth: r.Auth}
	r.Mux.Handle("POST /v1/auth/revoke",
		httpx.Chain(revokeHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCron() {
	cronHandler := &CronPingHandler{Auth: r.Auth, KV: r.kv}
	r.Mux.Handle("POST /v1/cron/ping",
		httpx.Chain(cronHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.kv, r.secrets),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
