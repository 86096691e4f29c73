package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	docs "github.com/aussiebroadwan/accounts/api/accounts" // Swagger docs
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// Options configures the router's global behaviour.
type Options struct {
	APIPrefix    string
	ProjectName  string
	BuildVersion string
	CORSOrigins  []string

	// Limiter guards every route. Nil disables the global limiter.
	Limiter httpx.Admitter
	// ClientKey identifies the caller for both limiters. Defaults to the peer address.
	ClientKey httpx.KeyExtractor
	// LoginLimit is the token bucket applied per client and username on POST /login.
	LoginLimit httpx.RateLimitConfig

	// Now is the limiter clock. Defaults to time.Now.
	Now func() time.Time
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	opts      Options
	prefix    string
	startTime time.Time
	logger    *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	UserService *service.UserService
	MFAService  *service.MFAService
}

func NewRouter(opts Options, st store.Store, logger *slog.Logger) *Router {
	if opts.ClientKey == nil {
		opts.ClientKey = httpx.IPKeyExtractor
	}
	if opts.LoginLimit.RequestsPerWindow == 0 {
		opts.LoginLimit = httpx.StrictLimit
	}

	r := &Router{
		Mux:       http.NewServeMux(),
		opts:      opts,
		prefix:    normalizePrefix(opts.APIPrefix),
		startTime: time.Now(),
		store:     st,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover,
		httpx.ProcessTime,
	}
	// The limiter sits outside CORS: rs/cors answers preflights without
	// calling the next handler, and those must still be counted.
	if opts.Limiter != nil {
		r.middlewares = append(r.middlewares,
			httpx.SlidingWindowMiddleware(opts.Limiter, opts.ClientKey, opts.Now),
		)
	}
	r.middlewares = append(r.middlewares, corsMiddleware(opts.CORSOrigins))

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerAdmin()
	r.registerMFA()
	r.registerSystem()

	docs.SwaggerInfo.BasePath = r.prefix
	if r.opts.ProjectName != "" {
		docs.SwaggerInfo.Title = r.opts.ProjectName
	}
	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	r.handler = httpx.Chain(r.Mux, r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Accounts API
//	@version					0.1.0
//	@description				User registration, password login and role checks. Access tokens are HMAC-signed JWTs.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token from /login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h := r.handler
	if h == nil {
		h = httpx.Chain(r.Mux, r.middlewares...)
	}
	h.ServeHTTP(w, req)
}

func (r *Router) route(method, path string) string {
	return method + " " + r.prefix + path
}

func (r *Router) registerAuth() {
	// POST /login - strict token bucket per client and username on top of the global window.
	// The limiter parses the form, so the body cap goes first.
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle(r.route(http.MethodPost, "/login"),
		httpx.Chain(loginHandler,
			httpx.MaxBytes(maxBodyBytes),
			httpx.RateLimitByIPAndFormField(r.opts.LoginLimit, r.opts.ClientKey, "username"),
		),
	)

	registerHandler := &RegisterHandler{UserService: r.UserService}
	r.Mux.Handle(r.route(http.MethodPost, "/register"), registerHandler)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	active := r.authenticated(service.RequireActive)

	r.Mux.Handle(r.route(http.MethodGet, "/users/me"),
		httpx.Chain(http.HandlerFunc(h.HandleGetMe), active))
	r.Mux.Handle(r.route(http.MethodPut, "/users/me"),
		httpx.Chain(http.HandlerFunc(h.HandleUpdateMe), active))
}

func (r *Router) registerAdmin() {
	h := &UsersHandler{UserService: r.UserService}

	// RequireAdmin checks activity itself; an inactive admin never gets through
	admin := r.authenticated(service.RequireAdmin)

	r.Mux.Handle(r.route(http.MethodGet, "/users"),
		httpx.Chain(http.HandlerFunc(h.HandleList), admin))
	r.Mux.Handle(r.route(http.MethodGet, "/users/{id}"),
		httpx.Chain(http.HandlerFunc(h.HandleGet), admin))
	r.Mux.Handle(r.route(http.MethodPut, "/users/{id}/admin"),
		httpx.Chain(http.HandlerFunc(h.HandleSetAdmin), admin))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	active := r.authenticated(service.RequireActive)

	r.Mux.Handle(r.route(http.MethodPost, "/users/me/totp"),
		httpx.Chain(http.HandlerFunc(h.HandleEnroll), active))
	r.Mux.Handle(r.route(http.MethodPost, "/users/me/totp/verify"),
		httpx.Chain(http.HandlerFunc(h.HandleVerify), active))
	r.Mux.Handle(r.route(http.MethodDelete, "/users/me/totp"),
		httpx.Chain(http.HandlerFunc(h.HandleDisable), active))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /{$}", RootHandler(r.opts.ProjectName))
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.opts.BuildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.opts.BuildVersion, r.store))
}

// authenticated resolves the bearer token to a user, runs gates in order and
// stores the result in the request context.
func (r *Router) authenticated(gates ...service.Gate) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token, ok := bearerToken(req)
			if !ok {
				accountsdk.ErrNotAuthenticated.WriteError(w)
				return
			}

			user, err := r.AuthService.ResolveUser(req.Context(), token)
			if err != nil {
				writeServiceError(w, req, err)
				return
			}

			for _, gate := range gates {
				if user, err = gate(user); err != nil {
					writeServiceError(w, req, err)
					return
				}
			}

			ctx := slogx.With(withUser(req.Context(), user), "user_id", user.ID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func corsMiddleware(origins []string) httpx.Middleware {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
			break
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", slogx.RequestIDHeader},
		ExposedHeaders: []string{
			httpx.HeaderRateLimitLimit,
			httpx.HeaderRateLimitRemaining,
			httpx.HeaderProcessTime,
			slogx.RequestIDHeader,
			HeaderTotalCount,
			"Retry-After",
		},
		// Browsers reject credentials alongside a wildcard origin.
		AllowCredentials: !wildcard,
	})
	return c.Handler
}

func normalizePrefix(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
