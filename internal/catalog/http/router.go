package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/service"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/httpx"
	"github.com/cataloghq/catalog/pkg/slogx"

	_ "github.com/cataloghq/catalog/api/catalog" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	registry store.Tokens

	AuthService     *service.AuthService
	UserService     *service.UserService
	RoleService     *service.RoleService
	CategoryService *service.CategoryService
	ProductService  *service.ProductService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	registry store.Tokens,
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

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerRoles()
	r.registerCategories()
	r.registerProducts()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Catalog Service API
//	@version		0.1.0
//	@description	Role-based product catalog backend with JWT session management.
//	@description
//	@description				Access tokens are EdDSA-signed JWTs tracked in a server-side registry,
//	@description				so logout and re-login revoke earlier tokens before they expire.
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
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// POST /auth/login - strict rate limit by IP to slow brute force
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - moderate rate limit; revocation needs no principal,
	// the token itself identifies the session
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// GET /users/me - any authenticated user
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.AppRoles()...),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /users and GET /users - admin only
	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RoleService: r.RoleService}

	r.Mux.Handle("POST /v1/roles",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/roles",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/roles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/roles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/roles/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCategories() {
	h := &CategoriesHandler{CategoryService: r.CategoryService}

	// Reads are open to every authenticated role, writes need admin or manager.
	read := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.AppRoles()...),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}
	write := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin, domain.RoleManager),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/categories", read(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/categories/{id}", read(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("POST /v1/categories", write(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("PUT /v1/categories/{id}", write(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/categories/{id}", write(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerProducts() {
	h := &ProductsHandler{ProductService: r.ProductService}

	read := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.AppRoles()...),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}
	write := func(next http.Handler) http.Handler {
		return httpx.Chain(next,
			AuthnMiddleware(r.AuthService),
			RequireRole(domain.RoleAdmin, domain.RoleManager),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /v1/products", read(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("GET /v1/products/{id}", read(http.HandlerFunc(h.HandleGet)))
	r.Mux.Handle("POST /v1/products", write(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("PUT /v1/products/{id}", write(http.HandlerFunc(h.HandleUpdate)))
	r.Mux.Handle("DELETE /v1/products/{id}", write(http.HandlerFunc(h.HandleDelete)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.registry),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /version",
		httpx.Chain(VersionHandler(r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
