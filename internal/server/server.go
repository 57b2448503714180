package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/doimih/mini-crm/internal/audit"
	"github.com/doimih/mini-crm/internal/config"
	appmw "github.com/doimih/mini-crm/internal/middleware"
	"github.com/doimih/mini-crm/internal/modules/emailconfig"
	"github.com/doimih/mini-crm/internal/modules/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Config          *config.Config
	Logger          *slog.Logger
	UserService     user.Service
	UserRepo        user.Repository
	EmailConfigRepo emailconfig.Repository
	AuditRepo       audit.Repository
	RateLimiter     *appmw.RateLimiter
}

// New creates and configures the router: chi request middleware, the huma
// API mounted under the /mini-crm/api prefix, and the access-gate wiring
// for protected and role-gated routes.
func New(d Deps) chi.Router {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
	router.Get("/health", healthHandler)
	router.Get("/mini-crm/api/health", healthHandler)

	router.Route("/mini-crm/api", func(r chi.Router) {
		apiConfig := huma.DefaultConfig("mini-crm API", "1.0.0")
		apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			"bearer": {
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
			},
		}
		api := humachi.New(r, apiConfig)

		gate := appmw.NewAccessGate(d.Config.JWTSecret, d.UserRepo, d.Logger)
		superadmin := huma.Middlewares{
			gate.Authenticate(),
			appmw.RequireRoles(user.RoleSuperadmin),
		}

		userHandler := user.NewHandler(d.UserService, d.Logger)
		userHandler.RegisterRoutes(api, user.RouteMiddlewares{
			Authenticated: huma.Middlewares{gate.Authenticate()},
			SessionOnly:   huma.Middlewares{gate.AuthenticateUnverified()},
			Superadmin:    superadmin,
			Limit:         d.RateLimiter.Limit,
		})

		emailConfigHandler := emailconfig.NewHandler(d.EmailConfigRepo, d.Logger)
		emailConfigHandler.RegisterRoutes(api, superadmin)

		auditHandler := audit.NewHandler(d.AuditRepo, d.Logger)
		auditHandler.RegisterRoutes(api, superadmin)
	})

	return router
}
