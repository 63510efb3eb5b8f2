// Package app assembles the storefront HTTP surface: public catalog and
// cart routes plus the admin-gated mutations, with the shared middleware
// stack around them.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront/internal/admin"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Gate    *admin.Gate
	Catalog *catalog.Server
	Cart    *cart.Server

	AllowedOrigins []string
}

const (
	readyTimeout = 1 * time.Second

	adminLimitPerMin = 30
	limitWindow      = 60 * time.Second
)

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	metricsOn := httpDeps.MetricsEnabled && httpDeps.Registry != nil
	if httpDeps.MetricsEnabled && httpDeps.Registry == nil && httpDeps.Log != nil {
		httpDeps.Log.Warn("metrics enabled but Registry is nil")
	}

	setupMiddleware(r, deps, httpDeps, metricsOn)
	setupRoutes(r, deps, httpDeps, metricsOn)

	return r
}

func setupMiddleware(r *chi.Mux, deps Deps, httpDeps HTTPDeps, metricsOn bool) {
	r.Use(kit.RequestID)
	r.Use(kit.Recoverer(httpDeps.Log))
	r.Use(kit.Logging(httpDeps.Log))

	// Requests without an Origin header (same-origin, curl) pass untouched.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", admin.HeaderKey},
		MaxAge:         300,
	}))

	if metricsOn {
		metrics := kit.NewMetrics(httpDeps.Registry)
		r.Use(metrics.Middleware(httpDeps.Service, kit.ChiRoutePatternOrPath))
	}
}

func setupRoutes(r *chi.Mux, deps Deps, httpDeps HTTPDeps, metricsOn bool) {
	adminLimiter := kit.NewIPRateLimiter(adminLimitPerMin, limitWindow)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/cart", deps.Cart.Routes())

		api.Route("/admin", func(ar chi.Router) {
			ar.Use(adminLimiter.Middleware)
			ar.Use(deps.Gate.RequireKey)
			ar.Mount("/", deps.Catalog.AdminRoutes())
		})

		api.Mount("/", deps.Catalog.Routes())
	})

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	if metricsOn {
		r.With(kit.MetricsAuth(httpDeps.MetricsToken)).Handle(
			"/metrics",
			promhttp.HandlerFor(httpDeps.Registry, promhttp.HandlerOpts{}),
		)
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Catalog.Store.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: products", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "products not ready", nil)
			return
		}

		if err := deps.Cart.Store.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed: cart", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "cart not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
