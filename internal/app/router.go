package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dongphonui/sigma-vie-shop/internal/auth"
	"github.com/dongphonui/sigma-vie-shop/internal/catalog"
	"github.com/dongphonui/sigma-vie-shop/internal/customers"
	"github.com/dongphonui/sigma-vie-shop/internal/inventory"
	"github.com/dongphonui/sigma-vie-shop/internal/observability"
	"github.com/dongphonui/sigma-vie-shop/internal/orders"
	"github.com/dongphonui/sigma-vie-shop/internal/reports"
	"github.com/dongphonui/sigma-vie-shop/internal/shared"
	"github.com/dongphonui/sigma-vie-shop/internal/syncer"
	"github.com/dongphonui/sigma-vie-shop/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	OrdersHandler    *orders.Handler
	InventoryHandler *inventory.Handler
	CustomersHandler *customers.Handler
	ReportsHandler   *reports.Handler
	SyncHandler      *syncer.Handler
	JobHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router for the admin console API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Route("/products", params.CatalogHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/customers", params.CustomersHandler.MountRoutes)
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.SyncHandler != nil {
			r.Route("/sync", params.SyncHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
