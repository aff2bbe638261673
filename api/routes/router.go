package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rajivmenon/tailorbooks-backend/api/controllers"
	"github.com/rajivmenon/tailorbooks-backend/api/middleware"
	"github.com/rajivmenon/tailorbooks-backend/internal/catalog"
	"github.com/rajivmenon/tailorbooks-backend/internal/customers"
	"github.com/rajivmenon/tailorbooks-backend/internal/efficiency"
	"github.com/rajivmenon/tailorbooks-backend/internal/orders"
	"github.com/rajivmenon/tailorbooks-backend/internal/stock"
	"github.com/rajivmenon/tailorbooks-backend/pkg/config"
	"github.com/rajivmenon/tailorbooks-backend/pkg/logger"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Registry    *prometheus.Registry
	ReadyChecks http.HandlerFunc

	Catalog    *catalog.Repository
	Orders     orders.Service
	Stock      stock.Service
	Efficiency efficiency.Service
	Customers  customers.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
	)

	r.Get("/healthz", controllers.HealthLive(deps.Config))
	if deps.ReadyChecks != nil {
		r.Get("/healthz/ready", deps.ReadyChecks)
	}
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/patterns", controllers.CatalogPatterns(deps.Catalog, deps.Logger))
		r.Get("/fabrics", controllers.CatalogFabrics(deps.Catalog, deps.Logger))
		r.Get("/fabrics/{fabricId}/classification", controllers.FabricClassification(deps.Stock, deps.Logger))
		r.Get("/accessories", controllers.CatalogAccessories(deps.Catalog, deps.Logger))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.Orders, deps.Logger))
			r.Post("/", controllers.OrderCreate(deps.Orders, deps.Logger))
			r.Post("/estimate", controllers.OrderEstimate(deps.Orders, deps.Logger))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, deps.Logger))
			r.Post("/{orderId}/status", controllers.OrderTransition(deps.Orders, deps.Logger))
			r.Post("/{orderId}/advance", controllers.OrderAdvance(deps.Orders, deps.Logger))
		})

		r.Get("/inventory/health", controllers.InventoryHealth(deps.Stock, deps.Logger))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/efficiency", controllers.EfficiencyReport(deps.Efficiency, deps.Logger))
			r.Get("/customers", controllers.CustomerRankings(deps.Customers, deps.Logger))
		})
	})

	return r
}
