package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omexplus/dropship-backend/api/controllers"
	"github.com/omexplus/dropship-backend/api/middleware"
	"github.com/omexplus/dropship-backend/internal/catalog"
	"github.com/omexplus/dropship-backend/internal/orders"
	"github.com/omexplus/dropship-backend/internal/supplierorders"
	"github.com/omexplus/dropship-backend/internal/suppliers"
	"github.com/omexplus/dropship-backend/pkg/config"
	"github.com/omexplus/dropship-backend/pkg/logger"
)

// NewRouter wires the admin API. All business routes sit behind bearer auth;
// health and metrics stay open for the load balancer and scraper.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database controllers.Pinger,
	cache controllers.Pinger,
	registry *prometheus.Registry,
	supplierService suppliers.Service,
	catalogService catalog.Service,
	orderService orders.Service,
	supplierOrderService supplierorders.Service,
	relayService controllers.RelayService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, database, cache))
	})

	metricsHandler := promhttp.Handler()
	if registry != nil {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, logg))

		r.Route("/suppliers", func(r chi.Router) {
			r.Post("/", controllers.SupplierCreate(supplierService, logg))
			r.Get("/", controllers.SupplierList(supplierService, logg))

			r.Route("/{supplierId}", func(r chi.Router) {
				r.Get("/", controllers.SupplierDetail(supplierService, logg))
				r.Patch("/", controllers.SupplierUpdate(supplierService, logg))
				r.Delete("/", controllers.SupplierDelete(supplierService, logg))
				r.Post("/sync", controllers.SupplierCatalogSync(catalogService, logg))

				r.Post("/products", controllers.SupplierProductLink(catalogService, logg))
				r.Get("/products", controllers.SupplierProductList(catalogService, logg))
			})
		})

		r.Get("/products/{productId}/suppliers", controllers.ProductSupplierList(catalogService, logg))

		r.Route("/supplier-products/{linkId}", func(r chi.Router) {
			r.Get("/", controllers.SupplierProductDetail(catalogService, logg))
			r.Patch("/", controllers.SupplierProductUpdate(catalogService, logg))
			r.Delete("/", controllers.SupplierProductUnlink(catalogService, logg))
		})

		r.Route("/supplier-orders", func(r chi.Router) {
			r.Post("/", controllers.SupplierOrderCreate(supplierOrderService, logg))
			r.Get("/", controllers.SupplierOrderList(supplierOrderService, logg))

			r.Route("/{supplierOrderId}", func(r chi.Router) {
				r.Get("/", controllers.SupplierOrderDetail(supplierOrderService, logg))
				r.Post("/send", controllers.SupplierOrderSend(supplierOrderService, logg))
				r.Post("/check-status", controllers.SupplierOrderCheckStatus(supplierOrderService, logg))
				r.Post("/cancel", controllers.SupplierOrderCancel(supplierOrderService, logg))
				r.Patch("/tracking", controllers.SupplierOrderUpdateTracking(supplierOrderService, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(orderService, logg))
			r.Get("/", controllers.OrderList(orderService, logg))

			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(orderService, logg))
				r.Get("/supplier-orders", controllers.OrderSupplierOrders(supplierOrderService, logg))
				r.Post("/relay", controllers.OrderRelay(relayService, logg))
			})
		})
	})

	return r
}
