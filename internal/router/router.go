package router

import (
	"net/http"

	"calcio-stop/internal/handler"
	"calcio-stop/internal/middleware"
	"calcio-stop/internal/telemetry"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Products  *handler.ProductHandler
	Namesets  *handler.StockItemHandler
	Badges    *handler.StockItemHandler
	Teams     *handler.CatalogHandler
	KitTypes  *handler.CatalogHandler
	Leagues   *handler.CatalogHandler
	Sellers   *handler.CatalogHandler
	Orders    *handler.OrderHandler
	Sales     *handler.SaleHandler
	Inventory *handler.InventoryHandler

	ProductImages *handler.ImageHandler
	NamesetImages *handler.ImageHandler
	BadgeImages   *handler.ImageHandler

	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	mux.HandleFunc("GET /api/products", h.Products.GetAll)
	mux.HandleFunc("POST /api/products", h.Products.Create)
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)
	mux.HandleFunc("POST /api/products/{id}/stock", h.Products.AdjustStock)
	mux.HandleFunc("POST /api/products/{id}/restock", h.Products.Restock)
	mux.HandleFunc("POST /api/products/{id}/archive", h.Products.Archive)
	mux.HandleFunc("POST /api/products/{id}/restore", h.Products.Restore)
	mux.HandleFunc("DELETE /api/products/{id}", h.Products.Delete)

	stockItems(mux, "/api/namesets", h.Namesets)
	stockItems(mux, "/api/badges", h.Badges)

	images(mux, "/api/products", h.ProductImages)
	images(mux, "/api/namesets", h.NamesetImages)
	images(mux, "/api/badges", h.BadgeImages)

	catalogEntities(mux, "/api/teams", h.Teams)
	catalogEntities(mux, "/api/kit-types", h.KitTypes)
	catalogEntities(mux, "/api/leagues", h.Leagues)
	catalogEntities(mux, "/api/sellers", h.Sellers)

	mux.HandleFunc("GET /api/orders", h.Orders.List)
	mux.HandleFunc("POST /api/orders", h.Orders.Create)
	mux.HandleFunc("GET /api/orders/{id}", h.Orders.GetByID)
	mux.HandleFunc("PUT /api/orders/{id}", h.Orders.Update)
	mux.HandleFunc("DELETE /api/orders/{id}", h.Orders.Delete)
	mux.HandleFunc("POST /api/orders/{id}/status", h.Orders.Status)
	mux.HandleFunc("POST /api/orders/{id}/archive", h.Orders.Archive)
	mux.HandleFunc("POST /api/orders/{id}/unarchive", h.Orders.Unarchive)

	mux.HandleFunc("GET /api/sales", h.Sales.List)
	mux.HandleFunc("POST /api/sales", h.Sales.Create)
	mux.HandleFunc("GET /api/sales/{id}", h.Sales.GetByID)
	mux.HandleFunc("PUT /api/sales/{id}", h.Sales.Update)
	mux.HandleFunc("DELETE /api/sales/{id}", h.Sales.Delete)

	mux.HandleFunc("GET /api/returns", h.Sales.ListReturns)
	mux.HandleFunc("POST /api/returns", h.Sales.CreateReturn)
	mux.HandleFunc("DELETE /api/returns/{id}", h.Sales.DeleteReturn)

	mux.HandleFunc("GET /api/reservations", h.Sales.ListReservations)
	mux.HandleFunc("POST /api/reservations", h.Sales.CreateReservation)
	mux.HandleFunc("POST /api/reservations/{id}/cancel", h.Sales.CancelReservation)
	mux.HandleFunc("POST /api/reservations/{id}/fulfill", h.Sales.FulfillReservation)

	mux.HandleFunc("GET /api/inventory-logs", h.Inventory.History)
	mux.HandleFunc("GET /api/page-data", h.Inventory.PageData)

	// Apply middleware in order: otelhttp -> Recovery -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = telemetry.WithHTTPRoute(mux)
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = otelhttp.NewHandler(handler, "calcio-stop",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	)

	return handler
}

func stockItems(mux *http.ServeMux, base string, h *handler.StockItemHandler) {
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("GET "+base+"/{id}", h.GetByID)
	mux.HandleFunc("POST "+base+"/{id}/stock", h.AdjustStock)
	mux.HandleFunc("POST "+base+"/{id}/restock", h.Restock)
	mux.HandleFunc("POST "+base+"/{id}/archive", h.Archive)
	mux.HandleFunc("POST "+base+"/{id}/restore", h.Restore)
	mux.HandleFunc("DELETE "+base+"/{id}", h.Delete)
}

func catalogEntities(mux *http.ServeMux, base string, h *handler.CatalogHandler) {
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("POST "+base+"/{id}/archive", h.Archive)
	mux.HandleFunc("POST "+base+"/{id}/restore", h.Restore)
	mux.HandleFunc("DELETE "+base+"/{id}", h.Delete)
}

func images(mux *http.ServeMux, base string, h *handler.ImageHandler) {
	mux.HandleFunc("GET "+base+"/{id}/images", h.List)
	mux.HandleFunc("PUT "+base+"/{id}/images/{variant}", h.Upload)
}
