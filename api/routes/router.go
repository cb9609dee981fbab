package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/miniapp-storefront/api/controllers"
	"github.com/angelmondragon/miniapp-storefront/api/middleware"
	"github.com/angelmondragon/miniapp-storefront/internal/shop"
	"github.com/angelmondragon/miniapp-storefront/pkg/config"
	"github.com/angelmondragon/miniapp-storefront/pkg/db"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
	"github.com/angelmondragon/miniapp-storefront/pkg/metrics"
)

// NewRouter assembles the storefront API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	shopService shop.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	// A nil *Registry must not reach NewHTTPMetrics through the Registerer
	// interface, where it would no longer compare equal to nil.
	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", controllers.ListCategories(shopService, logg))
		r.Get("/products", controllers.ListProducts(shopService, logg))
		r.Post("/checkout", controllers.CreateCheckout(shopService, logg))
		r.Post("/assistant", controllers.AssistantReply(shopService, logg))
		r.Post("/user/telegram", controllers.ResolveTelegramUser(cfg.Telegram, logg))
	})

	return r
}
