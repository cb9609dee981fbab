package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/miniapp-storefront/internal/shop"
	"github.com/angelmondragon/miniapp-storefront/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubShop struct{}

func (stubShop) ListCategories(ctx context.Context) ([]shop.CategoryDTO, error) {
	return []shop.CategoryDTO{{ID: "tops", Name: "Tops"}}, nil
}

func (stubShop) ListProducts(ctx context.Context, categoryID string) ([]shop.ProductDTO, error) {
	return []shop.ProductDTO{{ID: "p-1", Name: "Structured T-Shirt", Price: decimal.RequireFromString("180"), CategoryID: "tops"}}, nil
}

func (stubShop) CreateCheckout(ctx context.Context, input shop.CheckoutInput) (*shop.CheckoutResultDTO, error) {
	return &shop.CheckoutResultDTO{OrderID: "o-1", PaymentURL: "https://pay.example.com/session/o-1"}, nil
}

func (stubShop) Reply(ctx context.Context, message string) (string, error) {
	return "ok", nil
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(cfg, nil, okPinger{}, stubShop{}, prometheus.NewRegistry())
}

func TestRouterServesCatalogAndHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/api/categories", "/api/products"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterSetsRequestIDHeader(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouterCheckoutRoute(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"items":[{"product_id":"p-1","quantity":1}]}`)
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/checkout", body))

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouterWithoutRegistry(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	router := NewRouter(cfg, nil, okPinger{}, stubShop{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterExposesMetricsAfterTraffic(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
