package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/angelmondragon/miniapp-storefront/internal/shop"
	"github.com/angelmondragon/miniapp-storefront/internal/telegram"
	"github.com/angelmondragon/miniapp-storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubShopService struct {
	categories   []shop.CategoryDTO
	products     []shop.ProductDTO
	checkout     *shop.CheckoutResultDTO
	checkoutErr  error
	lastInput    shop.CheckoutInput
	lastCategory string
	reply        string
}

func (s *stubShopService) ListCategories(ctx context.Context) ([]shop.CategoryDTO, error) {
	return s.categories, nil
}

func (s *stubShopService) ListProducts(ctx context.Context, categoryID string) ([]shop.ProductDTO, error) {
	s.lastCategory = categoryID
	return s.products, nil
}

func (s *stubShopService) CreateCheckout(ctx context.Context, input shop.CheckoutInput) (*shop.CheckoutResultDTO, error) {
	s.lastInput = input
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return s.checkout, nil
}

func (s *stubShopService) Reply(ctx context.Context, message string) (string, error) {
	return s.reply, nil
}

func decodeData(t *testing.T, body []byte, dest any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func decodeError(t *testing.T, body []byte) (code, message string) {
	t.Helper()
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Error.Code, envelope.Error.Message
}

func TestListCategories(t *testing.T) {
	t.Parallel()

	svc := &stubShopService{categories: []shop.CategoryDTO{{ID: "tops", Name: "Tops"}}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)

	ListCategories(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var categories []shop.CategoryDTO
	decodeData(t, rec.Body.Bytes(), &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "Tops", categories[0].Name)
}

func TestListProductsPassesCategoryFilter(t *testing.T) {
	t.Parallel()

	svc := &stubShopService{products: []shop.ProductDTO{{
		ID:    "p-1",
		Name:  "Utility Vest",
		Price: decimal.RequireFromString("380"),
	}}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products?category_id=outerwear", nil)

	ListProducts(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "outerwear", svc.lastCategory)
	var products []shop.ProductDTO
	decodeData(t, rec.Body.Bytes(), &products)
	require.Len(t, products, 1)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("380")))
}

func TestCreateCheckout(t *testing.T) {
	t.Parallel()

	svc := &stubShopService{checkout: &shop.CheckoutResultDTO{
		OrderID:    "o-1",
		PaymentURL: "https://pay.example.com/session/o-1",
	}}
	body := `{"items":[{"product_id":"p-1","quantity":2}],"user_id":"u-9"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))

	CreateCheckout(svc, nil)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u-9", svc.lastInput.UserID)
	require.Len(t, svc.lastInput.Items, 1)
	assert.Equal(t, 2, svc.lastInput.Items[0].Quantity)

	var result shop.CheckoutResultDTO
	decodeData(t, rec.Body.Bytes(), &result)
	assert.Equal(t, "o-1", result.OrderID)
}

func TestCreateCheckoutRejectsEmptyItems(t *testing.T) {
	t.Parallel()

	svc := &stubShopService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"items":[]}`))

	CreateCheckout(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec.Body.Bytes())
	assert.Equal(t, string(pkgerrors.CodeValidation), code)
}

func TestCreateCheckoutSurfacesServiceError(t *testing.T) {
	t.Parallel()

	svc := &stubShopService{checkoutErr: pkgerrors.New(pkgerrors.CodeValidation, "unknown product ghost")}
	body := `{"items":[{"product_id":"ghost","quantity":1}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(body))

	CreateCheckout(svc, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	_, message := decodeError(t, rec.Body.Bytes())
	assert.Equal(t, "unknown product ghost", message)
}

func TestAssistantReply(t *testing.T) {
	t.Parallel()

	svc := &stubShopService{reply: "We ship worldwide."}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{"message":"shipping?"}`))

	AssistantReply(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out assistantResponse
	decodeData(t, rec.Body.Bytes(), &out)
	assert.Equal(t, "We ship worldwide.", out.Reply)
}

func TestAssistantReplyRequiresMessage(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{}`))

	AssistantReply(&stubShopService{}, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveTelegramUser(t *testing.T) {
	t.Parallel()

	const botToken = "12345:testtoken"
	cfg := config.TelegramConfig{BotToken: botToken, InitDataTTL: 0}

	values := url.Values{}
	values.Set("query_id", "q-1")
	values.Set("user", `{"id":99,"first_name":"Ada","username":"ada"}`)
	signed := telegram.SignInitData(values, botToken)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/telegram", nil)
	req.Header.Set(initDataHeader, signed)

	ResolveTelegramUser(cfg, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var user telegramUserResponse
	decodeData(t, rec.Body.Bytes(), &user)
	assert.Equal(t, "99", user.ID)
	assert.Equal(t, "ada", user.Username)
}

func TestResolveTelegramUserRejectsBadSignature(t *testing.T) {
	t.Parallel()

	cfg := config.TelegramConfig{BotToken: "12345:testtoken"}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user/telegram", nil)
	req.Header.Set(initDataHeader, "user=%7B%22id%22%3A1%7D&hash=deadbeef")

	ResolveTelegramUser(cfg, nil)(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)

	HealthLive(cfg)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-MiniShop-Env"))
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error {
	return assert.AnError
}

func TestHealthReadyReportsDependencyFailure(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)

	HealthReady(cfg, nil, failingPinger{})(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	code, _ := decodeError(t, rec.Body.Bytes())
	assert.Equal(t, string(pkgerrors.CodeDependency), code)
}
