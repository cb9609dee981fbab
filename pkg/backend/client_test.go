package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL)
	require.NoError(t, err)
	return client
}

func writeData(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"data": data}))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient("  ")
	require.Error(t, err)
}

func TestListCategories(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/categories", r.URL.Path)
		writeData(t, w, []Category{{ID: "c1", Name: "Outerwear"}, {ID: "c2", Name: "Tops"}})
	}))

	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Outerwear", categories[0].Name)
}

func TestListProductsPassesCategoryFilter(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "c2", r.URL.Query().Get("category_id"))
		writeData(t, w, []Product{{ID: "p1", Name: "Structured T-Shirt", Price: decimal.RequireFromString("180"), CategoryID: "c2"}})
	}))

	products, err := client.ListProducts(context.Background(), "c2")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("180")))
}

func TestListProductsOmitsEmptyFilter(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("category_id"))
		writeData(t, w, []Product{})
	}))

	_, err := client.ListProducts(context.Background(), "")
	require.NoError(t, err)
}

func TestCreateCheckoutSubmitsItems(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items  []CheckoutItem `json:"items"`
			UserID string         `json:"user_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Items, 1)
		assert.Equal(t, "u-7", body.UserID)
		writeData(t, w, CheckoutResult{OrderID: "o-1", PaymentURL: "https://pay.example.com/session/o-1"})
	}))

	items := []CheckoutItem{{ProductID: "p1", Name: "Utility Vest", UnitPrice: decimal.RequireFromString("380"), Quantity: 1}}
	result, err := client.CreateCheckout(context.Background(), items, "u-7")
	require.NoError(t, err)
	assert.Equal(t, "o-1", result.OrderID)
	assert.Contains(t, result.PaymentURL, "o-1")
}

func TestCreateCheckoutRejectsEmptyItems(t *testing.T) {
	t.Parallel()

	client, err := NewClient("http://localhost:1")
	require.NoError(t, err)

	_, err = client.CreateCheckout(context.Background(), nil, "")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateCheckoutMissingPaymentURL(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, CheckoutResult{OrderID: "o-1"})
	}))

	items := []CheckoutItem{{ProductID: "p1", Name: "X", UnitPrice: decimal.Zero, Quantity: 1}}
	_, err := client.CreateCheckout(context.Background(), items, "")
	require.Error(t, err)
}

func TestBackendFailureWrapsDependencyError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))

	_, err := client.ListCategories(context.Background())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}

func TestAssistantReply(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "where is my order", body.Message)
		writeData(t, w, map[string]string{"reply": "Let me check that for you."})
	}))

	reply, err := client.AssistantReply(context.Background(), "where is my order")
	require.NoError(t, err)
	assert.Equal(t, "Let me check that for you.", reply)
}

func TestResolveTelegramUserSendsHeader(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "query=string", r.Header.Get("X-Telegram-Init-Data"))
		writeData(t, w, User{ID: "42", Username: "ada"})
	}))

	user, err := client.ResolveTelegramUser(context.Background(), "query=string")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "42", user.ID)
}

func TestResolveTelegramUserNullData(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, nil)
	}))

	user, err := client.ResolveTelegramUser(context.Background(), "token")
	require.NoError(t, err)
	assert.Nil(t, user)
}
