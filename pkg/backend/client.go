// Package backend is the HTTP client for the storefront API: catalog reads,
// checkout submission, assistant replies and telegram user resolution.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	defaultTimeout           = 10 * time.Second
	initDataHeader           = "X-Telegram-Init-Data"
	errorBodyReadLimit int64 = 1024
)

var errBaseURLRequired = errors.New("backend base url is required")

// Client talks to the storefront backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the backend client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Category mirrors the catalog's category payload.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Product mirrors the catalog's product payload.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Image      string          `json:"image,omitempty"`
	CategoryID string          `json:"category_id"`
}

// CheckoutItem is one cart line submitted at checkout.
type CheckoutItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// CheckoutResult carries the payment handoff returned by the backend.
type CheckoutResult struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

// User is the profile resolved from telegram init data.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// ListCategories fetches the ordered category list.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.get(ctx, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProducts fetches products, server-side filtered when categoryID is
// non-empty.
func (c *Client) ListProducts(ctx context.Context, categoryID string) ([]Product, error) {
	var query url.Values
	if categoryID != "" {
		query = url.Values{"category_id": []string{categoryID}}
	}
	var out []Product
	if err := c.get(ctx, "/api/products", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type checkoutRequest struct {
	Items  []CheckoutItem `json:"items"`
	UserID string         `json:"user_id,omitempty"`
}

// CreateCheckout submits the full cart snapshot in a single request.
func (c *Client) CreateCheckout(ctx context.Context, items []CheckoutItem, userID string) (*CheckoutResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}
	var out CheckoutResult
	if err := c.post(ctx, "/api/checkout", checkoutRequest{Items: items, UserID: userID}, nil, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.PaymentURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout response missing payment url")
	}
	return &out, nil
}

type assistantRequest struct {
	Message string `json:"message"`
}

type assistantResponse struct {
	Reply string `json:"reply"`
}

// AssistantReply forwards the user's free-text message and returns the reply.
func (c *Client) AssistantReply(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	var out assistantResponse
	if err := c.post(ctx, "/api/assistant", assistantRequest{Message: message}, nil, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// ResolveTelegramUser exchanges the opaque init-data token for a profile.
// A nil user with nil error means the backend had nothing for this token.
func (c *Client) ResolveTelegramUser(ctx context.Context, initData string) (*User, error) {
	if strings.TrimSpace(initData) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "init data is required")
	}
	headers := http.Header{initDataHeader: []string{initData}}
	var out *User
	if err := c.post(ctx, "/api/user/telegram", nil, headers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	return c.do(req, dest)
}

func (c *Client) post(ctx context.Context, path string, body any, headers http.Header, dest any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Set(key, value)
		}
	}
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"backend request failed",
		)
	}

	if dest == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}
