package checkout

import (
	"context"
	"testing"

	"github.com/angelmondragon/miniapp-storefront/internal/cart"
	"github.com/angelmondragon/miniapp-storefront/internal/storage"
	"github.com/angelmondragon/miniapp-storefront/internal/telegram"
	"github.com/angelmondragon/miniapp-storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	calls    int
	items    []backend.CheckoutItem
	userID   string
	result   *backend.CheckoutResult
	err      error
	observed State
	orch     *Orchestrator
}

func (s *stubGateway) CreateCheckout(ctx context.Context, items []backend.CheckoutItem, userID string) (*backend.CheckoutResult, error) {
	s.calls++
	s.items = items
	s.userID = userID
	if s.orch != nil {
		s.observed = s.orch.State()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubNotifier struct {
	messages []string
}

func (s *stubNotifier) Notify(ctx context.Context, message string) {
	s.messages = append(s.messages, message)
}

type recordingBridge struct {
	telegram.Noop
	notifications []telegram.NotificationType
	opened        []string
}

func (r *recordingBridge) HapticNotification(kind telegram.NotificationType) {
	r.notifications = append(r.notifications, kind)
}

func (r *recordingBridge) OpenLink(url string) {
	r.opened = append(r.opened, url)
}

func filledCart(t *testing.T) *cart.Store {
	t.Helper()
	store := cart.NewStore(storage.NewMemory(), nil)
	ctx := context.Background()
	store.Add(ctx, cart.Product{ID: "p-shirt", Name: "Structured T-Shirt", Price: decimal.RequireFromString("180")})
	store.Add(ctx, cart.Product{ID: "p-shirt", Name: "Structured T-Shirt", Price: decimal.RequireFromString("180")})
	store.Add(ctx, cart.Product{ID: "p-pants", Name: "Technical Cargo Pants", Price: decimal.RequireFromString("450")})
	return store
}

func TestSubmitEmptyCartMakesNoNetworkCall(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{}
	notifier := &stubNotifier{}
	store := cart.NewStore(storage.NewMemory(), nil)
	orch := New(store, gateway, &telegram.Noop{}, notifier, nil)

	err := orch.Submit(context.Background())

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Zero(t, gateway.calls)
	assert.Equal(t, []string{"Your cart is empty"}, notifier.messages)
	assert.Equal(t, StateIdle, orch.State())
}

func TestSubmitSuccessClearsCartAndOpensPayment(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{result: &backend.CheckoutResult{OrderID: "o-1", PaymentURL: "https://pay.example.com/session/o-1"}}
	bridge := &recordingBridge{}
	store := filledCart(t)
	orch := New(store, gateway, bridge, &stubNotifier{}, nil)
	orch.SetUserID("u-7")

	require.NoError(t, orch.Submit(context.Background()))

	assert.Empty(t, store.Lines())
	assert.Equal(t, 1, gateway.calls)
	assert.Equal(t, "u-7", gateway.userID)
	assert.Equal(t, []string{"https://pay.example.com/session/o-1"}, bridge.opened)
	assert.Equal(t, []telegram.NotificationType{telegram.NotificationSuccess}, bridge.notifications)
	assert.Equal(t, StateIdle, orch.State())
}

func TestSubmitSnapshotsCartAtSubmitTime(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{result: &backend.CheckoutResult{PaymentURL: "https://pay.example.com/session/x"}}
	store := filledCart(t)
	orch := New(store, gateway, &telegram.Noop{}, nil, nil)

	require.NoError(t, orch.Submit(context.Background()))

	require.Len(t, gateway.items, 2)
	assert.Equal(t, "p-shirt", gateway.items[0].ProductID)
	assert.Equal(t, 2, gateway.items[0].Quantity)
	assert.Equal(t, "p-pants", gateway.items[1].ProductID)
	assert.True(t, gateway.items[0].UnitPrice.Equal(decimal.RequireFromString("180")))
}

func TestSubmitFailureLeavesCartUntouched(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{err: pkgerrors.New(pkgerrors.CodeDependency, "backend down")}
	bridge := &recordingBridge{}
	notifier := &stubNotifier{}
	store := filledCart(t)
	orch := New(store, gateway, bridge, notifier, nil)

	err := orch.Submit(context.Background())

	require.Error(t, err)
	assert.Len(t, store.Lines(), 2)
	assert.Equal(t, "810.00", store.Total().StringFixed(2))
	assert.Equal(t, []string{"Checkout failed. Please try again."}, notifier.messages)
	assert.Equal(t, []telegram.NotificationType{telegram.NotificationError}, bridge.notifications)
	assert.Empty(t, bridge.opened)
	assert.Equal(t, StateIdle, orch.State())
}

func TestSubmitTransitionsThroughSubmitting(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{result: &backend.CheckoutResult{PaymentURL: "https://pay.example.com/session/x"}}
	store := filledCart(t)
	orch := New(store, gateway, &telegram.Noop{}, nil, nil)
	gateway.orch = orch

	require.NoError(t, orch.Submit(context.Background()))
	assert.Equal(t, StateSubmitting, gateway.observed)
}

func TestSubmitRetryAfterFailureSucceeds(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{err: assert.AnError}
	store := filledCart(t)
	orch := New(store, gateway, &telegram.Noop{}, nil, nil)

	require.Error(t, orch.Submit(context.Background()))

	gateway.err = nil
	gateway.result = &backend.CheckoutResult{PaymentURL: "https://pay.example.com/session/retry"}
	require.NoError(t, orch.Submit(context.Background()))
	assert.Empty(t, store.Lines())
}
