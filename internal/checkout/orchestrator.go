// Package checkout submits the cart to the backend and hands off to the
// external payment flow.
package checkout

import (
	"context"
	"sync"

	"github.com/angelmondragon/miniapp-storefront/internal/cart"
	"github.com/angelmondragon/miniapp-storefront/internal/telegram"
	"github.com/angelmondragon/miniapp-storefront/pkg/backend"
	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Cart is the slice of the cart store the orchestrator reads and clears.
type Cart interface {
	Lines() []cart.Line
	Clear(ctx context.Context)
}

// Gateway issues the single checkout request.
type Gateway interface {
	CreateCheckout(ctx context.Context, items []backend.CheckoutItem, userID string) (*backend.CheckoutResult, error)
}

// Notifier surfaces transient, human-readable messages to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Orchestrator runs the Idle -> Submitting -> {Success, Failed} -> Idle
// machine. The cart is cleared only on success; failure leaves it untouched
// so checkout stays retryable.
type Orchestrator struct {
	mu     sync.Mutex
	state  State
	userID string

	cart     Cart
	gateway  Gateway
	bridge   telegram.WebApp
	notifier Notifier
	logg     *logger.Logger
}

// New builds an orchestrator in the Idle state.
func New(cartStore Cart, gateway Gateway, bridge telegram.WebApp, notifier Notifier, logg *logger.Logger) *Orchestrator {
	if bridge == nil {
		bridge = &telegram.Noop{}
	}
	return &Orchestrator{
		state:    StateIdle,
		cart:     cartStore,
		gateway:  gateway,
		bridge:   bridge,
		notifier: notifier,
		logg:     logg,
	}
}

// SetUserID attaches the resolved user to subsequent checkout submissions.
func (o *Orchestrator) SetUserID(userID string) {
	o.mu.Lock()
	o.userID = userID
	o.mu.Unlock()
}

// State reports the current machine state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit takes a snapshot of the cart and runs the checkout. Items added
// after Submit is issued are not part of the request. The whole request is
// all-or-nothing; there is no partial success.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "checkout already in progress")
	}
	userID := o.userID
	o.mu.Unlock()

	lines := o.cart.Lines()
	if len(lines) == 0 {
		o.notify(ctx, "Your cart is empty")
		o.bridge.HapticNotification(telegram.NotificationError)
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	o.setState(StateSubmitting)

	items := make([]backend.CheckoutItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, backend.CheckoutItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	result, err := o.gateway.CreateCheckout(ctx, items, userID)
	if err != nil {
		o.setState(StateFailed)
		if o.logg != nil {
			o.logg.Error(ctx, "checkout failed", err)
		}
		o.notify(ctx, "Checkout failed. Please try again.")
		o.bridge.HapticNotification(telegram.NotificationError)
		o.setState(StateIdle)
		return err
	}

	o.setState(StateSuccess)
	o.cart.Clear(ctx)
	o.bridge.MainButton().Hide()
	o.bridge.HapticNotification(telegram.NotificationSuccess)
	o.bridge.OpenLink(result.PaymentURL)
	o.setState(StateIdle)
	return nil
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}

func (o *Orchestrator) notify(ctx context.Context, message string) {
	if o.notifier != nil {
		o.notifier.Notify(ctx, message)
	}
}
