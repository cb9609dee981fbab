// Package app owns the process-wide storefront state and wires the stores,
// the checkout orchestrator, the assistant widget and the host bridge behind
// a command dispatcher. Nothing here lives in package-level globals; the App
// is an explicit object so every piece can be tested headless.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/miniapp-storefront/internal/assistant"
	"github.com/angelmondragon/miniapp-storefront/internal/cart"
	"github.com/angelmondragon/miniapp-storefront/internal/catalog"
	"github.com/angelmondragon/miniapp-storefront/internal/checkout"
	"github.com/angelmondragon/miniapp-storefront/internal/dispatch"
	"github.com/angelmondragon/miniapp-storefront/internal/telegram"
	"github.com/angelmondragon/miniapp-storefront/pkg/backend"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

// UserResolver exchanges the bridge's init-data token for a user profile.
type UserResolver interface {
	ResolveTelegramUser(ctx context.Context, initData string) (*backend.User, error)
}

// Params collects the engine's collaborators.
type Params struct {
	Cart      *cart.Store
	Catalog   *catalog.Store
	Checkout  *checkout.Orchestrator
	Assistant *assistant.Widget
	Bridge    telegram.WebApp
	Notifier  checkout.Notifier
	Users     UserResolver
	Logger    *logger.Logger
}

// App is the storefront engine.
type App struct {
	mu   sync.Mutex
	view cart.View

	cart       *cart.Store
	catalog    *catalog.Store
	checkout   *checkout.Orchestrator
	assistant  *assistant.Widget
	bridge     telegram.WebApp
	notifier   checkout.Notifier
	users      UserResolver
	logg       *logger.Logger
	dispatcher *dispatch.Dispatcher
}

// New wires the engine and registers its command handlers.
func New(params Params) (*App, error) {
	if params.Cart == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout orchestrator required")
	}
	if params.Assistant == nil {
		return nil, fmt.Errorf("assistant widget required")
	}
	if params.Bridge == nil {
		params.Bridge = &telegram.Noop{}
	}

	a := &App{
		view:       cart.Project(nil),
		cart:       params.Cart,
		catalog:    params.Catalog,
		checkout:   params.Checkout,
		assistant:  params.Assistant,
		bridge:     params.Bridge,
		notifier:   params.Notifier,
		users:      params.Users,
		logg:       params.Logger,
		dispatcher: dispatch.New(params.Logger),
	}

	// Every cart mutation re-projects and refreshes the pay button.
	a.cart.Subscribe(func(lines []cart.Line) {
		view := cart.Project(lines)
		a.mu.Lock()
		a.view = view
		a.mu.Unlock()

		button := a.bridge.MainButton()
		if view.Empty {
			button.Hide()
			return
		}
		button.SetText("Pay " + view.Total)
		button.Show()
	})

	a.registerCommands()
	return a, nil
}

// Start readies the bridge, restores the cart and loads the catalog. Catalog
// failures surface as notifications; the session always starts.
func (a *App) Start(ctx context.Context) {
	a.bridge.Ready()
	a.bridge.Expand()
	a.bridge.MainButton().OnClick(func() {
		// Errors are surfaced via the notifier inside Submit.
		_ = a.checkout.Submit(context.Background())
	})

	a.cart.Restore(ctx)
	a.resolveUser(ctx)

	if err := a.catalog.LoadCategories(ctx); err != nil {
		a.fail(ctx, "Couldn't load categories. Please try again.", err)
	}
	if err := a.catalog.LoadProducts(ctx); err != nil {
		a.fail(ctx, "Couldn't load products. Please try again.", err)
	}
}

// Dispatch routes a user action into the engine.
func (a *App) Dispatch(ctx context.Context, cmd dispatch.Command) error {
	return a.dispatcher.Dispatch(ctx, cmd)
}

// View returns the latest cart projection.
func (a *App) View() cart.View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

func (a *App) registerCommands() {
	a.dispatcher.Register(dispatch.CmdCartAdd, func(ctx context.Context, cmd dispatch.Command) error {
		product, ok := a.catalog.Product(cmd.ProductID)
		if !ok {
			// Unknown product IDs are no-ops, not errors.
			return nil
		}
		a.cart.Add(ctx, catalog.ToCartProduct(product))
		a.bridge.HapticImpact(telegram.ImpactMedium)
		return nil
	})

	a.dispatcher.Register(dispatch.CmdCartIncrement, func(ctx context.Context, cmd dispatch.Command) error {
		a.cart.ChangeQuantity(ctx, cmd.ProductID, 1)
		return nil
	})

	a.dispatcher.Register(dispatch.CmdCartDecrement, func(ctx context.Context, cmd dispatch.Command) error {
		a.cart.ChangeQuantity(ctx, cmd.ProductID, -1)
		return nil
	})

	a.dispatcher.Register(dispatch.CmdCartClear, func(ctx context.Context, cmd dispatch.Command) error {
		a.cart.Clear(ctx)
		return nil
	})

	a.dispatcher.Register(dispatch.CmdCategorySelect, func(ctx context.Context, cmd dispatch.Command) error {
		if err := a.catalog.Select(ctx, cmd.CategoryID); err != nil {
			a.fail(ctx, "Couldn't load products. Please try again.", err)
			return err
		}
		return nil
	})

	a.dispatcher.Register(dispatch.CmdCheckoutSubmit, func(ctx context.Context, cmd dispatch.Command) error {
		return a.checkout.Submit(ctx)
	})

	a.dispatcher.Register(dispatch.CmdAssistantToggle, func(ctx context.Context, cmd dispatch.Command) error {
		a.assistant.Toggle()
		a.bridge.HapticImpact(telegram.ImpactLight)
		return nil
	})

	a.dispatcher.Register(dispatch.CmdAssistantSend, func(ctx context.Context, cmd dispatch.Command) error {
		a.assistant.Send(ctx, cmd.Text)
		return nil
	})
}

func (a *App) resolveUser(ctx context.Context) {
	if a.users == nil {
		return
	}
	initData := a.bridge.InitData()
	if initData == "" {
		return
	}
	user, err := a.users.ResolveTelegramUser(ctx, initData)
	if err != nil {
		if a.logg != nil {
			a.logg.Warn(ctx, "telegram user lookup failed")
		}
		return
	}
	if user != nil {
		a.checkout.SetUserID(user.ID)
	}
}

func (a *App) fail(ctx context.Context, message string, err error) {
	if a.logg != nil {
		a.logg.Error(ctx, "storefront error", err)
	}
	if a.notifier != nil {
		a.notifier.Notify(ctx, message)
	}
}
