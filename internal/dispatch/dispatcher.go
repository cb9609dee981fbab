// Package dispatch maps named user actions onto the state machines, so the
// engine can be driven headless by any rendering layer.
package dispatch

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/miniapp-storefront/pkg/errors"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

// Command names understood by the storefront engine.
const (
	CmdCartAdd         = "cart/add"
	CmdCartIncrement   = "cart/increment"
	CmdCartDecrement   = "cart/decrement"
	CmdCartClear       = "cart/clear"
	CmdCategorySelect  = "category/select"
	CmdCheckoutSubmit  = "checkout/submit"
	CmdAssistantToggle = "assistant/toggle"
	CmdAssistantSend   = "assistant/send"
)

// Command is one user action with its addressing payload.
type Command struct {
	Name       string
	ProductID  string
	CategoryID string
	Text       string
}

// Handler executes a command.
type Handler func(ctx context.Context, cmd Command) error

// Dispatcher routes commands to registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logg     *logger.Logger
}

// New returns an empty dispatcher.
func New(logg *logger.Logger) *Dispatcher {
	return &Dispatcher{handlers: map[string]Handler{}, logg: logg}
}

// Register binds a handler to a command name, replacing any previous one.
func (d *Dispatcher) Register(name string, handler Handler) {
	if name == "" || handler == nil {
		return
	}
	d.mu.Lock()
	d.handlers[name] = handler
	d.mu.Unlock()
}

// Dispatch runs the handler for the command. Unknown commands are rejected.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	d.mu.RLock()
	handler, ok := d.handlers[cmd.Name]
	d.mu.RUnlock()

	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown command "+cmd.Name)
	}

	if d.logg != nil {
		ctx = d.logg.WithCommand(ctx, cmd.Name)
		d.logg.Debug(ctx, "command.dispatch")
	}
	return handler(ctx, cmd)
}
