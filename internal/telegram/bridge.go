// Package telegram models the surface the chat-platform container exposes to
// an embedded mini app: theme values, haptic triggers, the primary action
// button and the opaque init-data token.
package telegram

import (
	"context"
	"sync"

	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
)

type ColorScheme string

const (
	ColorSchemeLight ColorScheme = "light"
	ColorSchemeDark  ColorScheme = "dark"
)

// Theme carries the display-only values supplied by the container.
type Theme struct {
	ColorScheme     ColorScheme
	BackgroundColor string
	TextColor       string
}

type ImpactStyle string

const (
	ImpactLight  ImpactStyle = "light"
	ImpactMedium ImpactStyle = "medium"
	ImpactHeavy  ImpactStyle = "heavy"
)

type NotificationType string

const (
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)

// MainButton is the container's primary action button, repurposed by the
// storefront as the "Pay $TOTAL" trigger.
type MainButton interface {
	SetText(text string)
	Show()
	Hide()
	OnClick(fn func())
}

// WebApp is the host bridge contract the engine depends on. Haptics and
// theme are display-only; nothing here is correctness-relevant.
type WebApp interface {
	Ready()
	Expand()
	Theme() Theme
	InitData() string
	HapticImpact(style ImpactStyle)
	HapticNotification(kind NotificationType)
	MainButton() MainButton
	OpenLink(url string)
}

// Noop is a do-nothing bridge, useful as a test double and as an embed base.
type Noop struct {
	button noopButton
}

func (n *Noop) Ready()                              {}
func (n *Noop) Expand()                             {}
func (n *Noop) Theme() Theme                        { return Theme{ColorScheme: ColorSchemeLight} }
func (n *Noop) InitData() string                    { return "" }
func (n *Noop) HapticImpact(ImpactStyle)            {}
func (n *Noop) HapticNotification(NotificationType) {}
func (n *Noop) MainButton() MainButton              { return &n.button }
func (n *Noop) OpenLink(string)                     {}

type noopButton struct{}

func (noopButton) SetText(string) {}
func (noopButton) Show()          {}
func (noopButton) Hide()          {}
func (noopButton) OnClick(func()) {}

// Console logs every bridge interaction; it stands in for the real container
// when the engine runs headless.
type Console struct {
	logg     *logger.Logger
	initData string
	button   consoleButton
}

// NewConsole builds a logging bridge carrying the provided init-data token.
func NewConsole(logg *logger.Logger, initData string) *Console {
	return &Console{logg: logg, initData: initData, button: consoleButton{logg: logg}}
}

func (c *Console) Ready()  { c.log("webapp.ready") }
func (c *Console) Expand() { c.log("webapp.expand") }

func (c *Console) Theme() Theme {
	return Theme{ColorScheme: ColorSchemeLight, BackgroundColor: "#ffffff", TextColor: "#000000"}
}

func (c *Console) InitData() string { return c.initData }

func (c *Console) HapticImpact(style ImpactStyle) {
	c.logField("haptic.impact", "style", string(style))
}

func (c *Console) HapticNotification(kind NotificationType) {
	c.logField("haptic.notification", "kind", string(kind))
}

func (c *Console) MainButton() MainButton { return &c.button }

func (c *Console) OpenLink(url string) {
	c.logField("webapp.open_link", "url", url)
}

func (c *Console) log(msg string) {
	if c.logg != nil {
		c.logg.Info(context.Background(), msg)
	}
}

func (c *Console) logField(msg, key, value string) {
	if c.logg != nil {
		ctx := c.logg.WithField(context.Background(), key, value)
		c.logg.Info(ctx, msg)
	}
}

type consoleButton struct {
	mu      sync.Mutex
	logg    *logger.Logger
	text    string
	visible bool
	onClick func()
}

func (b *consoleButton) SetText(text string) {
	b.mu.Lock()
	b.text = text
	b.mu.Unlock()
	if b.logg != nil {
		ctx := b.logg.WithField(context.Background(), "text", text)
		b.logg.Info(ctx, "main_button.text")
	}
}

func (b *consoleButton) Show() {
	b.mu.Lock()
	b.visible = true
	b.mu.Unlock()
}

func (b *consoleButton) Hide() {
	b.mu.Lock()
	b.visible = false
	b.mu.Unlock()
}

func (b *consoleButton) OnClick(fn func()) {
	b.mu.Lock()
	b.onClick = fn
	b.mu.Unlock()
}

// Click simulates the user pressing the main button.
func (b *consoleButton) Click() {
	b.mu.Lock()
	fn := b.onClick
	visible := b.visible
	b.mu.Unlock()
	if visible && fn != nil {
		fn()
	}
}
