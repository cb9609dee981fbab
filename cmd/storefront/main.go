// Command storefront runs the mini-app engine headless against the API,
// driving it from stdin the way the Telegram container drives it from taps.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/angelmondragon/miniapp-storefront/internal/app"
	"github.com/angelmondragon/miniapp-storefront/internal/assistant"
	"github.com/angelmondragon/miniapp-storefront/internal/cart"
	"github.com/angelmondragon/miniapp-storefront/internal/catalog"
	"github.com/angelmondragon/miniapp-storefront/internal/checkout"
	"github.com/angelmondragon/miniapp-storefront/internal/dispatch"
	"github.com/angelmondragon/miniapp-storefront/internal/storage"
	"github.com/angelmondragon/miniapp-storefront/internal/telegram"
	"github.com/angelmondragon/miniapp-storefront/pkg/backend"
	"github.com/angelmondragon/miniapp-storefront/pkg/config"
	"github.com/angelmondragon/miniapp-storefront/pkg/logger"
	"github.com/joho/godotenv"
)

type consoleNotifier struct{}

func (consoleNotifier) Notify(ctx context.Context, message string) {
	fmt.Println("! " + message)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	cartStorage, closeStorage, err := newCartStorage(ctx, cfg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap cart storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logg.Error(ctx, "error closing cart storage", err)
		}
	}()

	client, err := backend.NewClient(cfg.Backend.BaseURL, backend.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		logg.Error(ctx, "failed to create backend client", err)
		os.Exit(1)
	}

	bridge := telegram.NewConsole(logg, devInitData(cfg.Telegram))
	notifier := consoleNotifier{}

	cartStore := cart.NewStore(cartStorage, logg)
	catalogStore := catalog.NewStore(client)
	orchestrator := checkout.New(cartStore, client, bridge, notifier, logg)
	widget := assistant.NewWidget(client, logg)

	engine, err := app.New(app.Params{
		Cart:      cartStore,
		Catalog:   catalogStore,
		Checkout:  orchestrator,
		Assistant: widget,
		Bridge:    bridge,
		Notifier:  notifier,
		Users:     client,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to wire storefront engine", err)
		os.Exit(1)
	}

	engine.Start(ctx)
	printCatalog(catalogStore)
	repl(ctx, engine, catalogStore, widget)
}

// newCartStorage picks the persistence driver. The returned closer releases
// driver resources; for memory and file it is a no-op.
func newCartStorage(ctx context.Context, cfg *config.Config) (cart.Storage, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Cart.StorageDriver {
	case config.CartStorageMemory:
		return storage.NewMemory(), noop, nil
	case config.CartStorageRedis:
		redisStorage, err := storage.NewRedis(ctx, cfg.Redis, cfg.Cart.StorageKey)
		if err != nil {
			return nil, nil, err
		}
		return redisStorage, redisStorage.Close, nil
	default:
		fileStorage, err := storage.NewFile(cfg.Cart.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return fileStorage, noop, nil
	}
}

// devInitData signs a local init-data payload when a bot token is configured,
// so the user-resolution path can be exercised without the real container.
func devInitData(cfg config.TelegramConfig) string {
	if cfg.BotToken == "" {
		return ""
	}
	values := url.Values{}
	values.Set("query_id", "local")
	values.Set("user", `{"id":1,"first_name":"Local","username":"local"}`)
	return telegram.SignInitData(values, cfg.BotToken)
}

func printCatalog(catalogStore *catalog.Store) {
	fmt.Println("categories:")
	for _, category := range catalogStore.Categories() {
		fmt.Printf("  %-14s %s\n", category.ID, category.Name)
	}
	fmt.Println("products:")
	for _, product := range catalogStore.Products() {
		fmt.Printf("  %-20s %-24s %s\n", product.ID, product.Name, cart.FormatMoney(product.Price))
	}
}

func printView(view cart.View) {
	if view.Empty {
		fmt.Println("cart: empty")
		return
	}
	for _, line := range view.Lines {
		fmt.Printf("  %dx %-24s %s\n", line.Quantity, line.Name, line.Subtotal)
	}
	fmt.Printf("total: %s (%d items)\n", view.Total, view.Count)
}

func repl(ctx context.Context, engine *app.App, catalogStore *catalog.Store, widget *assistant.Widget) {
	fmt.Println("commands: add|inc|dec <product-id>, clear, cat <category-id>, view, checkout, chat <text>, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		verb, rest := fields[0], strings.Join(fields[1:], " ")

		var err error
		switch verb {
		case "quit", "exit":
			return
		case "view":
			printView(engine.View())
			continue
		case "add":
			err = engine.Dispatch(ctx, dispatch.Command{Name: dispatch.CmdCartAdd, ProductID: rest})
		case "inc":
			err = engine.Dispatch(ctx, dispatch.Command{Name: dispatch.CmdCartIncrement, ProductID: rest})
		case "dec":
			err = engine.Dispatch(ctx, dispatch.Command{Name: dispatch.CmdCartDecrement, ProductID: rest})
		case "clear":
			err = engine.Dispatch(ctx, dispatch.Command{Name: dispatch.CmdCartClear})
		case "cat":
			if err = engine.Dispatch(ctx, dispatch.Command{Name: dispatch.CmdCategorySelect, CategoryID: rest}); err == nil {
				printCatalog(catalogStore)
			}
		case "checkout":
			err = engine.Dispatch(ctx, dispatch.Command{Name: dispatch.CmdCheckoutSubmit})
		case "chat":
			if !widget.IsOpen() {
				_ = engine.Dispatch(ctx, dispatch.Command{Name: dispatch.CmdAssistantToggle})
			}
			if err = engine.Dispatch(ctx, dispatch.Command{Name: dispatch.CmdAssistantSend, Text: rest}); err == nil {
				transcript := widget.Transcript()
				if len(transcript) > 0 {
					fmt.Println("assistant: " + transcript[len(transcript)-1].Text)
				}
			}
		default:
			fmt.Println("unknown command " + verb)
			continue
		}

		if err != nil {
			fmt.Println("error: " + err.Error())
		} else if verb == "add" || verb == "inc" || verb == "dec" || verb == "clear" {
			printView(engine.View())
		}
	}
}
