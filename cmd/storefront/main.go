package main

import (
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/logging"
	"github.com/nikolayk812/storefront/internal/messaging"
	"github.com/nikolayk812/storefront/internal/orderclient"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/tracker"
	"github.com/nikolayk812/storefront/internal/tui"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	// the terminal belongs to the UI, logs go to a file
	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	hc := &http.Client{}

	orders, err := orderclient.New(cfg.Orders.BaseURL, cfg.Orders.Currency,
		orderclient.WithHTTPClient(hc),
		orderclient.WithAdminSecret(cfg.Admin.Secret),
	)
	if err != nil {
		return fmt.Errorf("orderclient.New: %w", err)
	}

	products, err := openCatalog(cfg, hc)
	if err != nil {
		return err
	}

	channel, closeChannel, err := openChannel(cfg, logger)
	if err != nil {
		return err
	}
	defer closeChannel()

	toasts := &tui.Toasts{}
	store := cart.NewStore(cfg.Orders.Currency, cart.WithNotifier(toasts))
	handoff := messaging.NewHandoff(channel, cfg.Messaging.Phone, logger.Named("messaging"))

	model := tui.New(tui.Deps{
		Catalog: products,
		Cart:    store,
		Checkout: checkout.NewOrchestrator(store, orders, handoff,
			checkout.WithTimeout(cfg.Orders.RequestTimeout),
			checkout.WithLogger(logger.Named("checkout")),
		),
		Tracker: tracker.New(orders,
			tracker.WithTimeout(cfg.Orders.RequestTimeout),
			tracker.WithLogger(logger.Named("tracker")),
		),
		AdminGate:      tracker.NewAdminGate(cfg.Admin.Secret),
		Toasts:         toasts,
		CatalogTimeout: cfg.Orders.RequestTimeout,
	})

	logger.Info("storefront started",
		zap.String("order_service", cfg.Orders.BaseURL),
		zap.String("messaging_channel", cfg.Messaging.Channel),
	)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("tea.Program.Run: %w", err)
	}
	return nil
}

func openCatalog(cfg config.Config, hc *http.Client) (port.ProductCatalog, error) {
	if cfg.Catalog.File != "" {
		c, err := catalog.LoadFile(cfg.Catalog.File, cfg.Orders.Currency)
		if err != nil {
			return nil, fmt.Errorf("catalog.LoadFile: %w", err)
		}
		return c, nil
	}

	c, err := orderclient.NewCatalogClient(cfg.Catalog.BaseURL, cfg.Orders.Currency, hc)
	if err != nil {
		return nil, fmt.Errorf("orderclient.NewCatalogClient: %w", err)
	}
	return c, nil
}

func openChannel(cfg config.Config, logger *zap.Logger) (port.MessagingChannel, func(), error) {
	switch cfg.Messaging.Channel {
	case config.ChannelKafka:
		ch := messaging.NewKafkaChannel(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.Named("kafka"))
		return ch, func() {
			if err := ch.Close(); err != nil {
				logger.Warn("kafka writer close failed", zap.Error(err))
			}
		}, nil
	case config.ChannelLog:
		return messaging.NewLogChannel(logger.Named("messaging")), func() {}, nil
	default:
		return messaging.NewBrowserChannel(), func() {}, nil
	}
}
