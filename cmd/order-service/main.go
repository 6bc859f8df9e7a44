package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/logging"
	"github.com/nikolayk812/storefront/internal/orderserver"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "order-service:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, "stdout")
	if err != nil {
		return fmt.Errorf("logging.New: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orders, closeOrders, err := openOrders(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeOrders()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []orderserver.Option{
		orderserver.WithLogger(logger),
		orderserver.WithMetrics(orderserver.NewMetrics(reg)),
		orderserver.WithAdminSecret(cfg.Admin.Secret),
	}
	if cfg.Catalog.File != "" {
		cat, err := catalog.LoadFile(cfg.Catalog.File, cfg.Orders.Currency)
		if err != nil {
			return fmt.Errorf("catalog.LoadFile: %w", err)
		}
		opts = append(opts, orderserver.WithCatalog(cat))
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Server.Port),
		Handler:           orderserver.New(orders, cfg.Orders.Currency, opts...).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("order service listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}
	return nil
}

// openOrders uses Postgres when DATABASE_URL is set and process memory otherwise.
func openOrders(ctx context.Context, cfg config.Config, logger *zap.Logger) (port.OrderService, func(), error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL is not set, orders are kept in memory")
		return repository.NewMemoryOrders(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pool.Ping: %w", err)
	}

	if err := repository.Migrate(connectCtx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("repository.Migrate: %w", err)
	}
	logger.Info("database schema applied")

	return repository.NewOrders(pool), pool.Close, nil
}
