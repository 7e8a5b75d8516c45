package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/storefront/storefront-backend/api/routes"
	"github.com/storefront/storefront-backend/internal/cart"
	"github.com/storefront/storefront-backend/internal/catalog"
	"github.com/storefront/storefront-backend/internal/checkout"
	"github.com/storefront/storefront-backend/internal/stores"
	"github.com/storefront/storefront-backend/internal/tenant"
	"github.com/storefront/storefront-backend/pkg/backend"
	"github.com/storefront/storefront-backend/pkg/config"
	"github.com/storefront/storefront-backend/pkg/db"
	"github.com/storefront/storefront-backend/pkg/instance"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/metrics"
	"github.com/storefront/storefront-backend/pkg/migrate"
	"github.com/storefront/storefront-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(runCtx, cfg.DB, logg)
	requireResource(runCtx, logg, "database", err)

	if err := migrate.MaybeRunDev(runCtx, cfg, logg, dbClient); err != nil {
		logg.Error(runCtx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(runCtx, cfg.Redis, logg)
	requireResource(runCtx, logg, "redis", err)

	defer func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	threshold, err := cfg.Cart.Threshold()
	requireResource(runCtx, logg, "cart threshold", err)
	snapshots, err := cart.NewRedisSnapshotStore(redisClient, cfg.Cart.TTL)
	requireResource(runCtx, logg, "cart store", err)
	cartService, err := cart.NewService(snapshots, cart.WithFreeShippingThreshold(threshold))
	requireResource(runCtx, logg, "cart service", err)

	backendClient, err := backend.NewClient(cfg.Backend.BaseURL, backend.WithTimeout(cfg.Backend.Timeout))
	requireResource(runCtx, logg, "backend client", err)

	storeService, err := stores.NewService(stores.NewRepository(dbClient.DB()))
	requireResource(runCtx, logg, "store service", err)

	var lookup tenant.Lookup = tenant.LookupFunc(storeService.ResolveHost)
	if !cfg.Tenant.UsesLocalLookup() {
		lookup, err = tenant.NewBackendLookup(backendClient)
		requireResource(runCtx, logg, "tenant lookup", err)
	}
	resolver, err := tenant.NewResolver(
		tenant.NewCache(cfg.Tenant.CacheTTL),
		lookup,
		tenant.WithDefaultStoreID(cfg.Tenant.DefaultStoreID),
		tenant.WithMetrics(metrics.NewTenantMetrics(registry)),
		tenant.WithLogger(logg),
	)
	requireResource(runCtx, logg, "tenant resolver", err)

	catalogService, err := catalog.NewService(
		backendClient,
		catalog.WithFallback(cfg.Backend.Fallback),
		catalog.WithMetrics(metrics.NewProxyMetrics(registry)),
		catalog.WithLogger(logg),
	)
	requireResource(runCtx, logg, "catalog service", err)

	checkoutService, err := checkout.NewService(cartService, catalogService, logg)
	requireResource(runCtx, logg, "checkout service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"instance":      instance.GetID(),
		"tenant_lookup": cfg.Tenant.Lookup,
		"fallback":      cfg.Backend.Fallback,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			resolver,
			storeService,
			cartService,
			catalogService,
			checkoutService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
		return
	case <-runCtx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "api server shutdown failed", err)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
