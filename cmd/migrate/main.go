package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/storefront/storefront-backend/internal/stores"
	"github.com/storefront/storefront-backend/pkg/config"
	"github.com/storefront/storefront-backend/pkg/db"
	"github.com/storefront/storefront-backend/pkg/logger"
	"github.com/storefront/storefront-backend/pkg/migrate"
)

type options struct {
	cmd       string
	dir       string
	name      string
	version   string
	storeName string
	host      string
	subdomain string
	inactive  bool
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "command: up|down|status|version|create|validate|register-store|resolve-host")
	flag.StringVar(&opts.dir, "dir", "", "goose migrations directory; empty uses the embedded schema")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.StringVar(&opts.storeName, "store-name", "", "display name for -cmd=register-store")
	flag.StringVar(&opts.host, "host", "", "storefront host for register-store and resolve-host")
	flag.StringVar(&opts.subdomain, "subdomain", "", "subdomain label for -cmd=register-store")
	flag.BoolVar(&opts.inactive, "inactive", false, "register the store without serving it")
	flag.Parse()
	return opts
}

func main() {
	_ = godotenv.Load()
	opts := parseFlags()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "config load failed", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
	})

	if err := run(ctx, cfg, logg, opts); err != nil {
		logg.Error(ctx, "migrate command failed", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts options) error {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		target := opts.dir
		if target == "" {
			target = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(target, opts.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		validate := migrate.ValidateEmbedded
		if opts.dir != "" {
			validate = func() error { return migrate.ValidateDir(opts.dir) }
		}
		if err := validate(); err != nil {
			return fmt.Errorf("validate migrations: %w", err)
		}
		fmt.Println("migrations valid")
		return nil
	}

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	switch opts.cmd {
	case "register-store":
		store, err := registerStore(ctx, stores.NewRepository(client.DB()), storeInput{
			Name:      opts.storeName,
			Host:      opts.host,
			Subdomain: opts.subdomain,
			Active:    !opts.inactive,
		})
		if err != nil {
			return err
		}
		logg.Info(logg.WithStoreID(ctx, store.ID), "store registered")
		fmt.Printf("registered store %d (%s)\n", store.ID, store.Name)
		return nil
	case "resolve-host":
		svc, err := stores.NewService(stores.NewRepository(client.DB()))
		if err != nil {
			return err
		}
		storeID, err := svc.ResolveHost(ctx, opts.host)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", opts.host, err)
		}
		fmt.Println(storeID)
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	logg.Info(ctx, "schema migration starting")

	switch opts.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			return errors.New("missing -version for version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
}
