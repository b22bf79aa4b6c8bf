package main

import (
	"fmt"

	"counter_pos/internal/config"
	"counter_pos/internal/database"
	"counter_pos/internal/migrations"
	"counter_pos/internal/models"
	"counter_pos/internal/repository"
	"counter_pos/internal/services"
	"counter_pos/internal/store"
	"counter_pos/pkg/kitchen"

	"go.uber.org/zap"
)

// app holds the core services shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	menu      services.MenuCatalog
	directory services.UserDirectory
	ledger    services.OrderLedger
	closers   []func() error
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zcfg.Level = level
	return zcfg.Build()
}

// loadApp reads configuration and builds the menu, user directory and order
// ledger on the configured store driver.
func loadApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	if err := a.init(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init() error {
	items := models.DefaultMenu
	if a.cfg.MenuFile != "" {
		loaded, err := services.LoadMenuFile(a.cfg.MenuFile)
		if err != nil {
			return err
		}
		items = loaded
	}
	menu, err := services.NewMenuCatalog(items)
	if err != nil {
		return fmt.Errorf("invalid menu: %w", err)
	}
	a.menu = menu

	orderStore, userStore, err := a.openStores()
	if err != nil {
		return err
	}

	directory, err := services.NewUserDirectory(userStore, a.logger.Named("users"))
	if err != nil {
		return err
	}
	a.directory = directory

	ledger, err := services.NewOrderLedger(orderStore, a.notifier(), a.logger.Named("orders"))
	if err != nil {
		return err
	}
	a.ledger = ledger
	return nil
}

func (a *app) openStores() (store.Store[models.Order], store.Store[models.User], error) {
	switch a.cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.Initialize(a.cfg.DatabaseURL, a.logger)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })
		if err := migrations.RunMigrations(db, a.logger); err != nil {
			return nil, nil, err
		}
		return repository.NewOrderRepository(db, a.logger), repository.NewUserRepository(db, a.logger), nil
	default:
		orders := store.NewFileStore[models.Order](a.cfg.OrdersFile, a.logger)
		users := store.NewFileStore[models.User](a.cfg.UsersFile, a.logger, store.WithDecoder[models.User](services.DecodeUsers))
		return orders, users, nil
	}
}

// notifier publishes to the kitchen exchange when AMQP_URL is set. A broker
// that cannot be reached only disables events.
func (a *app) notifier() services.OrderNotifier {
	if a.cfg.AMQPURL == "" {
		return services.NoopNotifier()
	}
	client, err := kitchen.Dial(a.cfg.AMQPURL, kitchen.DefaultExchange)
	if err != nil {
		a.logger.Warn("kitchen events disabled", zap.Error(err))
		return services.NoopNotifier()
	}
	a.closers = append(a.closers, client.Close)
	a.logger.Info("publishing kitchen events", zap.String("exchange", kitchen.DefaultExchange))
	return services.NewKitchenNotifier(client)
}

// seedAdmin creates the default administrator on an empty directory.
func (a *app) seedAdmin() (bool, error) {
	return migrations.EnsureDefaultAdmin(a.directory, a.cfg.DefaultAdminUsername, a.cfg.DefaultAdminPassword, a.logger)
}

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return firstErr
}
