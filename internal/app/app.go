// Package app assembles stores, quote fetching and event streaming from
// configuration. The binaries under cmd/ share it.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/trogers1052/carteira-dashboard/internal/cache"
	"github.com/trogers1052/carteira-dashboard/internal/config"
	"github.com/trogers1052/carteira-dashboard/internal/dashboard"
	"github.com/trogers1052/carteira-dashboard/internal/database"
	"github.com/trogers1052/carteira-dashboard/internal/filestore"
	"github.com/trogers1052/carteira-dashboard/internal/kafka"
	"github.com/trogers1052/carteira-dashboard/internal/quotes"
	"github.com/trogers1052/carteira-dashboard/internal/sheets"
	"github.com/trogers1052/carteira-dashboard/internal/storage/memory"
	"go.uber.org/zap"
)

// Store is a backend holding positions and options
type Store interface {
	dashboard.PositionStore
	dashboard.OptionStore
}

// App holds the wired components
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Service *dashboard.Service
	Store   Store
	Quotes  *quotes.Fetcher
	Events  *kafka.Producer

	db      *database.DB
	sheets  *sheets.Client
	closers []func() error
}

// Open connects every configured backend. On error, whatever was already
// opened is closed.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}
	if err := a.open(ctx); err != nil {
		if cerr := a.Close(); cerr != nil {
			logger.Warn("failed to close partially opened backends", zap.Error(cerr))
		}
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	var alerts dashboard.AlertStore
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := a.database()
		if err != nil {
			return err
		}
		a.Store, alerts = db, db
	case config.BackendSheets:
		client, err := a.spreadsheet(ctx)
		if err != nil {
			return err
		}
		a.Store = client
	case config.BackendFile:
		a.Store = filestore.New(cfg.File.Path, logger)
	case config.BackendMemory:
		store := memory.New()
		a.Store, alerts = store, store
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if alerts == nil {
		// Only Postgres persists transitions; other backends keep them per process.
		alerts = memory.New()
	}

	quoteCache, err := a.quoteCache(ctx)
	if err != nil {
		return err
	}

	a.Quotes = quotes.NewFetcher(quotes.NewProviderFromConfig(cfg.Quotes), quoteCache, logger, quotes.Options{
		Concurrency:   cfg.Quotes.Concurrency,
		CacheFallback: cfg.Quotes.CacheFallback,
	})

	deps := dashboard.Deps{
		Positions: a.Store,
		Options:   a.Store,
		Alerts:    alerts,
		Quotes:    a.Quotes,
		Logger:    logger,
	}
	if cfg.Kafka.Enabled {
		a.Events = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, a.Events.Close)
		deps.Events = a.Events
		logger.Info("kafka producer enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	a.Service = dashboard.NewService(deps)

	logger.Info("backends ready",
		zap.String("store", cfg.Store.Backend),
		zap.String("cache", cfg.Store.CacheBackend),
		zap.String("provider", cfg.Quotes.Provider))
	return nil
}

// CommandConsumer returns a consumer applying position commands to the
// store, or nil when Kafka is disabled
func (a *App) CommandConsumer() *kafka.CommandConsumer {
	k := a.Config.Kafka
	if !k.Enabled || k.CommandsTopic == "" {
		return nil
	}
	c := kafka.NewCommandConsumer(k.Brokers, k.CommandsTopic, k.GroupID, a.Store, a.Logger).WithValidator(a.Quotes)
	a.closers = append(a.closers, c.Close)
	return c
}

// Close releases every opened backend in reverse order
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) quoteCache(ctx context.Context) (quotes.Cache, error) {
	cfg := a.Config
	switch cfg.Store.CacheBackend {
	case config.BackendRedis:
		r, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, r.Close)
		return r, nil
	case config.BackendPostgres:
		db, err := a.database()
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendSheets:
		client, err := a.spreadsheet(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Store.CacheBackend)
	}
}

// database opens Postgres once and runs migrations
func (a *App) database() (*database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.New(a.Config.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	if err := db.Migrate(a.Config.Database.MigrationsPath); err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *App) spreadsheet(ctx context.Context) (*sheets.Client, error) {
	if a.sheets != nil {
		return a.sheets, nil
	}
	s := a.Config.Sheets
	client, err := sheets.New(ctx, s.CredentialsJSON, s.SpreadsheetID, sheets.Tabs{
		Positions: s.PositionsTab,
		Quotes:    s.QuotesTab,
		Options:   s.OptionsTab,
	}, a.Logger)
	if err != nil {
		return nil, err
	}
	a.sheets = client
	return client, nil
}
