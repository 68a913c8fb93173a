package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/axeria/infra"
	infracache "github.com/amirasaad/axeria/infra/cache"
	infra_eventbus "github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/infra/migrations"
	"github.com/amirasaad/axeria/infra/notifier"
	infra_provider "github.com/amirasaad/axeria/infra/provider"
	infra_repository "github.com/amirasaad/axeria/infra/repository"
	"github.com/amirasaad/axeria/infra/storage"
	"github.com/amirasaad/axeria/pkg/app"
	"github.com/amirasaad/axeria/pkg/cache"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/eventbus"
	"gorm.io/gorm"
)

// Resources holds what InitializeDependencies opened. Close releases it
// in reverse order.
type Resources struct {
	Deps    *app.Deps
	DB      *gorm.DB
	closers []func() error
}

func (r *Resources) onClose(fn func() error) {
	r.closers = append(r.closers, fn)
}

func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

// InitializeDependencies initializes all the application dependencies.
// ctx bounds the background workers it starts, such as cache sweeping.
func InitializeDependencies(ctx context.Context, cfg *config.App) (res *Resources, err error) {
	logger := SetupLogger(cfg.Log, nil)
	res = &Resources{Deps: &app.Deps{Logger: logger}}
	defer func() {
		if err != nil {
			_ = res.Close()
			res = nil
		}
	}()

	db, err := InitDatabase(cfg.DB, cfg.Env, logger)
	if err != nil {
		return res, err
	}
	res.DB = db
	res.onClose(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	res.Deps.Uow = infra_repository.NewUoW(db)

	bus, closeBus, err := initEventBus(cfg, logger)
	if err != nil {
		return res, err
	}
	res.onClose(closeBus)
	res.Deps.EventBus = bus

	priceCache, closeCache := initPriceCache(ctx, cfg, logger)
	res.onClose(closeCache)
	res.Deps.PriceTicker = infra_provider.NewBinanceTicker(cfg.PriceTicker, priceCache, logger)

	store, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		return res, fmt.Errorf("failed to initialize storage: %w", err)
	}
	res.Deps.Storage = store

	tg, err := notifier.NewTelegram(cfg.Telegram, logger)
	if err != nil {
		// Notifications are best effort; the API still serves without them.
		logger.Error("Failed to initialize Telegram notifier", "error", err)
	} else if tg != nil {
		res.onClose(tg.Close)
		res.Deps.Subscribers = append(res.Deps.Subscribers, tg)
	}
	return res, nil
}

// InitDatabase opens the database and brings its schema up to date when
// auto-migration is on: SQL migrations for postgres, gorm AutoMigrate for
// sqlite.
func InitDatabase(cfg *config.DB, env string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := infra.NewDBConnection(cfg, env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	if !cfg.AutoMigrate {
		return db, nil
	}
	if db.Dialector.Name() == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if err := migrations.Up(sqlDB); err != nil {
			return nil, err
		}
	} else if err := infra_repository.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("Database schema ready", "dialect", db.Dialector.Name())
	return db, nil
}

func noopClose() error { return nil }

// initEventBus picks the bus by EVENT_BUS_DRIVER. An unreachable Redis or
// Kafka falls back to the memory bus; a missing address is an error.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, func() error, error) {
	driver := ""
	if cfg.EventBus != nil {
		driver = cfg.EventBus.Driver
	}
	switch driver {
	case "", "memory":
		return infra_eventbus.NewWithMemory(logger), noopClose, nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, nil, fmt.Errorf("event bus driver redis requires REDIS_URL")
		}
		bus, err := infra_eventbus.NewWithRedis(
			cfg.Redis.URL,
			cfg.EventBus.RedisStream,
			cfg.EventBus.RedisGroup,
			events.EventTypes,
			logger,
		)
		if err != nil {
			logger.Warn("Redis event bus unavailable, using memory bus", "error", err)
			return infra_eventbus.NewWithMemory(logger), noopClose, nil
		}
		return bus, bus.Close, nil
	case "kafka":
		if cfg.Kafka == nil || cfg.Kafka.Brokers == "" {
			return nil, nil, fmt.Errorf("event bus driver kafka requires KAFKA_BROKERS")
		}
		bus, err := infra_eventbus.NewWithKafka(cfg.Kafka.Brokers, infra_eventbus.KafkaEventBusConfig{
			GroupID:     cfg.Kafka.GroupID,
			TopicPrefix: cfg.Kafka.TopicPrefix,
		}, logger)
		if err != nil {
			logger.Warn("Kafka event bus unavailable, using memory bus", "error", err)
			return infra_eventbus.NewWithMemory(logger), noopClose, nil
		}
		return bus, bus.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported event bus driver %q", driver)
	}
}

// initPriceCache uses Redis when REDIS_URL is set and reachable, memory
// otherwise.
func initPriceCache(ctx context.Context, cfg *config.App, logger *slog.Logger) (cache.PriceCache, func() error) {
	if cfg.Redis != nil && cfg.Redis.URL != "" {
		rc, err := infracache.NewRedisCache(cfg.Redis.URL, cfg.Redis.KeyPrefix, logger)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.Redis.DialTimeout)
			err = rc.Ping(pingCtx)
			cancel()
			if err == nil {
				return rc, rc.Close
			}
			_ = rc.Close()
		}
		logger.Warn("Redis price cache unavailable, using memory cache", "error", err)
	}
	return infracache.NewMemoryCache(ctx, 5*time.Minute), noopClose
}
