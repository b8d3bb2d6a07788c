package app

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
	"github.com/vladislavdragonenkov/cafepos/internal/storage/memory"
	"github.com/vladislavdragonenkov/cafepos/internal/storage/postgres"
)

// runtimeDependencies содержит реализации хранилища для выбранного драйвера.
type runtimeDependencies struct {
	catalogRepo domain.CatalogRepository
	txManager   domain.TxManager
	historyRepo domain.HistoryRepository
	outboxRepo  domain.OutboxRepository
	// storagePing проверяет доступность хранилища для /healthz.
	storagePing func(ctx context.Context) error
	closeFn     func() error
}

func (d runtimeDependencies) close() error {
	if d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// initRuntimeDependencies выбирает драйвер хранилища по конфигурации.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		return initMemoryDependencies(cfg, logger)
	case StorageDriverPostgres:
		return initPostgresDependencies(ctx, cfg, logger)
	default:
		return runtimeDependencies{}, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func initMemoryDependencies(cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	store := memory.NewStore()

	if cfg.CatalogSeedPath != "" {
		f, err := os.Open(cfg.CatalogSeedPath)
		if err != nil {
			return runtimeDependencies{}, fmt.Errorf("open catalog seed: %w", err)
		}
		defer f.Close()

		created, err := store.LoadCatalogSeed(f)
		if err != nil {
			return runtimeDependencies{}, err
		}
		logger.WithFields(log.Fields{
			"path":     cfg.CatalogSeedPath,
			"products": created,
		}).Info("catalog seed loaded")
	}

	logger.Info("using in-memory storage")
	return runtimeDependencies{
		catalogRepo: memory.NewCatalogRepository(store),
		txManager:   memory.NewTxManager(store),
		historyRepo: memory.NewHistoryRepository(store),
		outboxRepo:  memory.NewOutboxRepository(store),
		storagePing: func(context.Context) error { return nil },
	}, nil
}

func initPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	if cfg.PostgresDSN == "" {
		return runtimeDependencies{}, fmt.Errorf("%s is required for %s storage driver", EnvPostgresDSN, StorageDriverPostgres)
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return runtimeDependencies{}, err
	}

	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return runtimeDependencies{}, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres schema is up to date")
	}

	logger.Info("using postgres storage")
	return runtimeDependencies{
		catalogRepo: postgres.NewCatalogRepository(store),
		txManager:   postgres.NewTxManager(store),
		historyRepo: postgres.NewHistoryRepository(store),
		outboxRepo:  postgres.NewOutboxRepository(store),
		storagePing: store.Ping,
		closeFn:     store.Close,
	}, nil
}
