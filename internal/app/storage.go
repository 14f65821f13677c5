package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/go-task-manager/internal/config"
	"github.com/adanyl0v/go-task-manager/internal/storage"
	"github.com/adanyl0v/go-task-manager/internal/storage/memory"
	"github.com/adanyl0v/go-task-manager/internal/storage/postgres"
	"github.com/adanyl0v/go-task-manager/internal/storage/sqlite"
)

var globalStore storage.Store

type migrator interface {
	Migrate(ctx context.Context) error
}

func MustOpenStorage() {
	cfg := config.Global()

	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		globalStore = postgres.New(mustConnectPostgres())
	case config.StorageDriverSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path, int(cfg.SQLite.BusyTimeout.Milliseconds()))
		if err != nil {
			globalLogger.Error().
				Err(err).
				Str("path", cfg.SQLite.Path).
				Msg("failed to open sqlite")
			panic(err)
		}
		globalStore = store
		globalLogger.Info().
			Str("path", cfg.SQLite.Path).
			Msg("opened sqlite")
	case config.StorageDriverMemory:
		globalStore = memory.New()
		globalLogger.Warn().Msg("using in-memory storage, data is lost on exit")
	default:
		err := fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
		globalLogger.Error().
			Err(err).
			Msg("failed to open storage")
		panic(err)
	}
}

func mustConnectPostgres() *pgxpool.Pool {
	cfg := config.Global().Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = pool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")
	return pool
}

// MustMigrateStorage applies the schema. Stores without one are skipped.
func MustMigrateStorage() {
	m, ok := globalStore.(migrator)
	if !ok {
		globalLogger.Debug().Msg("storage has no schema to migrate")
		return
	}

	err := m.Migrate(context.Background())
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to migrate storage")
		panic(err)
	}
	globalLogger.Info().Msg("migrated storage")
}

func CloseStorage() {
	err := globalStore.Close()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close storage")
		return
	}
	globalLogger.Info().Msg("closed storage")
}
