package core

import (
	"context"
	"fmt"

	"orgmatrix/internal/infra/persistence/memory"
	"orgmatrix/internal/infra/persistence/postgres"
	"orgmatrix/internal/infra/persistence/redis"
	s3store "orgmatrix/internal/infra/persistence/s3"
	"orgmatrix/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageRedis    StorageDriver = "redis"    // Redis key/value snapshots
	StorageS3       StorageDriver = "s3"       // S3-compatible object snapshots
)

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
	RedisAddr   string
	S3          s3store.Config
}

// OpenPersistentStore builds the configured backend with the default rules
// engine. Defaults to sqlite when the driver is unset.
func OpenPersistentStore(ctx context.Context, cfg StorageConfig) (PersistentStore, error) {
	engine := DefaultRulesEngine()
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case StoragePostgres:
		return postgres.NewStore(cfg.PostgresDSN, engine)
	case StorageRedis:
		return redis.NewStore(cfg.RedisAddr, engine)
	case StorageS3:
		return s3store.New(ctx, cfg.S3, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
