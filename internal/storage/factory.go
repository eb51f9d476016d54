// Package storage persists small pieces of client state (bearer token, theme,
// starred feedback) behind a swappable key-value backend.
package storage

import (
	"context"
	"fmt"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/storage/redis"
	"github.com/bobmcallan/feedpulse/internal/storage/sqlite"
	"github.com/bobmcallan/feedpulse/internal/storage/surrealdb"
)

// Backend type constants.
const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendRedis     = "redis"
	BackendSurrealDB = "surrealdb"
)

// NewKeyValueStore creates a store based on the configuration.
// Supported backends: "sqlite" (default), "memory", "redis", "surrealdb".
func NewKeyValueStore(ctx context.Context, logger *common.Logger, config common.StorageConfig) (interfaces.KeyValueStore, error) {
	backend := config.Backend
	if backend == "" {
		backend = BackendSQLite
	}

	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil

	case BackendSQLite:
		return sqlite.New(config.SQLite.Path, logger)

	case BackendRedis:
		return redis.New(ctx, config.Redis, logger)

	case BackendSurrealDB:
		return surrealdb.Connect(ctx, config.SurrealDB, logger)

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: memory, sqlite, redis, surrealdb)", backend)
	}
}
