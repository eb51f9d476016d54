// Package surrealdb is a KeyValueStore on SurrealDB. Each key is a record in
// the client_kv table.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/feedpulse/internal/common"
	"github.com/bobmcallan/feedpulse/internal/interfaces"
)

const kvTable = "client_kv"

type kvRecord struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KVStore implements interfaces.KeyValueStore.
type KVStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	owned  bool
}

var _ interfaces.KeyValueStore = (*KVStore)(nil)

// Connect dials SurrealDB, signs in, selects the namespace and database, and
// defines the KV table.
func Connect(ctx context.Context, cfg common.SurrealConfig, logger *common.Logger) (*KVStore, error) {
	db, err := surrealdb.New(cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": cfg.Username,
		"pass": cfg.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	s, err := NewKVStore(ctx, db, logger)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	s.owned = true

	logger.Info().
		Str("address", cfg.Address).
		Str("namespace", cfg.Namespace).
		Str("database", cfg.Database).
		Msg("SurrealDB key-value store initialized")
	return s, nil
}

// NewKVStore wraps an open connection. The table is defined if missing
// because SurrealDB v3 errors on querying tables that do not exist.
func NewKVStore(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*KVStore, error) {
	sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", kvTable)
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return nil, fmt.Errorf("failed to define table %s: %w", kvTable, err)
	}
	return &KVStore{db: db, logger: logger}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	rec, err := surrealdb.Select[kvRecord](ctx, s.db, surrealmodels.NewRecordID(kvTable, key))
	if err != nil {
		return "", fmt.Errorf("failed to select %s: %w", key, err)
	}
	if rec == nil {
		return "", interfaces.ErrKeyNotFound
	}
	return rec.Value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	sql := "UPSERT type::record($tb, $id) CONTENT $kv"
	vars := map[string]any{"tb": kvTable, "id": key, "kv": kvRecord{Key: key, Value: value}}

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		if _, err = surrealdb.Query[[]kvRecord](ctx, s.db, sql, vars); err == nil {
			return nil
		}
		s.logger.Debug().Err(err).Int("attempt", attempt).Str("key", key).Msg("KV upsert failed")
	}
	return fmt.Errorf("failed to set %s after retries: %w", key, err)
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := surrealdb.Delete[kvRecord](ctx, s.db, surrealmodels.NewRecordID(kvTable, key)); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the connection when the store opened it.
func (s *KVStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close(context.Background())
}
