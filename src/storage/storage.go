package storage

import (
	"errors"
	"fmt"

	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"
)

var errNotInitialized = errors.New("storage not initialized")

// -----------------------------------------------------------------------------

// NewStore builds the key-value store selected by storage.db_type. The caller
// still has to Initialize it.
func NewStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IKeyValueStore, error) {
	switch cfg.Storage.DBType {
	case "sqlite":
		return NewAsyncSQLiteDB(cfg, log)
	case "postgres":
		return NewPostgresDB(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Storage.DBType)
	}
}
