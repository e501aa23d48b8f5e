package watchlist

import (
	"context"
	"encoding/json"
	"time"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
)

// StorageKey is the key the symbol list is stored under, as a JSON array
const StorageKey = "watchlist"

const storageTimeout = 5 * time.Second

// -----------------------------------------------------------------------------

// Persistence adapts a key-value store to the watchlist symbol list
type Persistence struct {
	Store  interfaces.IKeyValueStore
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPersistence(store interfaces.IKeyValueStore, log *logger.Logger) *Persistence {
	return &Persistence{Store: store, Logger: log}
}

// -----------------------------------------------------------------------------

// Load returns the persisted symbols. Missing, unreadable or corrupt data
// yields an empty list.
func (p *Persistence) Load() []string {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	raw, ok, err := p.Store.Get(ctx, StorageKey)
	if err != nil {
		p.Logger.Warning("Watchlist storage unavailable, starting empty: %v", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		p.Logger.Warning("Discarding corrupt watchlist data: %v", err)
		return []string{}
	}

	return NewWatchlist(stored).Symbols()
}

// -----------------------------------------------------------------------------

// Save writes the symbols as a JSON array
func (p *Persistence) Save(symbols []string) error {
	if symbols == nil {
		symbols = []string{}
	}
	data, err := json.Marshal(symbols)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := p.Store.Put(ctx, StorageKey, string(data)); err != nil {
		p.Logger.Error("Failed to persist watchlist: %v", err)
		return &helpers.StorageError{WatchlistError: helpers.WatchlistError{Message: "failed to persist watchlist", Cause: err}}
	}
	return nil
}
