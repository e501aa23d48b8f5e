package interfaces

import "stock-watchlist/src/models"

// -----------------------------------------------------------------------------
// IWatchlistStore persists the ordered set of watched symbols.
// -----------------------------------------------------------------------------

type IWatchlistStore interface {

	// Load never fails: missing or corrupt data yields an empty list.
	Load() []string

	// Save writes the full symbol list. Failures are reported, not fatal.
	Save(symbols []string) error
}

// -----------------------------------------------------------------------------
// IWatchlistEngine is the mounted view consumed by transports.
// -----------------------------------------------------------------------------

type IWatchlistEngine interface {
	Add(symbol string) bool
	Remove(symbol string) bool
	Snapshot(sortOption, filterText string) models.MWatchlistSnapshot
	State() models.EngineState
	Subscribe(fn func()) (unsubscribe func())
}
