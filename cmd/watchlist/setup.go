package main

import (
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/network"
	"stock-watchlist/src/storage"
	"stock-watchlist/src/utils"
	"stock-watchlist/src/watchlist"
)

// -----------------------------------------------------------------------------

// setupPersistence opens the configured key-value store. A store that fails to
// open is still returned: reads then come back empty and writes are logged,
// so the watchlist keeps working in memory.
func setupPersistence() *watchlist.Persistence {
	storeLogger := logger.NewLogger("Storage")

	store, err := storage.NewStore(cfg.MConfig, storeLogger)
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Warning("Storage unavailable, watchlist changes will not be persisted: %v", err)
	}

	return watchlist.NewPersistence(store, storeLogger)
}

// -----------------------------------------------------------------------------

func setupNetwork() interfaces.INetworkManager {
	return network.NewAsyncNetworkManager(cfg.MConfig, logger.NewLogger("NetworkManager"))
}

// -----------------------------------------------------------------------------

// setupEngine wires a refresh engine on wall-clock timers
func setupEngine(quotes interfaces.IQuoteService, store interfaces.IWatchlistStore) *watchlist.Engine {
	fanout := watchlist.NewFanout(quotes, cfg.Watchlist.MaxConcurrentFetches, cfg.FetchTimeout(), logger.NewLogger("Fanout"))

	engine := watchlist.NewEngine(store, fanout, utils.NewTickerScheduler(), cfg.RefreshInterval(), logger.NewLogger("WatchlistEngine"))
	engine.Market = utils.NewMarketScheduler(logger.NewLogger("MarketScheduler"))
	return engine
}
