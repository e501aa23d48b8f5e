package datasource

import (
	"fmt"
	"strings"

	"stock-watchlist/src/config"
	"stock-watchlist/src/data_source/finnhub"
	"stock-watchlist/src/data_source/yahoo"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
)

const cacheSize = 512

// -----------------------------------------------------------------------------

// NewUpstream builds the provider chain named by the upstream config: the
// primary provider, then any fallbacks, behind the quote cache.
func NewUpstream(cfg *config.Config, netMgr interfaces.INetworkManager, log *logger.Logger) (interfaces.IUpstream, error) {
	names := append([]string{cfg.Upstream.Provider}, cfg.Upstream.FallbackProviders...)

	var sources []interfaces.IUpstream
	for i, name := range names {
		// base_url overrides the primary provider only
		baseURL := ""
		if i == 0 {
			baseURL = cfg.Upstream.BaseURL
		}

		switch strings.ToLower(name) {
		case "finnhub":
			if cfg.APIKey == "" {
				log.Warning("%s is not set; Finnhub will reject requests", config.APIKeyEnv)
			}
			sources = append(sources, finnhub.NewFinnhubSource(baseURL, cfg.APIKey, netMgr))
		case "yahoo":
			sources = append(sources, yahoo.NewYahooFinanceSource(baseURL, netMgr))
		default:
			return nil, fmt.Errorf("unsupported upstream provider: %s", name)
		}
	}

	var upstream interfaces.IUpstream = sources[0]
	if len(sources) > 1 {
		upstream = NewMultiSourceManager(sources, log)
	}

	log.Info("Upstream: %s (cache ttl %s)", upstream.Name(), cfg.CacheTTL())
	return NewCacheSource(upstream, cfg.CacheTTL(), cacheSize), nil
}
