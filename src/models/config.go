package models

// MConfig Structure
type MConfig struct {
	Name      string           `yaml:"name"`
	Host      string           `yaml:"host"`
	Port      int              `yaml:"port"`
	LogLevel  string           `yaml:"log_level"`
	LogFormat string           `yaml:"log_format"`
	LogDir    string           `yaml:"log_dir"`
	GrpcHost  string           `yaml:"grpc_host"`
	GrpcPort  int              `yaml:"grpc_port"`
	Storage   MStorageConfig   `yaml:"storage"`
	Network   MNetworkConfig   `yaml:"network"`
	Upstream  MUpstreamConfig  `yaml:"upstream"`
	Watchlist MWatchlistConfig `yaml:"watchlist"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout"`
	MaxRetries     int      `yaml:"retries"`
	UserAgent      string   `yaml:"user_agent"`
}

// MUpstreamConfig selects the market data provider behind the quote proxy.
type MUpstreamConfig struct {
	Provider          string   `yaml:"provider"` // finnhub | yahoo
	BaseURL           string   `yaml:"base_url"`
	FallbackProviders []string `yaml:"fallback_providers"`
	CacheTTLSeconds   int      `yaml:"cache_ttl_seconds"`
}

type MWatchlistConfig struct {
	APIBaseURL             string `yaml:"api_base_url"`
	RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"`
	MaxConcurrentFetches   int    `yaml:"max_concurrent_fetches"` // 0 = unlimited
	FetchTimeoutSeconds    int    `yaml:"fetch_timeout_seconds"`  // 0 = no per-symbol deadline
}
