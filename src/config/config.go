package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"stock-watchlist/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv names the environment variable carrying the upstream API key
const APIKeyEnv = "FINNHUB_API_KEY"

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig

	// APIKey is read from the environment (or a .env file), never from YAML
	APIKey string `yaml:"-"`
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Secrets come from the environment; a missing .env file is fine
	_ = godotenv.Load()
	config.APIKey = getEnv(APIKeyEnv, "")

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
	if c.Upstream.Provider == "" {
		c.Upstream.Provider = "finnhub"
	}
	if c.Watchlist.RefreshIntervalSeconds == 0 {
		c.Watchlist.RefreshIntervalSeconds = 60
	}
	if c.Watchlist.APIBaseURL == "" && c.Host != "" && c.Port != 0 {
		c.Watchlist.APIBaseURL = fmt.Sprintf("http://%s:%d", c.Host, c.Port)
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	case "":
		return fmt.Errorf("database type cannot be empty")
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate Upstream configuration
	for _, provider := range append([]string{c.Upstream.Provider}, c.Upstream.FallbackProviders...) {
		switch strings.ToLower(provider) {
		case "finnhub", "yahoo":
		default:
			return fmt.Errorf("unsupported upstream provider: %s", provider)
		}
	}
	if c.Upstream.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}

	// Validate Watchlist configuration
	if c.Watchlist.RefreshIntervalSeconds <= 0 {
		return fmt.Errorf("refresh interval must be greater than 0")
	}
	if c.Watchlist.MaxConcurrentFetches < 0 {
		return fmt.Errorf("max concurrent fetches cannot be negative")
	}
	if c.Watchlist.FetchTimeoutSeconds < 0 {
		return fmt.Errorf("fetch timeout cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Watchlist.RefreshIntervalSeconds) * time.Second
}

// -----------------------------------------------------------------------------

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Watchlist.FetchTimeoutSeconds) * time.Second
}

// -----------------------------------------------------------------------------

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Upstream.CacheTTLSeconds) * time.Second
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
