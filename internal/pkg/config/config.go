package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	RouteCache RouteCacheConfig `mapstructure:"routecache"`
	Routing    RoutingConfig    `mapstructure:"routing"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ProviderConfig controls the outbound routing-provider client.
type ProviderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
	BackoffMS      int    `mapstructure:"backoff_ms"`
}

func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func (p ProviderConfig) Backoff() time.Duration {
	return time.Duration(p.BackoffMS) * time.Millisecond
}

// RouteCacheConfig bounds the in-process route memoization.
type RouteCacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
	Capacity   int `mapstructure:"capacity"`
	Precision  int `mapstructure:"precision"` // decimal degrees kept in cache keys
}

func (r RouteCacheConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// RoutingConfig governs the per-request aggregation.
type RoutingConfig struct {
	Profiles        []string `mapstructure:"profiles"`
	DeadlineSeconds int      `mapstructure:"deadline_seconds"`
}

func (r RoutingConfig) Deadline() time.Duration {
	return time.Duration(r.DeadlineSeconds) * time.Second
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "guide")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "localguide")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("provider.base_url", "https://router.project-osrm.org")
	v.SetDefault("provider.timeout_seconds", 5)
	v.SetDefault("provider.max_retries", 2)
	v.SetDefault("provider.backoff_ms", 250)
	v.SetDefault("routecache.ttl_seconds", 300)
	v.SetDefault("routecache.capacity", 1024)
	v.SetDefault("routecache.precision", 4)
	v.SetDefault("routing.profiles", []string{"walking", "driving", "cycling"})
	v.SetDefault("routing.deadline_seconds", 10)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: LOCALGUIDE_PROVIDER_BASE_URL → provider.base_url
	v.SetEnvPrefix("LOCALGUIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Provider.BaseURL == "" {
		errs = append(errs, "provider.base_url is required")
	}
	if c.Provider.TimeoutSeconds <= 0 {
		errs = append(errs, "provider.timeout_seconds must be positive")
	}
	if c.Provider.MaxRetries < 0 {
		errs = append(errs, "provider.max_retries must not be negative")
	}
	if c.RouteCache.TTLSeconds <= 0 {
		errs = append(errs, "routecache.ttl_seconds must be positive")
	}
	if c.RouteCache.Capacity <= 0 {
		errs = append(errs, "routecache.capacity must be positive")
	}
	if c.RouteCache.Precision < 0 || c.RouteCache.Precision > 7 {
		errs = append(errs, fmt.Sprintf("routecache.precision must be 0-7, got %d", c.RouteCache.Precision))
	}
	if len(c.Routing.Profiles) == 0 {
		errs = append(errs, "routing.profiles must name at least one profile")
	}
	if c.Routing.DeadlineSeconds <= 0 {
		errs = append(errs, "routing.deadline_seconds must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
