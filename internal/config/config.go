package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Upstream    UpstreamConfig  `mapstructure:"upstream"`
	Session     SessionConfig   `mapstructure:"session"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Demo        DemoConfig      `mapstructure:"demo"`
	Fixtures    FixturesConfig  `mapstructure:"fixtures"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
}

// HTTPConfig contains HTTP server settings
type HTTPConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	IdleTimeout    int `mapstructure:"idle_timeout"`
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`
}

// UpstreamConfig contains the Sentinel platform endpoints the console talks to
type UpstreamConfig struct {
	SentinelBaseURL string `mapstructure:"sentinel_base_url"`
	RulesBaseURL    string `mapstructure:"rules_base_url"`
	UploadPath      string `mapstructure:"upload_path"`
	Timeout         int    `mapstructure:"timeout"` // seconds
	MaxRetries      int    `mapstructure:"max_retries"`
	// Required disables the fixture fallback for reads: upstream failures
	// propagate instead of being absorbed.
	Required bool `mapstructure:"required"`
	CacheTTL int  `mapstructure:"cache_ttl"` // seconds
}

// SessionConfig selects and tunes the durable session store
type SessionConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "redis"
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	Database     int    `mapstructure:"database"`
	MaxRetries   int    `mapstructure:"max_retries"`
	DialTimeout  int    `mapstructure:"dial_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	PoolSize     int    `mapstructure:"pool_size"`
}

// DemoConfig controls demo-mode authentication: when enabled, any credentials
// are accepted and a locally signed token is issued if the upstream auth
// endpoint is unreachable.
type DemoConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenDuration int    `mapstructure:"token_duration"` // minutes
	Issuer        string `mapstructure:"issuer"`
}

// FixturesConfig tunes the deterministic fallback data set
type FixturesConfig struct {
	Seed            int64 `mapstructure:"seed"`
	SimulateLatency bool  `mapstructure:"simulate_latency"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig contains metrics and monitoring configuration
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// UpstreamTimeout returns the upstream call timeout as a duration.
func (c UpstreamConfig) UpstreamTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set environment variable prefix
	viper.SetEnvPrefix("SENTINEL_CONSOLE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	setDefaults()

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	overrideWithEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("environment", "development")
	viper.SetDefault("server.http.port", 8090)
	viper.SetDefault("server.http.read_timeout", 30)
	viper.SetDefault("server.http.write_timeout", 30)
	viper.SetDefault("server.http.idle_timeout", 120)
	viper.SetDefault("server.http.max_header_bytes", 1048576)

	// Upstream defaults match the Sentinel deployment layout
	viper.SetDefault("upstream.sentinel_base_url", "http://localhost:8080")
	viper.SetDefault("upstream.rules_base_url", "http://localhost:8081")
	viper.SetDefault("upstream.upload_path", "/api/v1/ews/consents/upload")
	viper.SetDefault("upstream.timeout", 10)
	viper.SetDefault("upstream.max_retries", 0)
	viper.SetDefault("upstream.required", false)
	viper.SetDefault("upstream.cache_ttl", 30)

	// Session defaults
	viper.SetDefault("session.backend", "memory")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.dial_timeout", 5)
	viper.SetDefault("redis.read_timeout", 3)
	viper.SetDefault("redis.write_timeout", 3)
	viper.SetDefault("redis.pool_size", 10)

	// Demo-mode defaults
	viper.SetDefault("demo.enabled", true)
	viper.SetDefault("demo.jwt_secret", "sentinel-console-demo")
	viper.SetDefault("demo.token_duration", 480)
	viper.SetDefault("demo.issuer", "sentinel-console")

	// Fixture defaults: seed 0 means time-seeded sampling
	viper.SetDefault("fixtures.seed", 0)
	viper.SetDefault("fixtures.simulate_latency", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.endpoint", "/metrics")
}

// overrideWithEnvVars overrides configuration with environment variables
func overrideWithEnvVars() {
	if url := os.Getenv("SENTINEL_BASE_URL"); url != "" {
		viper.Set("upstream.sentinel_base_url", url)
	}
	if url := os.Getenv("RULES_BASE_URL"); url != "" {
		viper.Set("upstream.rules_base_url", url)
	}

	// Redis environment variables
	if host := os.Getenv("REDIS_HOST"); host != "" {
		viper.Set("redis.host", host)
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		viper.Set("redis.port", port)
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		viper.Set("redis.password", password)
	}

	// Security environment variables
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		viper.Set("demo.jwt_secret", jwtSecret)
	}
}
