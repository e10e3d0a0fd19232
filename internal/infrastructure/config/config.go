package config

import (
	"bufio"
	"os"
	"strings"
	"time"

	apperrors "ethereum-block-explorer/pkg/errors"

	"github.com/spf13/viper"
)

// Cache drivers
const (
	CacheDriverNone    = "none"
	CacheDriverMongoDB = "mongodb"
	CacheDriverPebble  = "pebble"
)

// Config represents application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Ethereum EthereumConfig `mapstructure:"ethereum"`
	Explorer ExplorerConfig `mapstructure:"explorer"`
	Cache    CacheConfig    `mapstructure:"cache"`
	MongoDB  MongoDBConfig  `mapstructure:"mongodb"`
	NATS     NATSConfig     `mapstructure:"nats"`
}

// AppConfig represents application configuration
type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// EthereumConfig represents Ethereum network configuration
type EthereumConfig struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	Network        string        `mapstructure:"network"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimit      time.Duration `mapstructure:"rate_limit"`
}

// ExplorerConfig represents aggregation engine configuration
type ExplorerConfig struct {
	FetchWorkers    int `mapstructure:"fetch_workers"`
	ClassifyWorkers int `mapstructure:"classify_workers"`
}

// CacheConfig represents block cache configuration
type CacheConfig struct {
	Driver     string `mapstructure:"driver"`
	PebblePath string `mapstructure:"pebble_path"`
}

// MongoDBConfig represents MongoDB configuration
type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

// NATSConfig represents NATS JetStream configuration
type NATSConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	StreamName        string        `mapstructure:"stream_name"`
	SubjectPrefix     string        `mapstructure:"subject_prefix"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	ReconnectAttempts int           `mapstructure:"reconnect_attempts"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
}

// loadEnvFile manually loads environment variables from .env file
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() (*Config, error) {
	// Load .env file manually first
	if _, err := os.Stat(".env"); err == nil {
		if err := loadEnvFile(); err != nil {
			return nil, apperrors.NewConfigurationError("failed to load .env file", err)
		}
	}

	v := viper.New()

	setDefaults(v)
	bindEnvVars(v)
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, apperrors.NewConfigurationError("failed to decode configuration", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration for values the explorer cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Ethereum.RPCURL) == "" {
		return apperrors.NewConfigurationError("ethereum rpc url is not configured (set ETHEREUM_RPC_URL or INFURA_ENDPOINT)", nil)
	}

	switch c.Cache.Driver {
	case CacheDriverNone, CacheDriverMongoDB:
	case CacheDriverPebble:
		if c.Cache.PebblePath == "" {
			return apperrors.NewConfigurationError("pebble cache requires cache.pebble_path", nil)
		}
	default:
		return apperrors.NewConfigurationError("unknown cache driver: "+c.Cache.Driver, nil)
	}

	if c.Explorer.FetchWorkers <= 0 {
		return apperrors.NewConfigurationError("explorer.fetch_workers must be positive", nil)
	}
	if c.Explorer.ClassifyWorkers <= 0 {
		return apperrors.NewConfigurationError("explorer.classify_workers must be positive", nil)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "warn")

	// Ethereum defaults
	v.SetDefault("ethereum.network", "ethereum")
	v.SetDefault("ethereum.request_timeout", "30s")
	v.SetDefault("ethereum.rate_limit", "0s")

	// Explorer defaults
	v.SetDefault("explorer.fetch_workers", 1)
	v.SetDefault("explorer.classify_workers", 8)

	// Cache defaults
	v.SetDefault("cache.driver", CacheDriverNone)
	v.SetDefault("cache.pebble_path", "./data/blocks")

	// MongoDB defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "block_explorer")
	v.SetDefault("mongodb.collection", "blocks")
	v.SetDefault("mongodb.connect_timeout", "10s")
	v.SetDefault("mongodb.max_pool_size", 10)

	// NATS defaults
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream_name", "BLOCK_EXPLORER")
	v.SetDefault("nats.subject_prefix", "explorer")
	v.SetDefault("nats.connect_timeout", "10s")
	v.SetDefault("nats.reconnect_attempts", 5)
	v.SetDefault("nats.reconnect_delay", "2s")
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.log_level", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.rpc_url", "ETHEREUM_RPC_URL", "INFURA_ENDPOINT")
	v.BindEnv("ethereum.network", "ETHEREUM_NETWORK")
	v.BindEnv("ethereum.request_timeout", "ETHEREUM_REQUEST_TIMEOUT")
	v.BindEnv("ethereum.rate_limit", "ETHEREUM_RATE_LIMIT")

	// Explorer
	v.BindEnv("explorer.fetch_workers", "FETCH_WORKERS")
	v.BindEnv("explorer.classify_workers", "CLASSIFY_WORKERS")

	// Cache
	v.BindEnv("cache.driver", "CACHE_DRIVER")
	v.BindEnv("cache.pebble_path", "PEBBLE_PATH")

	// MongoDB
	v.BindEnv("mongodb.uri", "MONGO_URI")
	v.BindEnv("mongodb.database", "MONGO_DATABASE")
	v.BindEnv("mongodb.collection", "MONGO_COLLECTION")
	v.BindEnv("mongodb.connect_timeout", "MONGO_CONNECT_TIMEOUT")
	v.BindEnv("mongodb.max_pool_size", "MONGO_MAX_POOL_SIZE")

	// NATS
	v.BindEnv("nats.enabled", "NATS_ENABLED")
	v.BindEnv("nats.url", "NATS_URL")
	v.BindEnv("nats.stream_name", "NATS_STREAM_NAME")
	v.BindEnv("nats.subject_prefix", "NATS_SUBJECT_PREFIX")
	v.BindEnv("nats.connect_timeout", "NATS_CONNECT_TIMEOUT")
	v.BindEnv("nats.reconnect_attempts", "NATS_RECONNECT_ATTEMPTS")
	v.BindEnv("nats.reconnect_delay", "NATS_RECONNECT_DELAY")
}
