package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codetesla51/storeguard/guard"
	"github.com/codetesla51/storeguard/store"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend string `env:"STOREGUARD_BACKEND" envDefault:"memory"`
	// QuotaChars mirrors the usual 5 MiB per-origin browser limit.
	QuotaChars int `env:"STOREGUARD_QUOTA_CHARS" envDefault:"5242880"`

	RedisAddr      string `env:"STOREGUARD_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisNamespace string `env:"STOREGUARD_REDIS_NAMESPACE" envDefault:"storeguard"`
	DatabaseDSN    string `env:"STOREGUARD_DATABASE_DSN"`
	Origin         string `env:"STOREGUARD_ORIGIN" envDefault:"http://localhost:5173"`

	CacheKey    string `env:"STOREGUARD_CACHE_KEY" envDefault:"wagmi.cache"`
	StoreKey    string `env:"STOREGUARD_STORE_KEY" envDefault:"wagmi.store"`
	WalletKey   string `env:"STOREGUARD_WALLET_KEY" envDefault:"wagmi.wallet"`
	MaxCacheLen int    `env:"STOREGUARD_MAX_CACHE_LEN" envDefault:"100000"`
	// EagerEvict drops the wallet keys at startup, which signs the user
	// out of their wallet session on every start.
	EagerEvict bool `env:"STOREGUARD_EAGER_EVICT" envDefault:"true"`

	LogLevel  string `env:"STOREGUARD_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"STOREGUARD_LOG_FORMAT" envDefault:"console"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseDSN) == "" {
			return fmt.Errorf("STOREGUARD_DATABASE_DSN is required for the %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("invalid STOREGUARD_BACKEND %q (allowed: memory, redis, postgres)", c.Backend)
	}

	if c.MaxCacheLen <= 0 {
		return fmt.Errorf("STOREGUARD_MAX_CACHE_LEN must be positive, got %d", c.MaxCacheLen)
	}
	if c.CacheKey == "" || c.StoreKey == "" || c.WalletKey == "" {
		return fmt.Errorf("recognized storage keys must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid STOREGUARD_LOG_LEVEL: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid STOREGUARD_LOG_FORMAT %q (allowed: console, json)", c.LogFormat)
	}
	return nil
}

func (c *Config) Guard() guard.Config {
	return guard.Config{
		CacheKey:         c.CacheKey,
		StoreKey:         c.StoreKey,
		WalletKey:        c.WalletKey,
		MaxCacheValueLen: c.MaxCacheLen,
	}
}

// OpenStore connects the configured backend. The returned close func is
// never nil.
func (c *Config) OpenStore() (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch c.Backend {
	case BackendMemory:
		return store.NewMemoryStoreWithQuota(c.QuotaChars), noop, nil
	case BackendRedis:
		rs, err := store.NewRedisStore(c.RedisAddr, c.RedisNamespace)
		if err != nil {
			return nil, noop, err
		}
		return rs, rs.Close, nil
	case BackendPostgres:
		ds, err := store.NewDatabaseStore(c.DatabaseDSN, c.Origin, c.QuotaChars)
		if err != nil {
			return nil, noop, err
		}
		return ds, ds.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown backend %q", c.Backend)
	}
}

// Logger builds a zap logger for the configured level and format.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
