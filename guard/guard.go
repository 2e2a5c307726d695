// Package guard keeps a wallet library's cache from filling persistent storage.
//
// A Guard wraps a store.Store. Writes of oversized values to the cache key are
// dropped, and a write that hits the storage quota evicts the wallet keys and
// is retried once. Hand the Guard, not the raw store, to every component that
// writes to storage.
package guard

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/codetesla51/storeguard/store"
)

const (
	DefaultCacheKey         = "wagmi.cache"
	DefaultStoreKey         = "wagmi.store"
	DefaultWalletKey        = "wagmi.wallet"
	DefaultMaxCacheValueLen = 100_000
)

type Config struct {
	CacheKey  string
	StoreKey  string
	WalletKey string

	// MaxCacheValueLen is the largest value, in characters, accepted for
	// CacheKey. It does not apply to any other key.
	MaxCacheValueLen int
}

func DefaultConfig() Config {
	return Config{
		CacheKey:         DefaultCacheKey,
		StoreKey:         DefaultStoreKey,
		WalletKey:        DefaultWalletKey,
		MaxCacheValueLen: DefaultMaxCacheValueLen,
	}
}

// Keys returns the recognized keys in eviction order.
func (c Config) Keys() []string {
	return []string{c.CacheKey, c.StoreKey, c.WalletKey}
}

var _ store.Store = (*Guard)(nil)

type Guard struct {
	next      store.Store
	cfg       Config
	log       *zap.Logger
	installed atomic.Bool

	written   atomic.Uint64
	rejected  atomic.Uint64
	recovered atomic.Uint64
	failed    atomic.Uint64
	evicted   atomic.Uint64
}

// New wraps next without touching storage. Most callers want Install.
func New(next store.Store, cfg Config, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		next: next,
		cfg:  cfg,
		log:  logger.Named("storeguard"),
	}
}

// Install wraps next and evicts the recognized keys once. Call it before
// anything else writes to the store. It never fails.
func Install(next store.Store, cfg Config, logger *zap.Logger) *Guard {
	g := New(next, cfg, logger)
	n := g.Evict()
	g.installed.Store(true)
	g.log.Info("storage guard installed", zap.Int("evicted", n))
	return g
}

func (g *Guard) Installed() bool {
	return g.installed.Load()
}

// Evict deletes the recognized keys and returns how many were removed.
// Failures are logged and otherwise ignored.
func (g *Guard) Evict() int {
	removed := 0
	for _, key := range g.cfg.Keys() {
		err := g.next.Delete(key)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, store.ErrKeyNotFound):
		default:
			g.log.Warn("evict key", zap.String("key", key), zap.Error(err))
		}
	}
	g.evicted.Add(uint64(removed))
	return removed
}

// Write is the guarded write. Only an error the guard cannot remedy is
// returned: a non-quota failure of the first attempt, unchanged. The
// Outcome means nothing when err is non-nil.
func (g *Guard) Write(key, value string) (Outcome, error) {
	if key == g.cfg.CacheKey {
		if n := store.Len(value); n > g.cfg.MaxCacheValueLen {
			g.log.Warn("blocked oversized cache write",
				zap.String("key", key),
				zap.Int("length", n),
				zap.Int("limit", g.cfg.MaxCacheValueLen))
			g.rejected.Add(1)
			return RejectedOversized, nil
		}
	}

	err := g.next.Set(key, value)
	if err == nil {
		g.written.Add(1)
		return Written, nil
	}
	if !store.IsQuotaExceeded(err) {
		return Written, err
	}

	g.log.Warn("storage quota exceeded, evicting wallet keys",
		zap.String("key", key),
		zap.Error(err))
	g.Evict()

	if err := g.next.Set(key, value); err != nil {
		g.log.Error("write failed after eviction",
			zap.String("key", key),
			zap.Int("length", store.Len(value)),
			zap.Error(err))
		g.failed.Add(1)
		return FailedAfterRetry, nil
	}
	g.recovered.Add(1)
	return RecoveredAfterEvict, nil
}

// Set has the signature of store.Writer so the Guard can stand in for the
// raw store. Use Write to see the outcome.
func (g *Guard) Set(key, value string) error {
	_, err := g.Write(key, value)
	return err
}

func (g *Guard) Get(key string) (string, error) {
	return g.next.Get(key)
}

func (g *Guard) Delete(key string) error {
	return g.next.Delete(key)
}

func (g *Guard) Exists(key string) bool {
	return g.next.Exists(key)
}

func (g *Guard) Stats() Stats {
	return Stats{
		Written:             g.written.Load(),
		RejectedOversized:   g.rejected.Load(),
		RecoveredAfterEvict: g.recovered.Load(),
		FailedAfterRetry:    g.failed.Load(),
		EvictedKeys:         g.evicted.Load(),
	}
}
