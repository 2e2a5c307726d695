package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/codetesla51/storeguard/config"
	"github.com/codetesla51/storeguard/guard"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	s, closeStore, err := cfg.OpenStore()
	if err != nil {
		logger.Fatal("open store", zap.String("backend", cfg.Backend), zap.Error(err))
	}
	defer closeStore()

	var g *guard.Guard
	if cfg.EagerEvict {
		g = guard.Install(s, cfg.Guard(), logger)
	} else {
		g = guard.New(s, cfg.Guard(), logger)
	}

	writes := []struct {
		key   string
		value string
	}{
		{cfg.CacheKey, strings.Repeat("x", cfg.MaxCacheLen+1)},
		{cfg.CacheKey, "small"},
		{cfg.StoreKey, `{"state":{"connections":{}}}`},
		{"app.settings", `{"theme":"dark"}`},
	}
	for _, w := range writes {
		outcome, err := g.Write(w.key, w.value)
		if err != nil {
			println("Write to", w.key, "failed:", err.Error())
			continue
		}
		println("Write to", w.key, "->", outcome.String())
	}

	st := g.Stats()
	logger.Info("done",
		zap.Uint64("written", st.Written),
		zap.Uint64("rejected", st.RejectedOversized),
		zap.Uint64("recovered", st.RecoveredAfterEvict),
		zap.Uint64("failed", st.FailedAfterRetry),
		zap.Uint64("evicted_keys", st.EvictedKeys))
}
