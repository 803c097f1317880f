package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradereflex/config"
	"github.com/rustyeddy/tradereflex/feed"
	"github.com/rustyeddy/tradereflex/journal"
	"github.com/rustyeddy/tradereflex/metrics"
)

type closeFunc func() error

func nopClose() error { return nil }

// buildProvider assembles the configured data source, instrumented and
// optionally cached.
func buildProvider(ctx context.Context, cfg *config.Config, rec *metrics.Recorder, log zerolog.Logger) (feed.Provider, closeFunc, error) {
	var base feed.Provider
	switch cfg.Provider.Type {
	case "yahoo":
		timeout, err := config.Duration(cfg.Provider.Timeout, 30*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("provider.timeout: %w", err)
		}
		y, err := feed.NewYahooProvider(feed.YahooOptions{
			BaseURL: cfg.Provider.BaseURL,
			Timeout: timeout,
			Proxy:   cfg.Provider.Proxy,
		})
		if err != nil {
			return nil, nil, err
		}
		base = y
	case "synthetic":
		base = feed.NewSyntheticProvider(cfg.Provider.Seed)
	default:
		return nil, nil, fmt.Errorf("unknown provider type %q", cfg.Provider.Type)
	}
	base = feed.Instrument(base, rec)

	ttl, err := config.Duration(cfg.Cache.TTL, 5*time.Minute)
	if err != nil {
		return nil, nil, fmt.Errorf("cache.ttl: %w", err)
	}
	switch cfg.Cache.Type {
	case "", "none":
		return base, nopClose, nil
	case "memory":
		return feed.NewCachedProvider(base, feed.NewMemoryCache(ttl), log), nopClose, nil
	case "redis":
		rc, err := feed.NewRedisCache(ctx, feed.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      ttl,
		})
		if err != nil {
			return nil, nil, err
		}
		return feed.NewCachedProvider(base, rc, log), rc.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
}

func buildJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.AccountsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
}
