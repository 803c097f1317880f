package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradereflex/market"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Cache stores fetched series keyed by CacheKey.
type Cache interface {
	Get(ctx context.Context, key string) (*market.Series, error)
	Set(ctx context.Context, key string, s *market.Series) error
}

func CacheKey(symbol string, tf market.Timeframe, period string) string {
	return fmt.Sprintf("bars:%s:%s:%s", symbol, tf, period)
}

type memoryItem struct {
	series   *market.Series
	expireAt time.Time
}

// MemoryCache is an in-process Cache with a fixed TTL. Expired entries
// are dropped lazily on read.
type MemoryCache struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]memoryItem
	now  func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:  ttl,
		data: make(map[string]memoryItem),
		now:  time.Now,
	}
}

func (mc *MemoryCache) Get(_ context.Context, key string) (*market.Series, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	item, ok := mc.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if mc.now().After(item.expireAt) {
		delete(mc.data, key)
		return nil, ErrCacheMiss
	}
	return item.series, nil
}

func (mc *MemoryCache) Set(_ context.Context, key string, s *market.Series) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.data[key] = memoryItem{series: s, expireAt: mc.now().Add(mc.ttl)}
	return nil
}

// CachedProvider serves fetches from a Cache and falls back to the
// wrapped Provider on a miss. Cache failures are logged, never returned.
type CachedProvider struct {
	Provider Provider
	Cache    Cache
	Log      zerolog.Logger
}

func NewCachedProvider(p Provider, c Cache, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{Provider: p, Cache: c, Log: log}
}

func (cp *CachedProvider) FetchBars(ctx context.Context, symbol string, tf market.Timeframe, period string) (*market.Series, error) {
	key := CacheKey(symbol, tf, period)
	s, err := cp.Cache.Get(ctx, key)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		cp.Log.Warn().Err(err).Str("key", key).Msg("series cache read failed")
	}

	s, err = cp.Provider.FetchBars(ctx, symbol, tf, period)
	if err != nil {
		return nil, err
	}
	if err := cp.Cache.Set(ctx, key, s); err != nil {
		cp.Log.Warn().Err(err).Str("key", key).Msg("series cache write failed")
	}
	return s, nil
}
