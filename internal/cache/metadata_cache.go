package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
	"github.com/wonny/warroom/pkg/redis"
)

type metadataEntry struct {
	meta      contracts.Metadata
	fetchedAt time.Time
}

// MetadataCache is an in-memory TTL cache of per-ticker provider metadata.
// An enabled redis.Cache acts as a shared second tier.
// ⭐ SSOT: 메타데이터 캐싱은 이 구조체에서만
type MetadataCache struct {
	mu      sync.RWMutex
	entries map[string]metadataEntry
	ttl     time.Duration
	remote  *redis.Cache
	logger  *logger.Logger
	now     func() time.Time
}

// NewMetadataCache creates a metadata cache. remote may be nil.
func NewMetadataCache(ttl time.Duration, remote *redis.Cache, log *logger.Logger) *MetadataCache {
	if ttl <= 0 {
		ttl = redis.TTLMetadata
	}
	return &MetadataCache{
		entries: make(map[string]metadataEntry),
		ttl:     ttl,
		remote:  remote,
		logger:  log,
		now:     time.Now,
	}
}

// Get returns fresh metadata for ticker
func (c *MetadataCache) Get(ctx context.Context, ticker string) (contracts.Metadata, bool) {
	c.mu.RLock()
	entry, ok := c.entries[ticker]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.meta, true
	}

	if c.remote.Enabled() {
		var meta contracts.Metadata
		found, err := c.remote.Get(ctx, redis.MetadataKey(ticker), &meta)
		if err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Remote metadata lookup failed")
			return contracts.Metadata{}, false
		}
		if found {
			c.store(ticker, meta)
			return meta, true
		}
	}

	return contracts.Metadata{}, false
}

// Set stores metadata for ticker in both tiers
func (c *MetadataCache) Set(ctx context.Context, ticker string, meta contracts.Metadata) {
	c.store(ticker, meta)

	if c.remote.Enabled() {
		if err := c.remote.Set(ctx, redis.MetadataKey(ticker), meta, c.ttl); err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Remote metadata store failed")
		}
	}
}

func (c *MetadataCache) store(ticker string, meta contracts.Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ticker] = metadataEntry{meta: meta, fetchedAt: c.now()}
}

// Sweep evicts expired entries and returns how many were removed
func (c *MetadataCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for ticker, entry := range c.entries {
		if now.Sub(entry.fetchedAt) >= c.ttl {
			delete(c.entries, ticker)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired ones included
func (c *MetadataCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
