package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
	"github.com/wonny/warroom/pkg/redis"
)

// DefaultStaleRetention is how long a report is kept after expiry so it
// can be served while the feed is down
const DefaultStaleRetention = time.Hour

// ComputeFunc builds a fresh report
type ComputeFunc func(ctx context.Context) (*contracts.Report, error)

type reportEntry struct {
	report  *contracts.Report
	expires time.Time
}

// RefreshCache memoizes reports per feed source.
// Concurrent callers of one key share a single in-flight computation.
// Cached reports are shared and must not be mutated by callers.
// ⭐ SSOT: 리포트 메모이제이션은 여기서만
type RefreshCache struct {
	mu      sync.RWMutex
	entries map[string]reportEntry
	group   singleflight.Group
	ttl     time.Duration
	retain  time.Duration
	remote  *redis.Cache
	logger  *logger.Logger
	now     func() time.Time
}

// NewRefreshCache creates a report cache. remote may be nil.
func NewRefreshCache(ttl time.Duration, remote *redis.Cache, log *logger.Logger) *RefreshCache {
	if ttl <= 0 {
		ttl = redis.TTLReport
	}
	return &RefreshCache{
		entries: make(map[string]reportEntry),
		ttl:     ttl,
		retain:  DefaultStaleRetention,
		remote:  remote,
		logger:  log,
		now:     time.Now,
	}
}

// GetOrCompute returns the cached report for key or computes a new one.
// When the feed is unavailable the last good report is returned with
// Stale set; any other failure is returned as is.
func (c *RefreshCache) GetOrCompute(ctx context.Context, key string, fn ComputeFunc) (*contracts.Report, error) {
	if report, ok := c.fresh(key); ok {
		return report, nil
	}

	v, err, shared := c.group.Do(key, func() (interface{}, error) {
		// Another caller may have finished while we waited for the lock
		if report, ok := c.fresh(key); ok {
			return report, nil
		}

		if report, ok := c.fromRemote(ctx, key); ok {
			return report, nil
		}

		// The computation is shared, so one caller going away must not
		// cancel it for the others; fn bounds itself with its own timeout
		report, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		// A report without prices is returned but not memoized, so the
		// next caller retries the provider
		if report.Status != contracts.StatusWaitingForData {
			c.put(ctx, key, report)
		}
		return report, nil
	})

	if shared {
		c.logger.WithField("key", key).Debug("Shared in-flight refresh")
	}

	if err != nil {
		if stale, ok := c.stale(key); ok && errors.Is(err, contracts.ErrSourceUnavailable) {
			c.logger.WithError(err).WithField("key", key).Warn("Serving stale report")
			return stale, nil
		}
		return nil, err
	}

	return v.(*contracts.Report), nil
}

// Sweep evicts entries past their stale retention and returns the count
func (c *RefreshCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expires.Add(c.retain)) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached reports, stale ones included
func (c *RefreshCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *RefreshCache) fresh(key string) (*contracts.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expires) {
		return nil, false
	}
	return entry.report, true
}

// stale returns a flagged copy of the last good report for key while
// it is within the stale retention window
func (c *RefreshCache) stale(key string) (*contracts.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expires.Add(c.retain)) {
		return nil, false
	}
	cp := *entry.report
	cp.Stale = true
	return &cp, true
}

func (c *RefreshCache) put(ctx context.Context, key string, report *contracts.Report) {
	c.mu.Lock()
	c.entries[key] = reportEntry{report: report, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()

	if c.remote.Enabled() {
		if err := c.remote.Set(ctx, redis.ReportKey(key), report, c.ttl); err != nil {
			c.logger.WithError(err).Warn("Remote report store failed")
		}
	}
}

func (c *RefreshCache) fromRemote(ctx context.Context, key string) (*contracts.Report, bool) {
	if !c.remote.Enabled() {
		return nil, false
	}

	var report contracts.Report
	found, err := c.remote.Get(ctx, redis.ReportKey(key), &report)
	if err != nil {
		c.logger.WithError(err).Warn("Remote report lookup failed")
		return nil, false
	}
	if !found {
		return nil, false
	}

	// Freshness runs from when the report was built, not when it was read
	expires := report.GeneratedAt.Add(c.ttl)
	if !c.now().Before(expires) {
		return nil, false
	}

	c.mu.Lock()
	c.entries[key] = reportEntry{report: &report, expires: expires}
	c.mu.Unlock()

	return &report, true
}
