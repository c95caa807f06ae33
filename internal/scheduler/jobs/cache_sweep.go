package jobs

import (
	"context"

	"github.com/wonny/warroom/pkg/logger"
)

// Sweeper evicts expired entries and reports how many it removed.
// *cache.RefreshCache and *cache.MetadataCache implement it.
type Sweeper interface {
	Sweep() int
	Len() int
}

// CacheSweepJob evicts expired cache entries
type CacheSweepJob struct {
	sweepers []Sweeper
	logger   *logger.Logger
}

// NewCacheSweepJob creates a new cache sweep job
func NewCacheSweepJob(log *logger.Logger, sweepers ...Sweeper) *CacheSweepJob {
	return &CacheSweepJob{
		sweepers: sweepers,
		logger:   log,
	}
}

// Name returns the job name
func (j *CacheSweepJob) Name() string {
	return "cache_sweep"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheSweepJob) Schedule() string {
	return "*/5 * * * *"
}

// Run executes the sweep
func (j *CacheSweepJob) Run(ctx context.Context) error {
	removed, remaining := j.sweep()

	log := j.logger.WithFields(map[string]interface{}{
		"removed":   removed,
		"remaining": remaining,
	})
	if removed > 0 {
		log.Info("Cache sweep completed")
	} else {
		log.Debug("Cache sweep found nothing to evict")
	}

	return nil
}

func (j *CacheSweepJob) sweep() (removed, remaining int) {
	for _, s := range j.sweepers {
		removed += s.Sweep()
		remaining += s.Len()
	}
	return removed, remaining
}
