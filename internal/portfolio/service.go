package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/cache"
	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/internal/feed"
	"github.com/wonny/warroom/internal/policy"
	"github.com/wonny/warroom/pkg/logger"
)

// DefaultRefreshTimeout bounds one refresh when none is configured
const DefaultRefreshTimeout = 20 * time.Second

// FeedLoader loads normalized lots from a source.
// *feed.Loader implements it.
type FeedLoader interface {
	Load(ctx context.Context, source string) (*feed.Result, error)
}

// Service runs the refresh pipeline: feed → aggregate → fuse → metrics
// ⭐ SSOT: 포트폴리오 리포트 생성은 여기서만
type Service struct {
	loader     FeedLoader
	fuser      *Fuser
	policy     *policy.Policy
	policyHash string
	cache      *cache.RefreshCache
	timeout    time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewService creates the portfolio service. refreshCache may be nil, in
// which case every Report call refreshes.
func NewService(loader FeedLoader, fuser *Fuser, pol *policy.Policy, refreshCache *cache.RefreshCache, timeout time.Duration, log *logger.Logger) *Service {
	if pol == nil {
		pol = policy.Default()
	}
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	return &Service{
		loader:     loader,
		fuser:      fuser,
		policy:     pol,
		policyHash: policy.MustHash(pol),
		cache:      refreshCache,
		timeout:    timeout,
		logger:     log,
		now:        time.Now,
	}
}

// Policy returns the active policy
func (s *Service) Policy() *policy.Policy {
	return s.policy
}

// Report returns the memoized report for source, refreshing when needed
func (s *Service) Report(ctx context.Context, source string, target decimal.Decimal) (*contracts.Report, error) {
	if s.cache == nil {
		return s.Refresh(ctx, source, target)
	}

	return s.cache.GetOrCompute(ctx, CacheKey(source, target), func(ctx context.Context) (*contracts.Report, error) {
		return s.Refresh(ctx, source, target)
	})
}

// Refresh loads the feed and builds a new report, bypassing the cache.
// Only a feed failure is returned as an error.
func (s *Service) Refresh(ctx context.Context, source string, target decimal.Decimal) (*contracts.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()

	result, err := s.loader.Load(ctx, source)
	if err != nil {
		s.logger.WithError(err).WithField("status", contracts.StatusFor(err)).Warn("Lot feed unavailable")
		return nil, fmt.Errorf("load lots: %w", err)
	}

	report := s.Build(ctx, result.Lots, target)
	report.Source = source
	report.Warnings = append(result.Warnings(), report.Warnings...)

	s.logger.WithFields(map[string]interface{}{
		"report_id":   report.ID.String(),
		"lots":        len(result.Lots),
		"positions":   len(report.Positions),
		"warnings":    len(report.Warnings),
		"status":      report.Status,
		"policy_hash": s.policyHash,
		"duration":    time.Since(start).String(),
	}).Info("Portfolio refreshed")

	return report, nil
}

// Build runs aggregation, fusion and metrics over already loaded lots
func (s *Service) Build(ctx context.Context, lots []contracts.Lot, target decimal.Decimal) *contracts.Report {
	positions := Aggregate(lots)
	fused, warnings := s.fuser.Fuse(ctx, positions)
	valued := ValuateAll(fused, s.policy)

	status := contracts.StatusOK
	if len(positions) > 0 && len(valued) == 0 {
		status = contracts.StatusWaitingForData
	}

	if warnings == nil {
		warnings = []contracts.Warning{}
	}

	return &contracts.Report{
		ID:          uuid.New(),
		GeneratedAt: s.now().UTC(),
		PolicyHash:  s.policyHash,
		Positions:   valued,
		Summary:     Summarize(valued, target, s.policy),
		Warnings:    warnings,
		Status:      status,
	}
}

// CacheKey identifies a report by its feed and dividend target
func CacheKey(source string, target decimal.Decimal) string {
	return source + "#target=" + target.String()
}
