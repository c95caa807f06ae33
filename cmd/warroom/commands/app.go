package commands

import (
	"fmt"

	"github.com/wonny/warroom/internal/cache"
	"github.com/wonny/warroom/internal/diagnostic"
	"github.com/wonny/warroom/internal/external/yahoo"
	"github.com/wonny/warroom/internal/feed"
	"github.com/wonny/warroom/internal/policy"
	"github.com/wonny/warroom/internal/portfolio"
	"github.com/wonny/warroom/pkg/config"
	"github.com/wonny/warroom/pkg/httputil"
	"github.com/wonny/warroom/pkg/logger"
	"github.com/wonny/warroom/pkg/redis"
)

const redisPrefix = "warroom"

// app holds the wired dependencies shared by every command
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	redis  *redis.Client
	policy *policy.Policy

	reportCache   *cache.RefreshCache
	metadataCache *cache.MetadataCache

	service *portfolio.Service
	scorer  *diagnostic.Scorer
}

// newApp loads config and wires the pipeline.
// requireFeed is false for commands that never read the lot sheet.
func newApp(requireFeed bool) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if feedURL != "" {
		cfg.Feed.URL = feedURL
	}
	if policyFile != "" {
		cfg.PolicyFile = policyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if requireFeed {
		if err := cfg.RequireFeed(); err != nil {
			return nil, err
		}
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load policy (suffixes from config win over the file)
	pol, err := policy.Resolve(cfg.PolicyFile, cfg.Feed.TickerSuffixes)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}

	// 4. Connect to Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	remote := redis.NewCache(rdb, redisPrefix)

	// 5. Create HTTP client
	httpClient := httputil.New(cfg, log).WithLimit(cfg.Yahoo.RateLimit)
	if rdb.Enabled() {
		httpClient = httpClient.WithRateLimiter(
			redis.NewRateLimiter(rdb, redisPrefix),
			redis.YahooRateLimit(cfg.Yahoo.RateLimit),
		)
	}

	// 6. Create external API clients
	yahooClient := yahoo.NewClient(httpClient, cfg.Yahoo.BaseURL, log).
		WithCookieURL(cfg.Yahoo.CookieURL)

	// 7. Create caches
	metadataCache := cache.NewMetadataCache(cfg.Cache.MetadataTTL, remote, log)
	reportCache := cache.NewRefreshCache(cfg.Cache.ReportTTL, remote, log)

	// 8. Create pipeline
	loader := feed.NewLoader(httpClient, cfg.Feed.Format, pol.Feed.TickerSuffixes, log)
	fuser := portfolio.NewFuser(yahooClient, metadataCache, log)
	service := portfolio.NewService(loader, fuser, pol, reportCache, cfg.Cache.RefreshTimeout, log)
	scorer := diagnostic.NewScorer(yahooClient, pol, log)

	log.WithFields(map[string]interface{}{
		"env":         cfg.Env,
		"feed":        cfg.Feed.URL,
		"policy_hash": policy.MustHash(pol),
		"redis":       rdb.Enabled(),
	}).Debug("Application wired")

	return &app{
		cfg:           cfg,
		log:           log,
		redis:         rdb,
		policy:        pol,
		reportCache:   reportCache,
		metadataCache: metadataCache,
		service:       service,
		scorer:        scorer,
	}, nil
}

// Close releases external connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}
