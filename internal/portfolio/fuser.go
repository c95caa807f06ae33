package portfolio

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/warroom/internal/cache"
	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
)

// metadataConcurrency bounds parallel metadata calls per refresh
const metadataConcurrency = 4

// Fuser merges live prices and metadata into positions
// ⭐ SSOT: 시세/메타데이터 결합은 여기서만
type Fuser struct {
	provider MarketDataProvider
	metadata *cache.MetadataCache
	logger   *logger.Logger
}

// NewFuser creates a fuser. metadata may be nil to disable memoization.
func NewFuser(provider MarketDataProvider, metadata *cache.MetadataCache, log *logger.Logger) *Fuser {
	return &Fuser{
		provider: provider,
		metadata: metadata,
		logger:   log,
	}
}

// Fuse resolves a market snapshot for every position that has a price.
// A ticker missing from the batch is priced from its metadata when the
// provider reports one. Unpriced tickers are excluded and reported as
// warnings; metadata failures degrade to defaults. Inputs are never modified.
func (f *Fuser) Fuse(ctx context.Context, positions []contracts.Position) ([]contracts.FusedPosition, []contracts.Warning) {
	var warnings []contracts.Warning
	if len(positions) == 0 {
		return []contracts.FusedPosition{}, warnings
	}

	quotes, err := f.provider.FetchPrices(ctx, Tickers(positions))
	if err != nil {
		f.logger.WithError(err).Warn("Batched price fetch failed")
		for _, p := range positions {
			warnings = append(warnings, priceWarning(p.Ticker, contracts.PriceReasonBatchFailed))
		}
		return []contracts.FusedPosition{}, warnings
	}

	// Metadata is fetched for every ticker; its current price backs up a
	// missing or non-positive batched quote
	metas, metaErrs := f.fetchMetadata(ctx, Tickers(positions))

	fused := make([]contracts.FusedPosition, 0, len(positions))
	for i, p := range positions {
		quote, reason := priceFor(quotes, p.Ticker, metas[i])
		if reason != "" {
			warnings = append(warnings, priceWarning(p.Ticker, reason))
			continue
		}

		if metaErrs[i] != nil {
			warnings = append(warnings, contracts.Warning{
				Ticker:  p.Ticker,
				Kind:    contracts.WarningMetadataUnavailable,
				Message: fmt.Sprintf("metadata unavailable, using defaults: %v", metaErrs[i]),
			})
		}

		fused = append(fused, contracts.FusedPosition{
			Position: p,
			Market:   Resolve(p.Ticker, quote, metas[i]),
		})
	}

	for _, w := range warnings {
		f.logger.WithFields(map[string]interface{}{
			"ticker": w.Ticker,
			"kind":   w.Kind,
		}).Warn(w.Message)
	}

	return fused, warnings
}

// fetchMetadata returns metadata per ticker (index aligned), using the
// cache first. A failed ticker gets zero metadata and its error.
func (f *Fuser) fetchMetadata(ctx context.Context, tickers []string) ([]contracts.Metadata, []error) {
	metas := make([]contracts.Metadata, len(tickers))
	errs := make([]error, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataConcurrency)

	for i, ticker := range tickers {
		if f.metadata != nil {
			if meta, ok := f.metadata.Get(ctx, ticker); ok {
				metas[i] = meta
				continue
			}
		}

		i, ticker := i, ticker
		g.Go(func() error {
			meta, err := f.provider.FetchMetadata(gctx, ticker)
			if err != nil {
				errs[i] = err
				return nil
			}
			metas[i] = meta
			if f.metadata != nil {
				f.metadata.Set(gctx, ticker, meta)
			}
			return nil
		})
	}
	_ = g.Wait()

	return metas, errs
}

// Resolve applies the fallback rules to build a snapshot.
// Name: long → short → quote names → ticker.
// Dividend rate: reported rate, else price × yield, else 0.
func Resolve(ticker string, quote contracts.Quote, meta contracts.Metadata) contracts.MarketSnapshot {
	name := meta.DisplayName("")
	if name == "" {
		name = contracts.Metadata{LongName: quote.LongName, ShortName: quote.ShortName}.DisplayName(ticker)
	}

	yield := contracts.ValueOrZero(meta.DividendYield)
	rate := contracts.ValueOrZero(meta.DividendRate)
	if !rate.IsPositive() {
		rate = quote.Price.Mul(yield)
	}

	return contracts.MarketSnapshot{
		LastPrice:     quote.Price,
		DisplayName:   name,
		DividendRate:  rate,
		DividendYield: yield,
		TrailingPE:    contracts.ValueOrZero(meta.TrailingPE),
		DebtToEquity:  contracts.ValueOrZero(meta.DebtToEquity),
	}
}

// priceFor picks the batched quote, else the metadata current price.
// A non-empty reason means the ticker has no usable price.
func priceFor(quotes map[string]contracts.Quote, ticker string, meta contracts.Metadata) (contracts.Quote, string) {
	q, ok := quotes[ticker]
	if ok && q.Price.IsPositive() {
		return q, ""
	}

	if meta.CurrentPrice != nil && meta.CurrentPrice.IsPositive() {
		q.Ticker = ticker
		q.Price = *meta.CurrentPrice
		return q, ""
	}

	if !ok {
		return q, contracts.PriceReasonNoQuote
	}
	return q, contracts.PriceReasonNonPositive
}

func priceWarning(ticker, reason string) contracts.Warning {
	err := &contracts.PriceUnavailableError{Ticker: ticker, Reason: reason}
	return contracts.Warning{
		Ticker:  ticker,
		Kind:    contracts.WarningPriceUnavailable,
		Message: err.Error(),
	}
}
