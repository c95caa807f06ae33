package portfolio

import (
	"context"

	"github.com/wonny/warroom/internal/contracts"
)

// MarketDataProvider is the market data boundary.
// *yahoo.Client implements it; tests use a fake.
type MarketDataProvider interface {
	FetchPrices(ctx context.Context, tickers []string) (map[string]contracts.Quote, error)
	FetchMetadata(ctx context.Context, ticker string) (contracts.Metadata, error)
	FetchHistory(ctx context.Context, ticker string, days int) ([]contracts.PricePoint, error)
}
