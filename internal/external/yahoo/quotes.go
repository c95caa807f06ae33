package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
)

// FetchPrices fetches the latest price of every ticker in batched calls.
// Tickers without a positive price are left out of the map. A failed
// chunk only loses its own tickers; the error is returned when every
// chunk failed.
// ⭐ SSOT: 배치 시세 조회는 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, tickers []string) (map[string]contracts.Quote, error) {
	quotes := make(map[string]contracts.Quote, len(tickers))

	var lastErr error
	chunks, failed := 0, 0

	for start := 0; start < len(tickers); start += maxSymbolsPerCall {
		end := start + maxSymbolsPerCall
		if end > len(tickers) {
			end = len(tickers)
		}
		chunks++

		if err := c.fetchChunk(ctx, tickers[start:end], quotes); err != nil {
			failed++
			lastErr = err
			c.logger.WithError(err).WithFields(map[string]interface{}{
				"from":  start,
				"count": end - start,
			}).Warn("Quote chunk failed")
		}
	}

	if chunks > 0 && failed == chunks {
		return nil, lastErr
	}

	c.logger.WithFields(map[string]interface{}{
		"requested":     len(tickers),
		"priced":        len(quotes),
		"failed_chunks": failed,
	}).Debug("Fetched quotes")

	return quotes, nil
}

// fetchChunk prices one symbols list into quotes
func (c *Client) fetchChunk(ctx context.Context, symbols []string, quotes map[string]contracts.Quote) error {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("fields", "symbol,regularMarketPrice,shortName,longName")

	var resp quoteResponse
	if err := c.getSignedJSON(ctx, "/v7/finance/quote", params, &resp); err != nil {
		return err
	}
	if resp.QuoteResponse.Error != nil {
		return fmt.Errorf("yahoo quote error: %w", resp.QuoteResponse.Error)
	}

	for _, r := range resp.QuoteResponse.Result {
		if r.RegularMarketPrice == nil || *r.RegularMarketPrice <= 0 {
			continue
		}
		symbol := strings.ToUpper(r.Symbol)
		quotes[symbol] = contracts.Quote{
			Ticker:    symbol,
			Price:     decimal.NewFromFloat(*r.RegularMarketPrice),
			ShortName: r.ShortName,
			LongName:  r.LongName,
		}
	}
	return nil
}
