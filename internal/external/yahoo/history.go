package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
)

// FetchHistory fetches up to `days` trailing daily closes, oldest first.
// Null closes are skipped.
func (c *Client) FetchHistory(ctx context.Context, ticker string, days int) ([]contracts.PricePoint, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive")
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", rangeFor(days))

	var resp chartResponse
	if err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), params, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error: %w", resp.Chart.Error)
	}

	return parseChart(&resp, days)
}

// parseChart turns a chart payload into at most `days` points
func parseChart(resp *chartResponse, days int) ([]contracts.PricePoint, error) {
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart results returned")
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []contracts.PricePoint{}, nil
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("mismatched data lengths")
	}

	points := make([]contracts.PricePoint, 0, len(closes))
	for i, ts := range result.Timestamp {
		if closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		points = append(points, contracts.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: decimal.NewFromFloat(*closes[i]),
		})
	}

	if len(points) > days {
		points = points[len(points)-days:]
	}
	return points, nil
}

// rangeFor maps trading days to the smallest chart range that covers them
func rangeFor(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 20:
		return "1mo"
	case days <= 60:
		return "3mo"
	case days <= 120:
		return "6mo"
	case days <= 250:
		return "1y"
	default:
		return "2y"
	}
}
