package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wonny/warroom/internal/contracts"
)

// FetchMetadata fetches names, dividend and balance sheet figures for one ticker
func (c *Client) FetchMetadata(ctx context.Context, ticker string) (contracts.Metadata, error) {
	params := url.Values{}
	params.Set("modules", "price,summaryDetail,financialData")

	var resp summaryResponse
	if err := c.getSignedJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(ticker), params, &resp); err != nil {
		return contracts.Metadata{}, err
	}
	if resp.QuoteSummary.Error != nil {
		return contracts.Metadata{}, fmt.Errorf("yahoo quoteSummary error: %w", resp.QuoteSummary.Error)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return contracts.Metadata{}, fmt.Errorf("no metadata returned for %s", ticker)
	}

	r := resp.QuoteSummary.Result[0]

	current := r.FinancialData.CurrentPrice.Raw
	if current == nil {
		current = r.Price.RegularMarketPrice.Raw
	}

	return contracts.Metadata{
		Ticker:        ticker,
		LongName:      r.Price.LongName,
		ShortName:     r.Price.ShortName,
		CurrentPrice:  decimalPtr(current),
		DividendRate:  decimalPtr(r.SummaryDetail.DividendRate.Raw),
		DividendYield: decimalPtr(r.SummaryDetail.DividendYield.Raw),
		TrailingPE:    decimalPtr(r.SummaryDetail.TrailingPE.Raw),
		DebtToEquity:  decimalPtr(r.FinancialData.DebtToEquity.Raw),
	}, nil
}
