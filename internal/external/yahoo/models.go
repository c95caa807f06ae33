package yahoo

// quoteResponse is the v7 batched quote payload
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string   `json:"symbol"`
			RegularMarketPrice *float64 `json:"regularMarketPrice"`
			ShortName          string   `json:"shortName"`
			LongName           string   `json:"longName"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteResponse"`
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper.
// Missing values come back as {} so Raw stays nil.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// summaryResponse is the v10 quoteSummary payload
type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				LongName           string   `json:"longName"`
				ShortName          string   `json:"shortName"`
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
			} `json:"price"`
			SummaryDetail struct {
				DividendRate  rawValue `json:"dividendRate"`
				DividendYield rawValue `json:"dividendYield"`
				TrailingPE    rawValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			FinancialData struct {
				CurrentPrice rawValue `json:"currentPrice"`
				DebtToEquity rawValue `json:"debtToEquity"`
			} `json:"financialData"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

// chartResponse is the v8 chart payload (daily closes only).
// Closes can be null on halted days.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol   string `json:"symbol"`
				Currency string `json:"currency"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return e.Code + ": " + e.Description
}
