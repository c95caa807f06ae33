package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one entry of a batched price response
// ⭐ SSOT: Provider → Fuser 가격 전달
type Quote struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	ShortName string          `json:"short_name,omitempty"`
	LongName  string          `json:"long_name,omitempty"`
}

// Metadata is per-ticker descriptive data from the provider.
// Numeric fields are pointers so that "not reported" differs from zero.
type Metadata struct {
	Ticker        string           `json:"ticker"`
	LongName      string           `json:"long_name,omitempty"`
	ShortName     string           `json:"short_name,omitempty"`
	CurrentPrice  *decimal.Decimal `json:"current_price,omitempty"`
	DividendRate  *decimal.Decimal `json:"dividend_rate,omitempty"`
	DividendYield *decimal.Decimal `json:"dividend_yield,omitempty"` // fraction, 0.05 = 5%
	TrailingPE    *decimal.Decimal `json:"trailing_pe,omitempty"`
	DebtToEquity  *decimal.Decimal `json:"debt_to_equity,omitempty"`
}

// DisplayName resolves long name → short name → ticker
func (m Metadata) DisplayName(ticker string) string {
	switch {
	case m.LongName != "":
		return m.LongName
	case m.ShortName != "":
		return m.ShortName
	default:
		return ticker
	}
}

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// MarketSnapshot is the resolved market view of one ticker.
// All fallbacks are applied; absent numerics are zero.
type MarketSnapshot struct {
	LastPrice       decimal.Decimal  `json:"last_price"`
	DisplayName     string           `json:"display_name"`
	DividendRate    decimal.Decimal  `json:"dividend_rate"`
	DividendYield   decimal.Decimal  `json:"dividend_yield"`
	TrailingPE      decimal.Decimal  `json:"trailing_pe"`
	DebtToEquity    decimal.Decimal  `json:"debt_to_equity"`
	MovingAverage20 *decimal.Decimal `json:"moving_average_20,omitempty"`
}

// ValueOrZero dereferences an optional decimal
func ValueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
