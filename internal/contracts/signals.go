package contracts

import "github.com/shopspring/decimal"

// Tag is a label earned by passing one diagnostic rule
type Tag string

const (
	TagUndervalued Tag = "UNDERVALUED"
	TagStrongTrend Tag = "STRONG_TREND"
	TagHighYield   Tag = "HIGH_YIELD"
	TagLowLeverage Tag = "LOW_LEVERAGE"
)

// Long-term views derived from the trailing P/E
const (
	OutlookValue     = "VALUE"
	OutlookFair      = "FAIR"
	OutlookExpensive = "EXPENSIVE"
	OutlookUnknown   = "UNKNOWN"
)

// Short-term views derived from price vs moving average
const (
	OutlookUptrend   = "UPTREND"
	OutlookDowntrend = "DOWNTREND"
)

// Outlook is the qualitative view attached to a diagnostic
type Outlook struct {
	LongTerm  string `json:"long_term"`
	ShortTerm string `json:"short_term"`
}

// DiagnosticResult is the health check of a single ticker
// ⭐ SSOT: Diagnostic 결과 전달
type DiagnosticResult struct {
	Ticker           string          `json:"ticker"`
	DisplayName      string          `json:"display_name"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	TrailingPE       decimal.Decimal `json:"trailing_pe"`
	MovingAverage20  decimal.Decimal `json:"moving_average_20"`
	DividendYieldPct decimal.Decimal `json:"dividend_yield_pct"`
	DebtToEquity     decimal.Decimal `json:"debt_to_equity"`
	Score            int             `json:"score"`
	Tags             []Tag           `json:"tags"`
	Outlook          Outlook         `json:"outlook"`
}

// HasTag reports whether the result carries tag
func (d *DiagnosticResult) HasTag(tag Tag) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
