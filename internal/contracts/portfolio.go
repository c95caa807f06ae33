package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DivisionPrecision is the number of decimal places kept by every division
// in the valuation engine. Rounding for display happens at the edges.
const DivisionPrecision int32 = 16

var hundred = decimal.NewFromInt(100)

// Lot is one purchase record after normalization
// ⭐ SSOT: Feed → Aggregator 매수 기록 전달
type Lot struct {
	Ticker    string          `json:"ticker"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Fee       decimal.Decimal `json:"fee"`
}

// Cost returns (price × qty) + fee
func (l Lot) Cost() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity).Add(l.Fee)
}

// Position is the aggregate of all lots for one ticker
type Position struct {
	Ticker        string          `json:"ticker"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// AverageCost returns TotalCost / TotalQuantity, or 0 for an empty position
func (p Position) AverageCost() decimal.Decimal {
	return SafeDiv(p.TotalCost, p.TotalQuantity)
}

// FusedPosition pairs a position with its resolved market snapshot
type FusedPosition struct {
	Position Position       `json:"position"`
	Market   MarketSnapshot `json:"market"`
}

// Action is the advisory signal for a position
type Action string

const (
	ActionTakeProfit  Action = "TAKE_PROFIT"
	ActionAverageDown Action = "AVERAGE_DOWN"
	ActionHold        Action = "HOLD"
)

// ValuedPosition is a position with its computed metrics.
// Position is copied in by value.
type ValuedPosition struct {
	Position
	DisplayName      string          `json:"display_name"`
	AverageCost      decimal.Decimal `json:"average_cost"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	MarketValue      decimal.Decimal `json:"market_value"`
	Profit           decimal.Decimal `json:"profit"`
	ReturnPct        decimal.Decimal `json:"return_pct"`
	AnnualDividend   decimal.Decimal `json:"annual_dividend"`
	DividendYieldPct decimal.Decimal `json:"dividend_yield_pct"`
	Action           Action          `json:"action"`
}

// ConcentrationStatus flags an over-weighted single holding
type ConcentrationStatus string

const (
	ConcentrationWarning  ConcentrationStatus = "CONCENTRATION_WARNING"
	ConcentrationBalanced ConcentrationStatus = "BALANCED"
)

// PortfolioSummary holds portfolio level totals
type PortfolioSummary struct {
	TotalMarketValue     decimal.Decimal     `json:"total_market_value"`
	TotalCost            decimal.Decimal     `json:"total_cost"`
	TotalProfit          decimal.Decimal     `json:"total_profit"`
	TotalReturnPct       decimal.Decimal     `json:"total_return_pct"`
	TotalDividend        decimal.Decimal     `json:"total_dividend"`
	AnnualTarget         decimal.Decimal     `json:"annual_target"`
	TargetAchievementPct decimal.Decimal     `json:"target_achievement_pct"`
	ConcentrationTicker  string              `json:"concentration_ticker,omitempty"`
	ConcentrationPct     decimal.Decimal     `json:"concentration_pct"`
	ConcentrationStatus  ConcentrationStatus `json:"concentration_status"`
	PositionCount        int                 `json:"position_count"`
}

// WarningKind classifies a non-fatal problem found during a refresh
type WarningKind string

const (
	WarningPriceUnavailable    WarningKind = "price_unavailable"
	WarningMetadataUnavailable WarningKind = "metadata_unavailable"
	WarningInvalidRow          WarningKind = "invalid_row"
)

// Warning is a per-ticker (or per-row) note attached to a report
type Warning struct {
	Ticker  string      `json:"ticker,omitempty"`
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Report is one complete refresh result
// ⭐ SSOT: 캐시 및 출력 레이어가 공유하는 단위
type Report struct {
	ID          uuid.UUID        `json:"id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Source      string           `json:"source"`
	PolicyHash  string           `json:"policy_hash,omitempty"`
	Positions   []ValuedPosition `json:"positions"`
	Summary     PortfolioSummary `json:"summary"`
	Warnings    []Warning        `json:"warnings"`
	Status      Status           `json:"status"`
	Stale       bool             `json:"stale"`
}

// WarningsOf returns the warnings of one kind
func (r *Report) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// SafeDiv divides with DivisionPrecision and returns 0 for a zero divisor
func SafeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.DivRound(den, DivisionPrecision)
}

// Percent returns num / den × 100, or 0 when den is not positive
func Percent(num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return SafeDiv(num.Mul(hundred), den)
}
