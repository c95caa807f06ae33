package policy

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Policy holds every named threshold used by the valuation engine and
// the diagnostic scorer.
// ⭐ SSOT: 모든 임계값은 여기서만 정의
type Policy struct {
	Signals       SignalPolicy        `yaml:"signals" json:"signals"`
	Concentration ConcentrationPolicy `yaml:"concentration" json:"concentration"`
	Diagnostic    DiagnosticPolicy    `yaml:"diagnostic" json:"diagnostic"`
	Feed          FeedPolicy          `yaml:"feed" json:"feed"`
}

// SignalPolicy drives the per-position action
type SignalPolicy struct {
	TakeProfitRatio  float64 `yaml:"take_profit_ratio" json:"take_profit_ratio"`   // 0.20 (0.25 alternate)
	AverageDownRatio float64 `yaml:"average_down_ratio" json:"average_down_ratio"` // 0.10 (0.15, 0.20 alternates)
}

// ConcentrationPolicy drives the portfolio concentration status
type ConcentrationPolicy struct {
	WarningRatio float64 `yaml:"warning_ratio" json:"warning_ratio"` // 0.35 (0.30 alternate)
}

// DiagnosticPolicy holds the four scoring rules
type DiagnosticPolicy struct {
	MaxPE               float64 `yaml:"max_pe" json:"max_pe"`
	MinYieldPct         float64 `yaml:"min_yield_pct" json:"min_yield_pct"`
	MaxDebtToEquity     float64 `yaml:"max_debt_to_equity" json:"max_debt_to_equity"`
	DefaultDebtToEquity float64 `yaml:"default_debt_to_equity" json:"default_debt_to_equity"`
	MAWindow            int     `yaml:"ma_window" json:"ma_window"`
	HistoryDays         int     `yaml:"history_days" json:"history_days"`
}

// FeedPolicy filters feed rows by exchange suffix (empty = no filter)
type FeedPolicy struct {
	TickerSuffixes []string `yaml:"ticker_suffixes" json:"ticker_suffixes"`
}

// Default returns the built-in thresholds
func Default() *Policy {
	return &Policy{
		Signals: SignalPolicy{
			TakeProfitRatio:  0.20,
			AverageDownRatio: 0.10,
		},
		Concentration: ConcentrationPolicy{
			WarningRatio: 0.35,
		},
		Diagnostic: DiagnosticPolicy{
			MaxPE:               18,
			MinYieldPct:         5,
			MaxDebtToEquity:     80,
			DefaultDebtToEquity: 100,
			MAWindow:            20,
			HistoryDays:         60,
		},
	}
}

// TakeProfit returns the take-profit ratio as a decimal
func (p *Policy) TakeProfit() decimal.Decimal {
	return decimal.NewFromFloat(p.Signals.TakeProfitRatio)
}

// AverageDown returns the average-down ratio as a decimal
func (p *Policy) AverageDown() decimal.Decimal {
	return decimal.NewFromFloat(p.Signals.AverageDownRatio)
}

// ConcentrationLimitPct returns the concentration warning level in percent
func (p *Policy) ConcentrationLimitPct() decimal.Decimal {
	return decimal.NewFromFloat(p.Concentration.WarningRatio).Mul(decimal.NewFromInt(100))
}

// MaxPEDecimal returns the valuation rule bound
func (d DiagnosticPolicy) MaxPEDecimal() decimal.Decimal {
	return decimal.NewFromFloat(d.MaxPE)
}

// MinYieldPctDecimal returns the yield rule bound
func (d DiagnosticPolicy) MinYieldPctDecimal() decimal.Decimal {
	return decimal.NewFromFloat(d.MinYieldPct)
}

// MaxDebtToEquityDecimal returns the leverage rule bound
func (d DiagnosticPolicy) MaxDebtToEquityDecimal() decimal.Decimal {
	return decimal.NewFromFloat(d.MaxDebtToEquity)
}

// DefaultDebtToEquityDecimal is used when the provider reports nothing
func (d DiagnosticPolicy) DefaultDebtToEquityDecimal() decimal.Decimal {
	return decimal.NewFromFloat(d.DefaultDebtToEquity)
}

// WithSuffixes returns a copy whose feed filter is replaced when suffixes
// is non-empty. Environment settings override the file this way.
func (p *Policy) WithSuffixes(suffixes []string) *Policy {
	if len(suffixes) == 0 {
		return p
	}
	cp := *p
	cp.Feed.TickerSuffixes = make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		cp.Feed.TickerSuffixes = append(cp.Feed.TickerSuffixes, strings.ToUpper(strings.TrimSpace(s)))
	}
	return &cp
}
