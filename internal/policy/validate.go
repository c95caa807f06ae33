package policy

import (
	"fmt"
	"strings"
)

// ValidationError 검증 실패
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all policy constraints
func Validate(p *Policy) error {
	// === Signals ===
	if p.Signals.TakeProfitRatio <= 0 {
		return ValidationError{"signals.take_profit_ratio", "must be > 0"}
	}
	if p.Signals.AverageDownRatio <= 0 || p.Signals.AverageDownRatio >= 1 {
		return ValidationError{"signals.average_down_ratio", "must be in (0, 1)"}
	}

	// === Concentration ===
	if p.Concentration.WarningRatio <= 0 || p.Concentration.WarningRatio > 1 {
		return ValidationError{"concentration.warning_ratio", "must be in (0, 1]"}
	}

	// === Diagnostic ===
	d := p.Diagnostic
	if d.MaxPE <= 0 {
		return ValidationError{"diagnostic.max_pe", "must be > 0"}
	}
	if d.MinYieldPct < 0 {
		return ValidationError{"diagnostic.min_yield_pct", "must be >= 0"}
	}
	if d.MaxDebtToEquity <= 0 {
		return ValidationError{"diagnostic.max_debt_to_equity", "must be > 0"}
	}
	if d.DefaultDebtToEquity < 0 {
		return ValidationError{"diagnostic.default_debt_to_equity", "must be >= 0"}
	}
	if d.MAWindow < 2 {
		return ValidationError{"diagnostic.ma_window", "must be >= 2"}
	}
	if d.HistoryDays < d.MAWindow {
		return ValidationError{"diagnostic.history_days", "must be >= ma_window"}
	}

	// === Feed ===
	for i, s := range p.Feed.TickerSuffixes {
		if !strings.HasPrefix(strings.TrimSpace(s), ".") {
			return ValidationError{fmt.Sprintf("feed.ticker_suffixes[%d]", i), "must start with '.'"}
		}
	}

	return nil
}
