package diagnostic

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/internal/policy"
	"github.com/wonny/warroom/internal/portfolio"
	"github.com/wonny/warroom/pkg/logger"
)

// PointsPerRule is the weight of each of the four rules
const PointsPerRule = 25

// Long-term P/E bands
var (
	valuePEBand = decimal.NewFromInt(15)
	fairPEBand  = decimal.NewFromInt(25)
)

// Scorer runs the single-ticker health check.
// It shares the provider with the portfolio pipeline but nothing else.
// ⭐ SSOT: 종목 진단 로직은 여기서만
type Scorer struct {
	provider portfolio.MarketDataProvider
	policy   policy.DiagnosticPolicy
	logger   *logger.Logger
}

// NewScorer creates a scorer
func NewScorer(provider portfolio.MarketDataProvider, pol *policy.Policy, log *logger.Logger) *Scorer {
	if pol == nil {
		pol = policy.Default()
	}
	return &Scorer{
		provider: provider,
		policy:   pol.Diagnostic,
		logger:   log,
	}
}

// NormalizeTicker trims and uppercases ticker and requires an exchange
// suffix such as ".TW"
func NormalizeTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	dot := strings.LastIndex(ticker, ".")
	if dot <= 0 || dot == len(ticker)-1 {
		return "", fmt.Errorf("%w: %q", contracts.ErrInvalidTicker, raw)
	}
	return ticker, nil
}

// Diagnose scores one ticker. Any fetch failure is reported as a
// *contracts.DiagnosticUnavailableError.
func (s *Scorer) Diagnose(ctx context.Context, raw string) (*contracts.DiagnosticResult, error) {
	ticker, err := NormalizeTicker(raw)
	if err != nil {
		return nil, err
	}

	unavailable := func(err error) error {
		return &contracts.DiagnosticUnavailableError{Ticker: ticker, Err: err}
	}

	meta, err := s.provider.FetchMetadata(ctx, ticker)
	if err != nil {
		return nil, unavailable(fmt.Errorf("metadata: %w", err))
	}

	quotes, err := s.provider.FetchPrices(ctx, []string{ticker})
	if err != nil {
		return nil, unavailable(fmt.Errorf("price: %w", err))
	}

	history, err := s.provider.FetchHistory(ctx, ticker, s.policy.HistoryDays)
	if err != nil {
		return nil, unavailable(fmt.Errorf("history: %w", err))
	}

	quote, ok := quotes[ticker]
	if !ok || !quote.Price.IsPositive() {
		if len(history) == 0 {
			return nil, unavailable(&contracts.PriceUnavailableError{Ticker: ticker, Reason: contracts.PriceReasonEmptyHistory})
		}
		quote = contracts.Quote{Ticker: ticker, Price: history[len(history)-1].Close}
	}

	snap := portfolio.Resolve(ticker, quote, meta)
	ma := MovingAverage(history, s.policy.MAWindow)

	result := s.Score(ticker, snap, meta.DebtToEquity, ma)

	s.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"score":  result.Score,
		"tags":   result.Tags,
	}).Debug("Diagnosed ticker")

	return result, nil
}

// Score applies the four rules to resolved data.
// debtToEquity is nil when the provider did not report it; ma is nil
// when there was no history.
func (s *Scorer) Score(ticker string, snap contracts.MarketSnapshot, debtToEquity *decimal.Decimal, ma *decimal.Decimal) *contracts.DiagnosticResult {
	result := &contracts.DiagnosticResult{
		Ticker:           ticker,
		DisplayName:      snap.DisplayName,
		CurrentPrice:     snap.LastPrice,
		TrailingPE:       snap.TrailingPE,
		DividendYieldPct: contracts.Percent(snap.DividendRate, snap.LastPrice),
		DebtToEquity:     s.policy.DefaultDebtToEquityDecimal(),
		Tags:             []contracts.Tag{},
	}
	if debtToEquity != nil {
		result.DebtToEquity = *debtToEquity
	}
	if ma != nil {
		result.MovingAverage20 = *ma
	}

	// valuation
	if result.TrailingPE.IsPositive() && result.TrailingPE.LessThan(s.policy.MaxPEDecimal()) {
		result.Score += PointsPerRule
		result.Tags = append(result.Tags, contracts.TagUndervalued)
	}

	// momentum
	if ma != nil && result.CurrentPrice.GreaterThan(*ma) {
		result.Score += PointsPerRule
		result.Tags = append(result.Tags, contracts.TagStrongTrend)
	}

	// yield
	if result.DividendYieldPct.GreaterThan(s.policy.MinYieldPctDecimal()) {
		result.Score += PointsPerRule
		result.Tags = append(result.Tags, contracts.TagHighYield)
	}

	// leverage
	if result.DebtToEquity.LessThan(s.policy.MaxDebtToEquityDecimal()) {
		result.Score += PointsPerRule
		result.Tags = append(result.Tags, contracts.TagLowLeverage)
	}

	result.Outlook = contracts.Outlook{
		LongTerm:  LongTermOutlook(result.TrailingPE),
		ShortTerm: ShortTermOutlook(result.CurrentPrice, ma),
	}

	return result
}

// MovingAverage is the mean of the last `window` closes, or of all of
// them when fewer are available. It is nil for an empty history.
func MovingAverage(history []contracts.PricePoint, window int) *decimal.Decimal {
	if len(history) == 0 || window <= 0 {
		return nil
	}
	if len(history) > window {
		history = history[len(history)-window:]
	}

	sum := decimal.Zero
	for _, p := range history {
		sum = sum.Add(p.Close)
	}
	avg := contracts.SafeDiv(sum, decimal.NewFromInt(int64(len(history))))
	return &avg
}

// LongTermOutlook classifies a trailing P/E
func LongTermOutlook(pe decimal.Decimal) string {
	switch {
	case !pe.IsPositive():
		return contracts.OutlookUnknown
	case pe.LessThan(valuePEBand):
		return contracts.OutlookValue
	case pe.LessThan(fairPEBand):
		return contracts.OutlookFair
	default:
		return contracts.OutlookExpensive
	}
}

// ShortTermOutlook compares price with its moving average
func ShortTermOutlook(price decimal.Decimal, ma *decimal.Decimal) string {
	switch {
	case ma == nil:
		return contracts.OutlookUnknown
	case price.GreaterThan(*ma):
		return contracts.OutlookUptrend
	default:
		return contracts.OutlookDowntrend
	}
}
