package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/internal/policy"
)

// Summarize computes portfolio totals over valued positions.
// The first position wins a concentration tie.
func Summarize(positions []contracts.ValuedPosition, annualTarget decimal.Decimal, pol *policy.Policy) contracts.PortfolioSummary {
	s := contracts.PortfolioSummary{
		TotalMarketValue:    decimal.Zero,
		TotalCost:           decimal.Zero,
		TotalDividend:       decimal.Zero,
		AnnualTarget:        annualTarget,
		ConcentrationStatus: contracts.ConcentrationBalanced,
		PositionCount:       len(positions),
	}

	maxValue := decimal.Zero
	for i, p := range positions {
		s.TotalMarketValue = s.TotalMarketValue.Add(p.MarketValue)
		s.TotalCost = s.TotalCost.Add(p.TotalCost)
		s.TotalDividend = s.TotalDividend.Add(p.AnnualDividend)

		if i == 0 || p.MarketValue.GreaterThan(maxValue) {
			maxValue = p.MarketValue
			s.ConcentrationTicker = p.Ticker
		}
	}

	s.TotalProfit = s.TotalMarketValue.Sub(s.TotalCost)
	s.TotalReturnPct = contracts.Percent(s.TotalProfit, s.TotalCost)
	s.TargetAchievementPct = contracts.Percent(s.TotalDividend, annualTarget)
	s.ConcentrationPct = contracts.Percent(maxValue, s.TotalMarketValue)

	if s.ConcentrationPct.GreaterThan(pol.ConcentrationLimitPct()) {
		s.ConcentrationStatus = contracts.ConcentrationWarning
	}

	return s
}
