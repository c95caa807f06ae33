package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/internal/policy"
)

// Valuate computes the metrics of one fused position.
// Every division is guarded; a zero cost or price yields 0.
func Valuate(fp contracts.FusedPosition, pol *policy.Policy) contracts.ValuedPosition {
	pos := fp.Position
	price := fp.Market.LastPrice

	marketValue := price.Mul(pos.TotalQuantity)
	profit := marketValue.Sub(pos.TotalCost)

	return contracts.ValuedPosition{
		Position:         pos,
		DisplayName:      fp.Market.DisplayName,
		AverageCost:      pos.AverageCost(),
		CurrentPrice:     price,
		MarketValue:      marketValue,
		Profit:           profit,
		ReturnPct:        contracts.Percent(profit, pos.TotalCost),
		AnnualDividend:   fp.Market.DividendRate.Mul(pos.TotalQuantity),
		DividendYieldPct: contracts.Percent(fp.Market.DividendRate, price),
		Action:           DecideAction(profit, pos.TotalCost, pol),
	}
}

// DecideAction picks the advisory signal.
// TAKE_PROFIT wins over AVERAGE_DOWN; both bounds are strict.
func DecideAction(profit, cost decimal.Decimal, pol *policy.Policy) contracts.Action {
	switch {
	case profit.GreaterThan(cost.Mul(pol.TakeProfit())):
		return contracts.ActionTakeProfit
	case profit.LessThan(cost.Mul(pol.AverageDown()).Neg()):
		return contracts.ActionAverageDown
	default:
		return contracts.ActionHold
	}
}

// ValuateAll valuates fused positions in order
func ValuateAll(fused []contracts.FusedPosition, pol *policy.Policy) []contracts.ValuedPosition {
	out := make([]contracts.ValuedPosition, len(fused))
	for i, fp := range fused {
		out[i] = Valuate(fp, pol)
	}
	return out
}
