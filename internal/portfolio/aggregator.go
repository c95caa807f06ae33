package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
)

// Aggregate groups lots by ticker in first-seen order.
// TotalCost includes fees; positions with zero total quantity are dropped.
// ⭐ SSOT: Lot → Position 집계는 여기서만
func Aggregate(lots []contracts.Lot) []contracts.Position {
	index := make(map[string]int)
	positions := make([]contracts.Position, 0)

	for _, lot := range lots {
		i, ok := index[lot.Ticker]
		if !ok {
			i = len(positions)
			index[lot.Ticker] = i
			positions = append(positions, contracts.Position{
				Ticker:        lot.Ticker,
				TotalQuantity: decimal.Zero,
				TotalCost:     decimal.Zero,
			})
		}

		positions[i].TotalQuantity = positions[i].TotalQuantity.Add(lot.Quantity)
		positions[i].TotalCost = positions[i].TotalCost.Add(lot.Cost())
	}

	out := positions[:0]
	for _, p := range positions {
		if p.TotalQuantity.IsPositive() {
			out = append(out, p)
		}
	}
	return out
}

// Tickers returns the tickers of positions, in order
func Tickers(positions []contracts.Position) []string {
	tickers := make([]string, len(positions))
	for i, p := range positions {
		tickers[i] = p.Ticker
	}
	return tickers
}
