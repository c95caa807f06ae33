package feed

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
)

// Column names, matched case-insensitively after trimming
const (
	ColumnTicker   = "id"
	ColumnPrice    = "price"
	ColumnQuantity = "qty"
	ColumnFee      = "fee"
)

// Result is the outcome of normalizing one feed
type Result struct {
	Lots    []contracts.Lot
	Invalid []*contracts.InvalidRowError
	Skipped int // blank, NaN or foreign-exchange rows dropped silently
}

// Warnings converts invalid rows into report warnings
func (r *Result) Warnings() []contracts.Warning {
	out := make([]contracts.Warning, 0, len(r.Invalid))
	for _, e := range r.Invalid {
		out = append(out, contracts.Warning{
			Ticker:  e.Ticker,
			Kind:    contracts.WarningInvalidRow,
			Message: e.Error(),
		})
	}
	return out
}

// Normalizer turns raw feed rows into lots
// ⭐ SSOT: Lot 정규화는 여기서만
type Normalizer struct {
	suffixes []string
	logger   *logger.Logger
}

// NewNormalizer creates a normalizer. An empty suffix list keeps every ticker.
func NewNormalizer(suffixes []string, log *logger.Logger) *Normalizer {
	upper := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			upper = append(upper, s)
		}
	}
	return &Normalizer{suffixes: upper, logger: log}
}

type columns struct {
	ticker, price, qty, fee int
}

// Normalize cleans the table into lots.
// Only a missing header or an empty result is an error.
func (n *Normalizer) Normalize(table *Table) (*Result, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: feed is empty", contracts.ErrSourceUnavailable)
	}

	headerIdx, cols, ok := findHeader(table.Rows)
	if !ok {
		return nil, fmt.Errorf("%w: need %s, %s and %s", contracts.ErrFeedShape, "ID", "Price", "Qty")
	}

	result := &Result{}
	for i := headerIdx + 1; i < len(table.Rows); i++ {
		row := table.Rows[i]
		line := i + 1

		ticker := strings.ToUpper(strings.TrimSpace(cell(row, cols.ticker)))
		if ticker == "" || ticker == "NAN" {
			result.Skipped++
			continue
		}
		if !n.acceptSuffix(ticker) {
			result.Skipped++
			continue
		}

		lot, reason := parseLot(ticker, row, cols)
		if reason != "" {
			invalid := &contracts.InvalidRowError{Line: line, Ticker: ticker, Reason: reason}
			result.Invalid = append(result.Invalid, invalid)
			n.logger.WithField("row", line).Debug(invalid.Error())
			continue
		}

		result.Lots = append(result.Lots, lot)
	}

	if len(result.Lots) == 0 {
		return nil, fmt.Errorf("%w: no valid lots (%d invalid, %d skipped)",
			contracts.ErrSourceUnavailable, len(result.Invalid), result.Skipped)
	}

	n.logger.WithFields(map[string]interface{}{
		"lots":    len(result.Lots),
		"invalid": len(result.Invalid),
		"skipped": result.Skipped,
	}).Debug("Normalized feed")

	return result, nil
}

func (n *Normalizer) acceptSuffix(ticker string) bool {
	if len(n.suffixes) == 0 {
		return true
	}
	for _, s := range n.suffixes {
		if strings.HasSuffix(ticker, s) {
			return true
		}
	}
	return false
}

// findHeader returns the first row that names all required columns
func findHeader(rows [][]string) (int, columns, bool) {
	for i, row := range rows {
		cols := columns{ticker: -1, price: -1, qty: -1, fee: -1}
		for j, name := range row {
			switch strings.ToLower(strings.TrimSpace(name)) {
			case ColumnTicker:
				cols.ticker = j
			case ColumnPrice:
				cols.price = j
			case ColumnQuantity:
				cols.qty = j
			case ColumnFee:
				cols.fee = j
			}
		}
		if cols.ticker >= 0 && cols.price >= 0 && cols.qty >= 0 {
			return i, cols, true
		}
	}
	return 0, columns{}, false
}

func parseLot(ticker string, row []string, cols columns) (contracts.Lot, string) {
	price, err := parseNumber(cell(row, cols.price))
	if err != nil {
		return contracts.Lot{}, "price: " + err.Error()
	}
	qty, err := parseNumber(cell(row, cols.qty))
	if err != nil {
		return contracts.Lot{}, "qty: " + err.Error()
	}

	fee := decimal.Zero
	if raw := cell(row, cols.fee); strings.TrimSpace(raw) != "" {
		if fee, err = parseNumber(raw); err != nil {
			return contracts.Lot{}, "fee: " + err.Error()
		}
	}

	return contracts.Lot{Ticker: ticker, UnitPrice: price, Quantity: qty, Fee: fee}, ""
}

// parseNumber strips thousands separators and rejects negatives
func parseNumber(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty")
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number %q", raw)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative %q", raw)
	}
	return v, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
