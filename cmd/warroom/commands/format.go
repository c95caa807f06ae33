package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

var positionColumns = []string{"Ticker", "Name", "Qty", "Avg Cost", "Price", "Value", "Profit", "Return", "Dividend", "Yield", "Action"}
var positionWidths = []int{9, 16, 8, 10, 10, 12, 12, 8, 10, 7, 12}

// PrintReport prints the full war room view
func PrintReport(w io.Writer, r *contracts.Report) {
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  Portfolio %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	PrintSeparator(w)
	PrintKeyValue(w, "Source", r.Source, 14)
	PrintKeyValue(w, "Status", string(r.Status), 14)
	if r.Stale {
		PrintKeyValue(w, "Data", "stale (last good refresh)", 14)
	}
	PrintSeparator(w)

	s := r.Summary
	PrintKeyValue(w, "Market value", money(s.TotalMarketValue), 14)
	PrintKeyValue(w, "Cost", money(s.TotalCost), 14)
	PrintKeyValue(w, "Profit", signedMoney(s.TotalProfit)+" ("+pct(s.TotalReturnPct)+")", 14)
	PrintKeyValue(w, "Dividends/yr", money(s.TotalDividend), 14)
	if s.AnnualTarget.IsPositive() {
		PrintKeyValue(w, "Target", money(s.AnnualTarget)+" ("+pct(s.TargetAchievementPct)+" achieved)", 14)
	}
	if s.ConcentrationTicker != "" {
		PrintKeyValue(w, "Concentration", fmt.Sprintf("%s %s [%s]", s.ConcentrationTicker, pct(s.ConcentrationPct), s.ConcentrationStatus), 14)
	}
	fmt.Fprintln(w)

	PrintTableHeader(w, positionColumns, positionWidths)
	for _, p := range r.Positions {
		PrintTableRow(w, []string{
			p.Ticker,
			truncate(p.DisplayName, positionWidths[1]),
			p.TotalQuantity.String(),
			p.AverageCost.StringFixed(2),
			p.CurrentPrice.StringFixed(2),
			money(p.MarketValue),
			signedMoney(p.Profit),
			pct(p.ReturnPct),
			money(p.AnnualDividend),
			pct(p.DividendYieldPct),
			actionLabel(p.Action),
		}, positionWidths)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "⚠️  [%s] %s %s\n", warn.Kind, warn.Ticker, warn.Message)
		}
	}
	PrintDoubleSeparator(w)
}

// PrintDiagnosis prints a single ticker health check
func PrintDiagnosis(w io.Writer, d *contracts.DiagnosticResult) {
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s  %s\n", d.Ticker, d.DisplayName)
	PrintSeparator(w)
	PrintKeyValue(w, "Score", fmt.Sprintf("%d / 100", d.Score), 12)
	PrintKeyValue(w, "Price", d.CurrentPrice.StringFixed(2), 12)
	PrintKeyValue(w, "Trailing P/E", d.TrailingPE.StringFixed(2), 12)
	PrintKeyValue(w, "MA20", d.MovingAverage20.StringFixed(2), 12)
	PrintKeyValue(w, "Yield", pct(d.DividendYieldPct), 12)
	PrintKeyValue(w, "Debt/Equity", d.DebtToEquity.StringFixed(1), 12)
	PrintKeyValue(w, "Long term", string(d.Outlook.LongTerm), 12)
	PrintKeyValue(w, "Short term", string(d.Outlook.ShortTerm), 12)

	tags := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		tags = append(tags, string(t))
	}
	if len(tags) == 0 {
		tags = append(tags, "-")
	}
	PrintKeyValue(w, "Tags", strings.Join(tags, ", "), 12)
	PrintDoubleSeparator(w)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	// Separator line
	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

func money(d decimal.Decimal) string {
	return groupThousands(d.StringFixed(0))
}

func signedMoney(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + money(d)
	}
	return money(d)
}

func pct(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

func actionLabel(a contracts.Action) string {
	switch a {
	case contracts.ActionTakeProfit:
		return "TAKE PROFIT"
	case contracts.ActionAverageDown:
		return "AVERAGE DOWN"
	default:
		return "hold"
	}
}

// groupThousands inserts commas into an integer string
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
