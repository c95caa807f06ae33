package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, Validate(p))

	assert.Equal(t, "0.2", p.TakeProfit().String())
	assert.Equal(t, "0.1", p.AverageDown().String())
	assert.Equal(t, "35", p.ConcentrationLimitPct().String())
	assert.Equal(t, "18", p.Diagnostic.MaxPEDecimal().String())
	assert.Equal(t, "100", p.Diagnostic.DefaultDebtToEquityDecimal().String())
	assert.Equal(t, 20, p.Diagnostic.MAWindow)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	p, err := Parse([]byte(`
signals:
  take_profit_ratio: 0.25
concentration:
  warning_ratio: 0.30
feed:
  ticker_suffixes: [".TW", ".TWO"]
`))
	require.NoError(t, err)

	assert.Equal(t, 0.25, p.Signals.TakeProfitRatio)
	assert.Equal(t, 0.10, p.Signals.AverageDownRatio, "unset field keeps default")
	assert.Equal(t, "30", p.ConcentrationLimitPct().String())
	assert.Equal(t, []string{".TW", ".TWO"}, p.Feed.TickerSuffixes)
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("signals:\n  take_profit: 0.3\n"))
	assert.Error(t, err, "typo must be rejected")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Policy)
		field  string
	}{
		{"zero take profit", func(p *Policy) { p.Signals.TakeProfitRatio = 0 }, "signals.take_profit_ratio"},
		{"average down ≥ 1", func(p *Policy) { p.Signals.AverageDownRatio = 1 }, "signals.average_down_ratio"},
		{"concentration > 1", func(p *Policy) { p.Concentration.WarningRatio = 1.5 }, "concentration.warning_ratio"},
		{"negative pe", func(p *Policy) { p.Diagnostic.MaxPE = -1 }, "diagnostic.max_pe"},
		{"tiny window", func(p *Policy) { p.Diagnostic.MAWindow = 1 }, "diagnostic.ma_window"},
		{"short history", func(p *Policy) { p.Diagnostic.HistoryDays = 10 }, "diagnostic.history_days"},
		{"bad suffix", func(p *Policy) { p.Feed.TickerSuffixes = []string{"TW"} }, "feed.ticker_suffixes[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)

			err := Validate(p)
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diagnostic:\n  max_pe: 15\n"), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15.0, p.Diagnostic.MaxPE)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestResolve(t *testing.T) {
	p, err := Resolve("", []string{".tw"})
	require.NoError(t, err)
	assert.Equal(t, []string{".TW"}, p.Feed.TickerSuffixes)

	// Config suffixes are validated after they override the file
	_, err = Resolve("", []string{"TW"})
	require.Error(t, err)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "feed.ticker_suffixes[0]", verr.Field)

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	h2, _ := Hash(Default())
	assert.Equal(t, h1, h2, "hash must be deterministic")

	changed := Default()
	changed.Signals.TakeProfitRatio = 0.25
	assert.NotEqual(t, h1, MustHash(changed))
}

func TestWithSuffixes(t *testing.T) {
	base := Default()
	assert.Same(t, base, base.WithSuffixes(nil))

	p := base.WithSuffixes([]string{" .tw ", ".two"})
	assert.Equal(t, []string{".TW", ".TWO"}, p.Feed.TickerSuffixes)
	assert.Empty(t, base.Feed.TickerSuffixes, "original must not change")
}
