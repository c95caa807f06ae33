package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warroom/pkg/config"
	"github.com/wonny/warroom/pkg/httputil"
	"github.com/wonny/warroom/pkg/logger"
)

const quoteJSON = `{"quoteResponse":{"result":[
 {"symbol":"2330.TW","regularMarketPrice":600.5,"shortName":"TSMC","longName":"Taiwan Semiconductor Manufacturing"},
 {"symbol":"0056.TW","regularMarketPrice":0,"shortName":"Yuanta High Div"},
 {"symbol":"2317.TW","shortName":"Hon Hai"}
],"error":null}}`

const summaryJSON = `{"quoteSummary":{"result":[{
 "price":{"longName":"Taiwan Semiconductor Manufacturing","shortName":"TSMC","regularMarketPrice":{"raw":600.5,"fmt":"600.50"}},
 "summaryDetail":{"dividendRate":{"raw":16,"fmt":"16.00"},"dividendYield":{"raw":0.0266},"trailingPE":{}},
 "financialData":{"debtToEquity":{"raw":25.4}}
}],"error":null}}`

const chartJSON = `{"chart":{"result":[{
 "meta":{"symbol":"2330.TW","currency":"TWD"},
 "timestamp":[1704067200,1704153600,1704240000,1704326400],
 "indicators":{"quote":[{"close":[590.0,null,595.5,601.0]}]}
}],"error":null}}`

const (
	testCrumb   = "crumb-1"
	cookiePath  = "/cookie"
	invalidBody = `{"finance":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`
)

// newTestClient serves the cookie and crumb handshake itself and passes
// every other request to handler. Quote and quoteSummary calls without
// the right crumb get a 401, as the live service does.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case cookiePath:
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
			w.WriteHeader(http.StatusNotFound)
		case crumbPath:
			if _, err := r.Cookie("A3"); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(testCrumb))
		default:
			if needsCrumb(r.URL.Path) && r.URL.Query().Get("crumb") != testCrumb {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(invalidBody))
				return
			}
			handler(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return newClientFor(server.URL)
}

func newClientFor(serverURL string) *Client {
	cfg := &config.Config{Yahoo: config.YahooConfig{MaxRetries: 0}}
	return NewClient(httputil.New(cfg, logger.NewNop()), serverURL, logger.NewNop()).
		WithCookieURL(serverURL + cookiePath)
}

func needsCrumb(path string) bool {
	return strings.HasPrefix(path, "/v7/") || strings.HasPrefix(path, "/v10/")
}

func TestFetchPrices(t *testing.T) {
	var gotSymbols string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		gotSymbols = r.URL.Query().Get("symbols")
		w.Write([]byte(quoteJSON))
	})

	quotes, err := client.FetchPrices(context.Background(), []string{"2330.TW", "0056.TW", "2317.TW"})
	require.NoError(t, err)

	assert.Equal(t, "2330.TW,0056.TW,2317.TW", gotSymbols, "one batched call")
	require.Len(t, quotes, 1, "zero and missing prices are dropped")
	q := quotes["2330.TW"]
	assert.True(t, q.Price.Equal(decimal.RequireFromString("600.5")))
	assert.Equal(t, "Taiwan Semiconductor Manufacturing", q.LongName)
}

func TestFetchPrices_Chunks(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
	})

	tickers := make([]string, maxSymbolsPerCall+1)
	for i := range tickers {
		tickers[i] = "T.TW"
	}

	_, err := client.FetchPrices(context.Background(), tickers)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestFetchPrices_PartialChunkFailure(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		var rows []string
		for _, symbol := range strings.Split(r.URL.Query().Get("symbols"), ",") {
			rows = append(rows, fmt.Sprintf(`{"symbol":%q,"regularMarketPrice":10}`, symbol))
		}
		fmt.Fprintf(w, `{"quoteResponse":{"result":[%s],"error":null}}`, strings.Join(rows, ","))
	})

	tickers := make([]string, maxSymbolsPerCall+1)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("%04d.TW", i)
	}

	quotes, err := client.FetchPrices(context.Background(), tickers)
	require.NoError(t, err, "one good chunk is enough")
	assert.Len(t, quotes, maxSymbolsPerCall)
	assert.Contains(t, quotes, "0000.TW")
	assert.NotContains(t, quotes, tickers[maxSymbolsPerCall], "failed chunk is missing, not fatal")
}

func TestFetchPrices_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchPrices(context.Background(), []string{"2330.TW"})
	assert.Error(t, err)
}

func TestFetchMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/2330.TW"))
		w.Write([]byte(summaryJSON))
	})

	meta, err := client.FetchMetadata(context.Background(), "2330.TW")
	require.NoError(t, err)

	assert.Equal(t, "Taiwan Semiconductor Manufacturing", meta.LongName)
	require.NotNil(t, meta.DividendRate)
	assert.True(t, meta.DividendRate.Equal(decimal.NewFromInt(16)))
	assert.Nil(t, meta.TrailingPE, "empty {} means not reported")
	require.NotNil(t, meta.CurrentPrice, "falls back to regularMarketPrice")
	assert.True(t, meta.CurrentPrice.Equal(decimal.RequireFromString("600.5")))
	require.NotNil(t, meta.DebtToEquity)
}

func TestFetchMetadata_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[],"error":null}}`))
	})

	_, err := client.FetchMetadata(context.Background(), "9999.TW")
	assert.Error(t, err)
}

func TestFetchMetadata_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`))
	})

	_, err := client.FetchMetadata(context.Background(), "9999.TW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Quote not found")
}

func TestFetchHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "1mo", r.URL.Query().Get("range"))
		w.Write([]byte(chartJSON))
	})

	points, err := client.FetchHistory(context.Background(), "2330.TW", 20)
	require.NoError(t, err)

	require.Len(t, points, 3, "null close skipped")
	assert.True(t, points[2].Close.Equal(decimal.NewFromInt(601)))
	assert.True(t, points[0].Date.Before(points[1].Date))
}

func TestFetchHistory_TrimsToDays(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartJSON))
	})

	points, err := client.FetchHistory(context.Background(), "2330.TW", 2)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Close.Equal(decimal.RequireFromString("595.5")))
}

func TestFetchHistory_InvalidDays(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.FetchHistory(context.Background(), "2330.TW", 0)
	assert.Error(t, err)
}

func TestRangeFor(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{5, "5d"},
		{20, "1mo"},
		{60, "3mo"},
		{100, "6mo"},
		{250, "1y"},
		{400, "2y"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rangeFor(tt.days), "days=%d", tt.days)
	}
}

func TestCrumb_AcquiredOnceAndReused(t *testing.T) {
	var crumbCalls, quoteCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case cookiePath:
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
			w.WriteHeader(http.StatusNotFound)
		case crumbPath:
			atomic.AddInt32(&crumbCalls, 1)
			w.Write([]byte(testCrumb))
		default:
			atomic.AddInt32(&quoteCalls, 1)
			assert.Equal(t, testCrumb, r.URL.Query().Get("crumb"))
			w.Write([]byte(quoteJSON))
		}
	}))
	defer server.Close()

	client := newClientFor(server.URL)
	for i := 0; i < 3; i++ {
		_, err := client.FetchPrices(context.Background(), []string{"2330.TW"})
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&crumbCalls))
	assert.Equal(t, int32(3), atomic.LoadInt32(&quoteCalls))
}

func TestCrumb_RenewedOnUnauthorized(t *testing.T) {
	var crumbCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case cookiePath:
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
			w.WriteHeader(http.StatusNotFound)
		case crumbPath:
			// First crumb is already expired server side
			if atomic.AddInt32(&crumbCalls, 1) == 1 {
				w.Write([]byte("expired"))
				return
			}
			w.Write([]byte(testCrumb))
		default:
			if r.URL.Query().Get("crumb") != testCrumb {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(invalidBody))
				return
			}
			w.Write([]byte(summaryJSON))
		}
	}))
	defer server.Close()

	meta, err := newClientFor(server.URL).FetchMetadata(context.Background(), "2330.TW")
	require.NoError(t, err)
	assert.Equal(t, "Taiwan Semiconductor Manufacturing", meta.LongName)
	assert.Equal(t, int32(2), atomic.LoadInt32(&crumbCalls))
}

func TestCrumb_RenewsOnlyOnce(t *testing.T) {
	var quoteCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case cookiePath:
			w.WriteHeader(http.StatusNotFound)
		case crumbPath:
			w.Write([]byte(testCrumb))
		default:
			atomic.AddInt32(&quoteCalls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	_, err := newClientFor(server.URL).FetchPrices(context.Background(), []string{"2330.TW"})
	require.Error(t, err)

	var statusErr *httputil.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&quoteCalls))
}

func TestCrumb_HandshakeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No cookie is ever issued, so the crumb endpoint refuses
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newClientFor(server.URL).FetchMetadata(context.Background(), "2330.TW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yahoo crumb")
}

func TestCrumb_HistoryNeedsNoCrumb(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"), "no handshake for chart data")
		assert.Empty(t, r.URL.Query().Get("crumb"))
		w.Write([]byte(chartJSON))
	}))
	defer server.Close()

	points, err := newClientFor(server.URL).FetchHistory(context.Background(), "2330.TW", 20)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}
