package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/pkg/httputil"
	"github.com/wonny/warroom/pkg/logger"
)

// DefaultBaseURL is the public Yahoo Finance query host
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// DefaultCookieURL hands out the session cookie the crumb is bound to
const DefaultCookieURL = "https://fc.yahoo.com"

// maxSymbolsPerCall bounds the symbols list of one quote request
const maxSymbolsPerCall = 50

// Client handles communication with Yahoo Finance.
// Retries and rate limiting live in the injected httputil.Client.
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cookieURL  string

	// Session crumb for the quote and quoteSummary endpoints
	crumbMu sync.Mutex
	crumb   string
}

// NewClient creates a new Yahoo Finance client. The HTTP client gets a
// cookie jar so the session cookie follows every call.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient.WithCookieJar(),
		logger:     log.WithField("client", "yahoo"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookieURL:  DefaultCookieURL,
	}
}

// WithCookieURL overrides the session cookie host
func (c *Client) WithCookieURL(cookieURL string) *Client {
	if cookieURL != "" {
		c.cookieURL = cookieURL
	}
	return c
}

// getJSON fetches path?params from the base URL and decodes it into dest
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dest interface{}) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	if err := c.httpClient.GetJSON(ctx, fullURL, dest); err != nil {
		return fmt.Errorf("yahoo request %s: %w", path, err)
	}
	return nil
}

// decimalPtr converts an optional float into an optional decimal
func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
