package feed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/pkg/logger"
)

// Supported feed formats
const (
	FormatAuto = "auto"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Fetcher downloads a feed body and reports its Content-Type.
// *httputil.Client satisfies it.
type Fetcher interface {
	GetBytes(ctx context.Context, url string) ([]byte, string, error)
}

// Loader reads the lot sheet from a URL (or a local path) and normalizes it
// ⭐ SSOT: Lot 피드 로딩은 여기서만
type Loader struct {
	fetcher    Fetcher
	format     string
	normalizer *Normalizer
	logger     *logger.Logger
}

// NewLoader creates a loader. format is auto, csv or html.
func NewLoader(fetcher Fetcher, format string, suffixes []string, log *logger.Logger) *Loader {
	if format == "" {
		format = FormatAuto
	}
	return &Loader{
		fetcher:    fetcher,
		format:     strings.ToLower(format),
		normalizer: NewNormalizer(suffixes, log),
		logger:     log,
	}
}

// Load fetches and normalizes the feed at source.
// Every failure wraps contracts.ErrSourceUnavailable.
func (l *Loader) Load(ctx context.Context, source string) (*Result, error) {
	data, contentType, err := l.read(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrSourceUnavailable, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: feed body is empty", contracts.ErrSourceUnavailable)
	}

	format := l.format
	if format == FormatAuto {
		format = DetectFormat(source, contentType, data)
	}

	var table *Table
	switch format {
	case FormatHTML:
		table, err = parseHTML(data)
	default:
		table, err = parseCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrSourceUnavailable, err)
	}

	l.logger.WithFields(map[string]interface{}{
		"format": format,
		"rows":   len(table.Rows),
	}).Debug("Fetched lot feed")

	return l.normalizer.Normalize(table)
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetcher.GetBytes(ctx, source)
	}

	data, err := os.ReadFile(strings.TrimPrefix(source, "file://"))
	if err != nil {
		return nil, "", err
	}
	return data, "", nil
}

// DetectFormat picks csv or html from the URL, the Content-Type and,
// as a last resort, the first byte of the body
func DetectFormat(source, contentType string, body []byte) string {
	lowerURL := strings.ToLower(source)
	switch {
	case strings.Contains(lowerURL, "output=csv"), strings.HasSuffix(lowerURL, ".csv"):
		return FormatCSV
	case strings.Contains(lowerURL, "pubhtml"), strings.HasSuffix(lowerURL, ".html"):
		return FormatHTML
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "html"):
		return FormatHTML
	case strings.Contains(ct, "csv"):
		return FormatCSV
	}

	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("<")) {
		return FormatHTML
	}
	return FormatCSV
}
