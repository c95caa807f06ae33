package portfolio

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wonny/warroom/internal/contracts"
	"github.com/wonny/warroom/internal/feed"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// fakeProvider serves canned market data and counts calls
type fakeProvider struct {
	mu         sync.Mutex
	prices     map[string]string
	metadata   map[string]contracts.Metadata
	history    map[string][]contracts.PricePoint
	priceErr   error
	metaErr    map[string]error
	priceCalls int
	metaCalls  map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		prices:    map[string]string{},
		metadata:  map[string]contracts.Metadata{},
		history:   map[string][]contracts.PricePoint{},
		metaErr:   map[string]error{},
		metaCalls: map[string]int{},
	}
}

func (f *fakeProvider) FetchPrices(ctx context.Context, tickers []string) (map[string]contracts.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls++

	if f.priceErr != nil {
		return nil, f.priceErr
	}

	out := map[string]contracts.Quote{}
	for _, t := range tickers {
		if p, ok := f.prices[t]; ok {
			out[t] = contracts.Quote{Ticker: t, Price: d(p)}
		}
	}
	return out, nil
}

func (f *fakeProvider) FetchMetadata(ctx context.Context, ticker string) (contracts.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metaCalls[ticker]++

	if err := f.metaErr[ticker]; err != nil {
		return contracts.Metadata{}, err
	}
	return f.metadata[ticker], nil
}

func (f *fakeProvider) FetchHistory(ctx context.Context, ticker string, days int) ([]contracts.PricePoint, error) {
	return f.history[ticker], nil
}

// fakeLoader returns fixed lots
type fakeLoader struct {
	lots  []contracts.Lot
	err   error
	calls int
}

func (l *fakeLoader) Load(ctx context.Context, source string) (*feed.Result, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return &feed.Result{Lots: l.lots}, nil
}

var errProvider = errors.New("provider down")

func lot(ticker, price, qty, fee string) contracts.Lot {
	return contracts.Lot{Ticker: ticker, UnitPrice: d(price), Quantity: d(qty), Fee: d(fee)}
}
