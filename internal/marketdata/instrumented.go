package marketdata

import (
	"context"
	"time"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/metrics"
)

// InstrumentedProvider records fetch latency for another provider
type InstrumentedProvider struct {
	inner   contracts.PriceProvider
	metrics *metrics.Recorder
}

// NewInstrumented wraps inner with latency metrics
func NewInstrumented(inner contracts.PriceProvider, m *metrics.Recorder) *InstrumentedProvider {
	return &InstrumentedProvider{inner: inner, metrics: m}
}

// Name reports the inner provider's name
func (p *InstrumentedProvider) Name() string {
	return p.inner.Name()
}

// FetchPrices delegates and records the duration
func (p *InstrumentedProvider) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	start := time.Now()
	defer func() { p.metrics.ObserveFetch(p.inner.Name(), "prices", time.Since(start)) }()
	return p.inner.FetchPrices(ctx, ticker, from, to)
}

// FetchFundamentals delegates when the inner provider supplies fundamentals
func (p *InstrumentedProvider) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	fp, ok := p.inner.(contracts.FundamentalsProvider)
	if !ok {
		return nil, contracts.ErrFundamentalsUnavailable
	}
	start := time.Now()
	defer func() { p.metrics.ObserveFetch(p.inner.Name(), "fundamentals", time.Since(start)) }()
	return fp.FetchFundamentals(ctx, ticker)
}
