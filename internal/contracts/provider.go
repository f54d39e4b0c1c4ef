package contracts

import (
	"context"
	"time"
)

// PriceProvider returns daily closes for a ticker
// ⭐ SSOT: 시세 제공자 인터페이스
// An unknown ticker yields an empty series, not an error.
type PriceProvider interface {
	Name() string
	FetchPrices(ctx context.Context, ticker string, from, to time.Time) (PriceSeries, error)
}

// FundamentalsProvider is implemented by providers that also supply company figures
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, ticker string) (*Fundamentals, error)
}
