package marketdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// StaticName identifies the synthetic provider
const StaticName = "static"

// Reserved static tickers with fixed shapes; anything else is a seeded random walk
const (
	TickerFlat      = "FLAT"      // constant close
	TickerUptrend   = "UPTREND"   // +0.5% every session
	TickerDowntrend = "DOWNTREND" // -0.5% every session
	TickerSingle    = "SINGLE"    // one observation only
	TickerUnknown   = "UNKNOWN"   // empty series
)

const (
	staticStartPrice = 100.0
	trendStep        = 0.005
	walkDrift        = 0.0003
	walkVol          = 0.015
)

// StaticProvider generates deterministic daily closes on weekdays
// Same ticker and range always yield the same series.
type StaticProvider struct{}

// NewStatic creates the synthetic provider
func NewStatic() *StaticProvider {
	return &StaticProvider{}
}

// Name returns the provider name
func (p *StaticProvider) Name() string {
	return StaticName
}

// FetchPrices returns one close per weekday in [from, to]
func (p *StaticProvider) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == TickerUnknown || ticker == "" {
		return contracts.PriceSeries{}, nil
	}

	days := weekdays(from, to)
	if ticker == TickerSingle && len(days) > 1 {
		days = days[len(days)-1:]
	}

	rng := rand.New(rand.NewSource(seedFor(ticker)))
	series := make(contracts.PriceSeries, len(days))
	price := staticStartPrice
	for i, d := range days {
		if i > 0 {
			switch ticker {
			case TickerFlat:
			case TickerUptrend:
				price *= 1 + trendStep
			case TickerDowntrend:
				price *= 1 - trendStep
			default:
				price *= 1 + walkDrift + walkVol*rng.NormFloat64()
			}
		}
		series[i] = contracts.PricePoint{Date: d, Close: price}
	}
	return series, nil
}

// FetchFundamentals returns figures derived from the ticker hash
func (p *StaticProvider) FetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == TickerUnknown || ticker == "" {
		return nil, contracts.ErrFundamentalsUnavailable
	}

	// 1e9 ~ 1e12 시가총액, 부채 0~80%, 마진 -5%~20%
	rng := rand.New(rand.NewSource(seedFor(ticker) ^ 0x5eed))
	marketCap := math.Pow(10, 9+3*rng.Float64())
	debt := marketCap * 0.8 * rng.Float64()
	revenue := marketCap * (0.2 + rng.Float64())
	netIncome := revenue * (-0.05 + 0.25*rng.Float64())

	return &contracts.Fundamentals{
		MarketCap:    marketCap,
		TotalDebt:    debt,
		NetIncome:    netIncome,
		Revenue:      revenue,
		DebtRatio:    debt / marketCap,
		ProfitMargin: netIncome / revenue,
	}, nil
}

func seedFor(ticker string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))
	return int64(h.Sum64() & math.MaxInt64)
}

// weekdays lists Monday-Friday dates (UTC midnight) in [from, to]
func weekdays(from, to time.Time) []time.Time {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}
