package marketstats

import (
	"fmt"
	"math"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// TradingDays annualizes daily statistics
	TradingDays = 252

	// SharpeEpsilon keeps the Sharpe ratio finite for zero volatility
	SharpeEpsilon = 1e-6

	// RollingVolatilityWindow is the display window for rolling volatility
	RollingVolatilityWindow = 30

	// MovingAverageWindow is the display window for the moving average
	MovingAverageWindow = 50

	// MinObservations is the shortest series that yields one return
	MinObservations = 2
)

// =============================================================================
// Extraction
// =============================================================================

// Extract derives scalar statistics from a price series and optional fundamentals
// ⭐ SSOT: 수익률/변동성/샤프/성장률 계산은 여기서만
func Extract(series contracts.PriceSeries, fundamentals *contracts.Fundamentals) (*contracts.Statistics, error) {
	if len(series) < MinObservations {
		return nil, fmt.Errorf("%w: need at least %d closes, got %d",
			contracts.ErrInsufficientData, MinObservations, len(series))
	}

	closes := series.Closes()
	returns := Returns(closes)

	start := closes[0]
	end := closes[len(closes)-1]

	vol := AnnualizedVolatility(returns)
	mean := Mean(returns) * TradingDays

	stats := &contracts.Statistics{
		Observations: len(series),
		Volatility:   vol,
		MeanReturn:   mean,
		Sharpe:       mean / (vol + SharpeEpsilon),
		Growth:       growth(start, end),
		StartPrice:   start,
		EndPrice:     end,
	}

	if fundamentals != nil {
		debt, margin, size := Ratios(*fundamentals)
		stats.DebtRatio = &debt
		stats.ProfitMargin = &margin
		stats.LogMarketCap = &size
	}
	return stats, nil
}

// Returns computes percentage changes between consecutive closes
// len(returns) == len(closes)-1
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			// 0 종가 다음 수익률은 정의되지 않음
			out[i-1] = 0
			continue
		}
		out[i-1] = (closes[i] - prev) / prev
	}
	return out
}

// Ratios derives debt/market-cap, net-income/revenue and log(1+market-cap)
// Provider supplied ratios are used when the raw figures are missing.
func Ratios(f contracts.Fundamentals) (debtRatio, profitMargin, logMarketCap float64) {
	debtRatio = f.DebtRatio
	if f.MarketCap > 0 && f.TotalDebt != 0 {
		debtRatio = f.TotalDebt / f.MarketCap
	}

	profitMargin = f.ProfitMargin
	if f.Revenue != 0 && f.NetIncome != 0 {
		profitMargin = f.NetIncome / f.Revenue
	}

	if f.MarketCap > 0 {
		logMarketCap = math.Log1p(f.MarketCap)
	}
	return debtRatio, profitMargin, logMarketCap
}

func growth(start, end float64) float64 {
	if start == 0 {
		return 0
	}
	return (end - start) / start
}

// =============================================================================
// Primitives
// =============================================================================

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev returns the sample (n-1) standard deviation
// A single value has zero dispersion.
func SampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// AnnualizedVolatility scales the sample std of daily returns by √252
func AnnualizedVolatility(returns []float64) float64 {
	return SampleStdDev(returns) * math.Sqrt(TradingDays)
}
