package marketstats

import (
	"time"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// RollingVolatility returns annualized sample volatility over a trailing window of returns
// Output is aligned with returns; entries before the window fills are 0.
func RollingVolatility(returns []float64, window int) []float64 {
	out := make([]float64, len(returns))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(returns); i++ {
		out[i] = AnnualizedVolatility(returns[i-window+1 : i+1])
	}
	return out
}

// MovingAverage returns the trailing simple moving average
// Output is aligned with values; entries before the window fills are 0.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window < 1 {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// Display builds the chart auxiliaries aligned with the series dates
// Rolling volatility at date i uses the returns ending at close i; date 0 has none.
func Display(series contracts.PriceSeries) *contracts.DisplaySeries {
	if len(series) == 0 {
		return nil
	}
	closes := series.Closes()

	dates := make([]time.Time, len(series))
	for i, p := range series {
		dates[i] = p.Date
	}

	vol := make([]float64, len(series))
	copy(vol[1:], RollingVolatility(Returns(closes), RollingVolatilityWindow))

	return &contracts.DisplaySeries{
		Dates:             dates,
		RollingVolatility: vol,
		MovingAverage:     MovingAverage(closes, MovingAverageWindow),
	}
}
