package scoring

import (
	"fmt"
	"math"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// =============================================================================
// Sub-score normalizers
// =============================================================================

// Clip bounds v to [lo, hi]; NaN collapses to lo
func Clip(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// VolatilityScore maps annualized volatility to (0, 1]; lower volatility scores higher
func VolatilityScore(volatility float64) float64 {
	return 1 / (1 + volatility*8)
}

// ReturnScore maps annualized mean return to [0, 1] around a ±20% band
func ReturnScore(meanReturn float64) float64 {
	return Clip((meanReturn+0.2)/0.4, 0, 1)
}

// SharpeScore maps Sharpe to [0, 1] over [-2, 2]
func SharpeScore(sharpe float64) float64 {
	return Clip((sharpe+2)/4, 0, 1)
}

// StabilityScore is 1 - volatility, unbounded below
func StabilityScore(volatility float64) float64 {
	return 1 - volatility
}

// GrowthScore is the growth fraction itself, unbounded
func GrowthScore(growth float64) float64 {
	return growth
}

// LeverageScore is 1 - debt ratio, not re-clamped
func LeverageScore(debtRatio float64) float64 {
	return 1 - debtRatio
}

// ProfitabilityScore is the raw profit margin, unbounded below
func ProfitabilityScore(profitMargin float64) float64 {
	return profitMargin
}

// SizeScore maps log(1+market cap) onto roughly [0, 1]
func SizeScore(logMarketCap float64) float64 {
	return logMarketCap / 30
}

// needsFundamentals lists factors derived from provider fundamentals
var needsFundamentals = map[contracts.Factor]bool{
	contracts.FactorLeverage:      true,
	contracts.FactorProfitability: true,
	contracts.FactorSize:          true,
}

// KnownFactor reports whether f has a normalizer
func KnownFactor(f contracts.Factor) bool {
	switch f {
	case contracts.FactorVolatility, contracts.FactorReturn, contracts.FactorSharpe,
		contracts.FactorStability, contracts.FactorGrowth,
		contracts.FactorLeverage, contracts.FactorProfitability, contracts.FactorSize:
		return true
	}
	return false
}

// SubScore normalizes one factor from the statistics
func SubScore(f contracts.Factor, stats *contracts.Statistics) (float64, error) {
	if needsFundamentals[f] && !stats.HasFundamentals() {
		return 0, fmt.Errorf("%w: factor %s", contracts.ErrFundamentalsUnavailable, f)
	}

	switch f {
	case contracts.FactorVolatility:
		return VolatilityScore(stats.Volatility), nil
	case contracts.FactorReturn:
		return ReturnScore(stats.MeanReturn), nil
	case contracts.FactorSharpe:
		return SharpeScore(stats.Sharpe), nil
	case contracts.FactorStability:
		return StabilityScore(stats.Volatility), nil
	case contracts.FactorGrowth:
		return GrowthScore(stats.Growth), nil
	case contracts.FactorLeverage:
		return LeverageScore(*stats.DebtRatio), nil
	case contracts.FactorProfitability:
		return ProfitabilityScore(*stats.ProfitMargin), nil
	case contracts.FactorSize:
		return SizeScore(*stats.LogMarketCap), nil
	}
	return 0, contracts.ValidationError{Field: "factor", Message: fmt.Sprintf("unknown factor %q", f)}
}
