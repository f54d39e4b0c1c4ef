package contracts

import (
	"math"
	"time"
)

// Pipeline identifies which scoring pipeline produced a result
type Pipeline string

const (
	PipelineFeature Pipeline = "feature" // 수동 입력 지표 → 회귀 모델
	PipelineMarket  Pipeline = "market"  // 시세 기반 프록시
)

// FeatureVector is the manually entered metric set for the regression pipeline
// ⭐ SSOT: 입력 피처 순서는 Values()가 정의
type FeatureVector struct {
	Emission  float64 `json:"emission"`   // carbon emission intensity [0,100]
	Renewable float64 `json:"renewable"`  // renewable energy usage % [0,100]
	Diversity float64 `json:"diversity"`  // board diversity % [0,100]
	Turnover  float64 `json:"turnover"`   // employee turnover % [0,50]
	DebtRatio float64 `json:"debt_ratio"` // [0.0,1.0]
}

// FeatureCount is the dimension of a FeatureVector
const FeatureCount = 5

// FeatureRange is the declared valid interval of one feature
type FeatureRange struct {
	Name string
	Min  float64
	Max  float64
}

// FeatureRanges lists the valid input range per feature, in Values() order
var FeatureRanges = [FeatureCount]FeatureRange{
	{Name: "emission", Min: 0, Max: 100},
	{Name: "renewable", Min: 0, Max: 100},
	{Name: "diversity", Min: 0, Max: 100},
	{Name: "turnover", Min: 0, Max: 50},
	{Name: "debt_ratio", Min: 0, Max: 1},
}

// DefaultFeatureVector is the preset shown before the user edits any metric
func DefaultFeatureVector() FeatureVector {
	return FeatureVector{
		Emission:  50,
		Renewable: 30,
		Diversity: 25,
		Turnover:  15,
		DebtRatio: 0.5,
	}
}

// Values returns the features in model input order
func (f FeatureVector) Values() [FeatureCount]float64 {
	return [FeatureCount]float64{f.Emission, f.Renewable, f.Diversity, f.Turnover, f.DebtRatio}
}

// Validate checks every feature against FeatureRanges
func (f FeatureVector) Validate() error {
	values := f.Values()
	for i, r := range FeatureRanges {
		v := values[i]
		if v != v || v < r.Min || v > r.Max {
			return ValidationError{
				Field:   r.Name,
				Message: formatRange(r),
			}
		}
	}
	return nil
}

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a chronologically increasing sequence of closes
type PriceSeries []PricePoint

// Closes returns the close prices in order
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// Finite drops points whose close is NaN or ±Inf
func (s PriceSeries) Finite() PriceSeries {
	out := make(PriceSeries, 0, len(s))
	for _, p := range s {
		if isFinite(p.Close) {
			out = append(out, p)
		}
	}
	return out
}

// Fundamentals are optional company figures supplied by a provider
type Fundamentals struct {
	MarketCap    float64 `json:"market_cap"`
	TotalDebt    float64 `json:"total_debt"`
	NetIncome    float64 `json:"net_income"`
	Revenue      float64 `json:"revenue"`
	DebtRatio    float64 `json:"debt_ratio"`    // debt / market cap
	ProfitMargin float64 `json:"profit_margin"` // net income / revenue
}

// Finite reports whether every figure is a real number
func (f Fundamentals) Finite() bool {
	return isFinite(f.MarketCap) && isFinite(f.TotalDebt) && isFinite(f.NetIncome) &&
		isFinite(f.Revenue) && isFinite(f.DebtRatio) && isFinite(f.ProfitMargin)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Statistics are the scalar quantities derived from a price series
type Statistics struct {
	Observations int     `json:"observations"`
	Volatility   float64 `json:"volatility"`  // annualized
	MeanReturn   float64 `json:"mean_return"` // annualized
	Sharpe       float64 `json:"sharpe"`
	Growth       float64 `json:"growth"`
	StartPrice   float64 `json:"start_price"`
	EndPrice     float64 `json:"end_price"`

	// Present only when fundamentals were supplied
	DebtRatio    *float64 `json:"debt_ratio,omitempty"`
	ProfitMargin *float64 `json:"profit_margin,omitempty"`
	LogMarketCap *float64 `json:"log_market_cap,omitempty"`
}

// DisplaySeries are rolling auxiliaries for charts; never used for scoring
type DisplaySeries struct {
	Dates             []time.Time `json:"dates"`
	RollingVolatility []float64   `json:"rolling_volatility"` // 30d annualized, NaN-free; 0 before the window fills
	MovingAverage     []float64   `json:"moving_average"`     // 50d; 0 before the window fills
}

// SeriesQuality summarizes coverage and integrity of a fetched series
type SeriesQuality struct {
	Observations int     `json:"observations"`
	Expected     int     `json:"expected"`   // weekdays in the lookback window
	Coverage     float64 `json:"coverage"`   // observations / expected, capped at 1
	NonFinite    int     `json:"non_finite"` // NaN or ±Inf closes, dropped before scoring
	NonPositive  int     `json:"non_positive"`
	Duplicates   int     `json:"duplicates"`
	OutOfOrder   int     `json:"out_of_order"`
	Passed       bool    `json:"passed"`
}

// HasFundamentals reports whether the fundamentals ratios were derived
func (s Statistics) HasFundamentals() bool {
	return s.DebtRatio != nil && s.ProfitMargin != nil && s.LogMarketCap != nil
}

// Factor names a sub-score
type Factor string

const (
	FactorVolatility    Factor = "volatility"
	FactorReturn        Factor = "return"
	FactorSharpe        Factor = "sharpe"
	FactorStability     Factor = "stability"
	FactorGrowth        Factor = "growth"
	FactorLeverage      Factor = "leverage"
	FactorProfitability Factor = "profitability"
	FactorSize          Factor = "size"
)

// SubScores maps factor → normalized value
type SubScores map[Factor]float64

// RiskLevel is the financial risk tier
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// ConfidenceLevel is the investor confidence tier
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "Low"
	ConfidenceStable ConfidenceLevel = "Stable"
	ConfidenceHigh   ConfidenceLevel = "High"
)

// PressureLevel is the regulatory pressure tier
type PressureLevel string

const (
	PressureLow    PressureLevel = "Low"
	PressureMedium PressureLevel = "Medium"
	PressureHigh   PressureLevel = "High"
)

// Band is the score band shared by the classifier and the narrative
type Band string

const (
	BandStrong   Band = "strong"
	BandModerate Band = "moderate"
	BandWeak     Band = "weak"
)

// Classification is derived solely from the composite score
type Classification struct {
	Band               Band            `json:"band"`
	Risk               RiskLevel       `json:"risk"`
	Confidence         ConfidenceLevel `json:"confidence"`
	RegulatoryPressure PressureLevel   `json:"regulatory_pressure"`
	CostOfCapital      string          `json:"cost_of_capital"`
}

// ScoreResult is the output record of one scoring invocation
type ScoreResult struct {
	ID             string         `json:"id"`
	Pipeline       Pipeline       `json:"pipeline"`
	Scheme         string         `json:"scheme,omitempty"`
	SchemeHash     string         `json:"scheme_hash,omitempty"`
	Ticker         string         `json:"ticker,omitempty"`
	Provider       string         `json:"provider,omitempty"`
	Features       *FeatureVector `json:"features,omitempty"`
	RawScore       float64        `json:"raw_score"`
	Score          float64        `json:"score"`
	SubScores      SubScores      `json:"sub_scores,omitempty"`
	Statistics     *Statistics    `json:"statistics,omitempty"`
	Classification Classification `json:"classification"`
	Narrative      string         `json:"narrative"`
	Series         *DisplaySeries `json:"series,omitempty"`
	Quality        *SeriesQuality `json:"quality,omitempty"`
	ComputedAt     time.Time      `json:"computed_at"`
}
