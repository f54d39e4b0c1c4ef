package classify

import (
	"fmt"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// Band thresholds
const (
	FeatureUpper = 80.0
	MarketUpper  = 75.0
	Lower        = 50.0
)

// Cost-of-capital impact per band
const (
	CostOfCapitalStrong   = "Decreases by ~1-2%"
	CostOfCapitalModerate = "Neutral impact"
	CostOfCapitalWeak     = "Increases by ~2-4%"
)

// Classifier maps a composite score to categorical labels
// Lower bounds are closed: score == Upper is strong, score == Lower is moderate.
type Classifier struct {
	Upper float64
	Lower float64
}

// New creates a classifier with explicit thresholds
func New(upper, lower float64) (*Classifier, error) {
	if !(lower < upper) {
		return nil, contracts.ValidationError{
			Field:   "classifier",
			Message: fmt.Sprintf("lower threshold %g must be below upper %g", lower, upper),
		}
	}
	return &Classifier{Upper: upper, Lower: lower}, nil
}

// ForPipeline returns the classifier used by each pipeline
func ForPipeline(p contracts.Pipeline) *Classifier {
	if p == contracts.PipelineFeature {
		return &Classifier{Upper: FeatureUpper, Lower: Lower}
	}
	return &Classifier{Upper: MarketUpper, Lower: Lower}
}

// Band returns the score band
func (c *Classifier) Band(score float64) contracts.Band {
	switch {
	case score >= c.Upper:
		return contracts.BandStrong
	case score >= c.Lower:
		return contracts.BandModerate
	default:
		return contracts.BandWeak
	}
}

// Classify derives every label from the score alone
func (c *Classifier) Classify(score float64) contracts.Classification {
	band := c.Band(score)
	switch band {
	case contracts.BandStrong:
		return contracts.Classification{
			Band:               band,
			Risk:               contracts.RiskLow,
			Confidence:         contracts.ConfidenceHigh,
			RegulatoryPressure: contracts.PressureLow,
			CostOfCapital:      CostOfCapitalStrong,
		}
	case contracts.BandModerate:
		return contracts.Classification{
			Band:               band,
			Risk:               contracts.RiskModerate,
			Confidence:         contracts.ConfidenceStable,
			RegulatoryPressure: contracts.PressureMedium,
			CostOfCapital:      CostOfCapitalModerate,
		}
	default:
		return contracts.Classification{
			Band:               band,
			Risk:               contracts.RiskHigh,
			Confidence:         contracts.ConfidenceLow,
			RegulatoryPressure: contracts.PressureHigh,
			CostOfCapital:      CostOfCapitalWeak,
		}
	}
}
