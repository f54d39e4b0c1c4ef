package marketdata

import (
	"math"
	"time"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// QualityConfig holds series quality thresholds
type QualityConfig struct {
	MinCoverage float64 // observed / expected weekdays
}

// DefaultQualityConfig allows for exchange holidays (~10 per year)
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{MinCoverage: 0.9}
}

// QualityGate checks a fetched price series before scoring
// The gate reports; it never rejects. Emptiness is handled by the pipeline.
// ⭐ SSOT: 시세 품질 검증은 여기서만
type QualityGate struct {
	config QualityConfig
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config QualityConfig) *QualityGate {
	return &QualityGate{config: config}
}

// Check measures coverage and integrity of series over [from, to]
func (g *QualityGate) Check(series contracts.PriceSeries, from, to time.Time) *contracts.SeriesQuality {
	q := &contracts.SeriesQuality{
		Observations: len(series),
		Expected:     len(weekdays(from, to)),
	}
	if q.Expected > 0 {
		q.Coverage = float64(q.Observations) / float64(q.Expected)
		if q.Coverage > 1 {
			q.Coverage = 1
		}
	}

	for i, p := range series {
		switch {
		case math.IsNaN(p.Close) || math.IsInf(p.Close, 0):
			q.NonFinite++
		case p.Close <= 0:
			q.NonPositive++
		}
		if i == 0 {
			continue
		}
		switch prev := series[i-1].Date; {
		case p.Date.Equal(prev):
			q.Duplicates++
		case p.Date.Before(prev):
			q.OutOfOrder++
		}
	}

	q.Passed = q.Coverage >= g.config.MinCoverage && q.NonFinite == 0 &&
		q.NonPositive == 0 && q.Duplicates == 0 && q.OutOfOrder == 0
	return q
}
