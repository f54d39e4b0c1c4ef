package regression

import (
	"fmt"
	"math"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// Standardizer holds per-feature (mean, std) learned once from the reference dataset
// ⭐ SSOT: 예측 시에도 학습 시점의 평균/표준편차를 그대로 사용
type Standardizer struct {
	mean   [contracts.FeatureCount]float64
	std    [contracts.FeatureCount]float64
	fitted bool
}

// FitStandardizer computes population mean and std of each column
func FitStandardizer(rows [][contracts.FeatureCount]float64) (*Standardizer, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows to fit standardizer", contracts.ErrInsufficientData)
	}

	s := &Standardizer{}
	n := float64(len(rows))
	for _, row := range rows {
		for j, v := range row {
			s.mean[j] += v
		}
	}
	for j := range s.mean {
		s.mean[j] /= n
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - s.mean[j]
			s.std[j] += d * d
		}
	}
	for j := range s.std {
		s.std[j] = math.Sqrt(s.std[j] / n)
	}

	s.fitted = true
	return s, nil
}

// Mean returns the fitted column means
func (s *Standardizer) Mean() [contracts.FeatureCount]float64 {
	return s.mean
}

// Std returns the fitted column standard deviations
func (s *Standardizer) Std() [contracts.FeatureCount]float64 {
	return s.std
}

// Transform standardizes x with the fitted parameters
// A zero-variance column maps to 0.
func (s *Standardizer) Transform(x [contracts.FeatureCount]float64) ([contracts.FeatureCount]float64, error) {
	var out [contracts.FeatureCount]float64
	if s == nil || !s.fitted {
		return out, fmt.Errorf("%w: standardizer used before fit", contracts.ErrNotConfigured)
	}

	for j, v := range x {
		if s.std[j] == 0 {
			continue
		}
		out[j] = (v - s.mean[j]) / s.std[j]
	}
	return out, nil
}
