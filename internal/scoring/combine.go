package scoring

import (
	"math"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// Score bounds
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Composite is the weighted combination of sub-scores
type Composite struct {
	Raw       float64             // before clipping
	Score     float64             // clipped to [0,100]
	SubScores contracts.SubScores // active factors only
}

// Evaluate computes the scheme's sub-scores from stats and combines them
// ⭐ SSOT: 가중 합산 + clip은 여기서만
func Evaluate(s Scheme, stats *contracts.Statistics) (*Composite, error) {
	subs := make(contracts.SubScores, len(s.Weights))
	for _, w := range s.Weights {
		v, err := SubScore(w.Factor, stats)
		if err != nil {
			return nil, err
		}
		subs[w.Factor] = v
	}

	raw := Combine(s, subs)
	return &Composite{
		Raw:       raw,
		Score:     ClipScore(raw),
		SubScores: subs,
	}, nil
}

// Combine returns Σ weight·subscore × rescale over the scheme's factors, unclipped
// Missing sub-scores count as 0.
func Combine(s Scheme, subs contracts.SubScores) float64 {
	var total float64
	for _, w := range s.Weights {
		total += w.Weight * subs[w.Factor]
	}
	return total * s.Multiplier()
}

// ClipScore bounds a composite to [0,100]; NaN becomes 0
func ClipScore(raw float64) float64 {
	if math.IsNaN(raw) {
		return MinScore
	}
	return Clip(raw, MinScore, MaxScore)
}
