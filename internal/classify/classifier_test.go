package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		name     string
		pipeline contracts.Pipeline
		score    float64
		want     contracts.Band
	}{
		{"market upper bound is closed", contracts.PipelineMarket, 75.0, contracts.BandStrong},
		{"market just below upper", contracts.PipelineMarket, 74.999, contracts.BandModerate},
		{"market lower bound is closed", contracts.PipelineMarket, 50.0, contracts.BandModerate},
		{"market below lower", contracts.PipelineMarket, 49.99, contracts.BandWeak},
		{"feature 75 is moderate", contracts.PipelineFeature, 75.0, contracts.BandModerate},
		{"feature upper bound is closed", contracts.PipelineFeature, 80.0, contracts.BandStrong},
		{"feature zero", contracts.PipelineFeature, 0, contracts.BandWeak},
		{"feature max", contracts.PipelineFeature, 100, contracts.BandStrong},
		{"NaN is weak", contracts.PipelineMarket, math.NaN(), contracts.BandWeak},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForPipeline(tt.pipeline).Band(tt.score))
		})
	}
}

func TestClassify_Labels(t *testing.T) {
	c := ForPipeline(contracts.PipelineMarket)

	strong := c.Classify(90)
	assert.Equal(t, contracts.RiskLow, strong.Risk)
	assert.Equal(t, contracts.ConfidenceHigh, strong.Confidence)
	assert.Equal(t, contracts.PressureLow, strong.RegulatoryPressure)
	assert.Equal(t, CostOfCapitalStrong, strong.CostOfCapital)

	moderate := c.Classify(67.5)
	assert.Equal(t, contracts.RiskModerate, moderate.Risk)
	assert.Equal(t, contracts.ConfidenceStable, moderate.Confidence)
	assert.Equal(t, contracts.PressureMedium, moderate.RegulatoryPressure)
	assert.Equal(t, CostOfCapitalModerate, moderate.CostOfCapital)

	weak := c.Classify(10)
	assert.Equal(t, contracts.RiskHigh, weak.Risk)
	assert.Equal(t, contracts.ConfidenceLow, weak.Confidence)
	assert.Equal(t, contracts.PressureHigh, weak.RegulatoryPressure)
	assert.Equal(t, CostOfCapitalWeak, weak.CostOfCapital)
}

func TestClassify_Pure(t *testing.T) {
	c := ForPipeline(contracts.PipelineFeature)
	for _, s := range []float64{0, 49.9, 50, 79.9, 80, 100} {
		assert.Equal(t, c.Classify(s), c.Classify(s))
	}
}

func TestNew(t *testing.T) {
	c, err := New(70, 40)
	require.NoError(t, err)
	assert.Equal(t, contracts.BandStrong, c.Band(70))

	_, err = New(50, 50)
	assert.Error(t, err)
}
