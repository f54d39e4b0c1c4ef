package narrative

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/esgproxy/backend/internal/classify"
	"github.com/wonny/esgproxy/backend/internal/contracts"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{67.5, "67.5"},
		{79.456, "79.46"},
		{0.125, "0.13"},
		{-0.125, "-0.13"},
		{50, "50"},
		{0, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
	assert.Equal(t, "12.35", Percent(0.12345))
}

func TestRound2_NonFinite(t *testing.T) {
	assert.Equal(t, "NaN", Round2(math.NaN()))
	assert.Equal(t, "+Inf", Round2(math.Inf(1)))
	assert.Equal(t, "-Inf", Percent(math.Inf(-1)))
}

func TestFeatures(t *testing.T) {
	c := classify.ForPipeline(contracts.PipelineFeature)
	f := contracts.DefaultFeatureVector()

	text := Features(79.456, f, c.Classify(79.456))
	assert.Contains(t, text, "ESG performance score of 79.46.")
	assert.Contains(t, text, "carbon emission level at 50, with renewable adoption at 30%")
	assert.Contains(t, text, "board diversity at 25% and debt ratio of 0.5.")
	assert.Contains(t, text, "employee turnover of 15%")
	assert.True(t, strings.HasSuffix(text, bandParagraphs[contracts.BandModerate]))
}

func TestFeatures_Bands(t *testing.T) {
	c := classify.ForPipeline(contracts.PipelineFeature)
	f := contracts.DefaultFeatureVector()

	assert.Contains(t, Features(85, f, c.Classify(85)), "strong ESG leadership")
	assert.Contains(t, Features(20, f, c.Classify(20)), "significant sustainability challenges")
}

func TestMarket(t *testing.T) {
	c := classify.ForPipeline(contracts.PipelineMarket)
	debt, margin, size := 0.25, 0.1, 20.0
	s := &contracts.Statistics{
		Observations: 252,
		Volatility:   0.3,
		MeanReturn:   0.12,
		Sharpe:       0.4,
		Growth:       0.15,
		StartPrice:   100,
		EndPrice:     115,
	}

	text := Market(MarketMeta{Ticker: "AAPL.US", Scheme: "technical-v1"}, 62.345, s, c.Classify(62.345))
	assert.Contains(t, text, "AAPL.US has an ESG proxy score of 62.35 under the technical-v1 scheme.")
	assert.Contains(t, text, "annualized volatility is 30%")
	assert.Contains(t, text, "from 100 to 115, a change of 15%")
	assert.Contains(t, text, "cost of capital impact: Neutral impact")
	assert.NotContains(t, text, "Fundamentals show")

	s.DebtRatio, s.ProfitMargin, s.LogMarketCap = &debt, &margin, &size
	text = Market(MarketMeta{Ticker: "AAPL.US", Scheme: "fundamentals-v3"}, 100, s, c.Classify(100))
	assert.Contains(t, text, "debt ratio of 0.25 and a profit margin of 10%")
	assert.True(t, strings.HasSuffix(text, bandParagraphs[contracts.BandStrong]))
}
