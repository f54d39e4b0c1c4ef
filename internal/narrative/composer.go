package narrative

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/esgproxy/backend/internal/contracts"
)

// Band paragraphs shared by both pipelines
var bandParagraphs = map[contracts.Band]string{
	contracts.BandWeak: "The company faces significant sustainability challenges. " +
		"High emissions and governance risk may lead to investor withdrawal " +
		"and regulatory scrutiny. Immediate ESG reforms are recommended.",
	contracts.BandModerate: "The company demonstrates moderate ESG alignment. " +
		"With strategic improvements in emissions and governance, " +
		"long-term financial resilience can be enhanced.",
	contracts.BandStrong: "The company exhibits strong ESG leadership. " +
		"Sustainable operations enhance investor confidence " +
		"and reduce long-term financial risk.",
}

// Round2 renders v rounded half away from zero to 2 decimal places
// NaN and ±Inf render as "NaN", "+Inf" and "-Inf".
func Round2(v float64) string {
	if nonFinite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).Round(2).String()
}

// Percent renders a fraction as a rounded percentage
func Percent(fraction float64) string {
	if nonFinite(fraction) {
		return strconv.FormatFloat(fraction, 'f', -1, 64)
	}
	return decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).Round(2).String()
}

// decimal.NewFromFloat panics on these
func nonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Features composes the report for the feature-regression pipeline
// ⭐ SSOT: 고정 템플릿만 사용, 자유 생성 없음
func Features(score float64, f contracts.FeatureVector, c contracts.Classification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The company has an ESG performance score of %s.\n\n", Round2(score))
	fmt.Fprintf(&b, "Environmental analysis indicates carbon emission level at %s, with renewable adoption at %s%%.\n\n",
		Round2(f.Emission), Round2(f.Renewable))
	fmt.Fprintf(&b, "Governance strength is influenced by board diversity at %s%% and debt ratio of %s.\n\n",
		Round2(f.Diversity), Round2(f.DebtRatio))
	fmt.Fprintf(&b, "Social stability is reflected in employee turnover of %s%%.\n\n", Round2(f.Turnover))
	b.WriteString(bandParagraphs[c.Band])
	return b.String()
}

// MarketMeta names what was scored
type MarketMeta struct {
	Ticker string
	Scheme string
}

// Market composes the report for the market-proxy pipeline
func Market(meta MarketMeta, score float64, s *contracts.Statistics, c contracts.Classification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has an ESG proxy score of %s under the %s scheme.\n\n",
		meta.Ticker, Round2(score), meta.Scheme)
	fmt.Fprintf(&b, "Over %d trading observations the annualized volatility is %s%% and the annualized mean return is %s%% (Sharpe %s).\n\n",
		s.Observations, Percent(s.Volatility), Percent(s.MeanReturn), Round2(s.Sharpe))
	fmt.Fprintf(&b, "The price moved from %s to %s, a change of %s%%.\n\n",
		Round2(s.StartPrice), Round2(s.EndPrice), Percent(s.Growth))
	if s.HasFundamentals() {
		fmt.Fprintf(&b, "Fundamentals show a debt ratio of %s and a profit margin of %s%%.\n\n",
			Round2(*s.DebtRatio), Percent(*s.ProfitMargin))
	}
	fmt.Fprintf(&b, "Financial risk is %s, investor confidence is %s and regulatory exposure is %s; cost of capital impact: %s.\n\n",
		c.Risk, c.Confidence, c.RegulatoryPressure, c.CostOfCapital)
	b.WriteString(bandParagraphs[c.Band])
	return b.String()
}
