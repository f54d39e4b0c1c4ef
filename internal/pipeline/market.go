package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/esgproxy/backend/internal/classify"
	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/marketdata"
	"github.com/wonny/esgproxy/backend/internal/marketstats"
	"github.com/wonny/esgproxy/backend/internal/metrics"
	"github.com/wonny/esgproxy/backend/internal/narrative"
	"github.com/wonny/esgproxy/backend/internal/scoring"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// DefaultLookbackDays is one calendar year of history
const DefaultLookbackDays = 365

// MarketRequest selects what to score
type MarketRequest struct {
	Ticker        string
	Scheme        string // empty: pipeline default
	IncludeSeries bool   // attach rolling volatility and moving average
}

// MarketPipeline scores a ticker from its price history under a named scheme
// One pipeline serves every scheme; the weighting is data, not code.
// ⭐ SSOT: 시세 기반 스코어링 흐름은 여기서만
type MarketPipeline struct {
	schemes       *scoring.Registry
	provider      contracts.PriceProvider
	classifier    *classify.Classifier
	quality       *marketdata.QualityGate
	metrics       *metrics.Recorder
	logger        *logger.Logger
	defaultScheme string
	lookbackDays  int
	now           func() time.Time
}

// MarketConfig holds pipeline settings
type MarketConfig struct {
	DefaultScheme string
	LookbackDays  int
}

// NewMarketPipeline creates the market pipeline; m may be nil
func NewMarketPipeline(
	schemes *scoring.Registry,
	provider contracts.PriceProvider,
	cfg MarketConfig,
	m *metrics.Recorder,
	log *logger.Logger,
) *MarketPipeline {
	if cfg.DefaultScheme == "" {
		cfg.DefaultScheme = scoring.SchemeTechnical
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	return &MarketPipeline{
		schemes:       schemes,
		provider:      provider,
		classifier:    classify.ForPipeline(contracts.PipelineMarket),
		quality:       marketdata.NewQualityGate(marketdata.DefaultQualityConfig()),
		metrics:       m,
		logger:        log.WithComponent("market_pipeline"),
		defaultScheme: cfg.DefaultScheme,
		lookbackDays:  cfg.LookbackDays,
		now:           time.Now,
	}
}

// WithClock replaces the clock that anchors the lookback window
func (p *MarketPipeline) WithClock(now func() time.Time) *MarketPipeline {
	p.now = now
	return p
}

// DefaultScheme returns the scheme used when a request names none
func (p *MarketPipeline) DefaultScheme() string {
	return p.defaultScheme
}

// Score fetches, extracts, normalizes, combines, classifies and narrates
// Provider failures surface as *contracts.ProviderError; nothing is retried here.
func (p *MarketPipeline) Score(ctx context.Context, req MarketRequest) (*contracts.ScoreResult, error) {
	res, err := p.score(ctx, req)
	if err != nil {
		p.metrics.ObserveFailure(contracts.PipelineMarket, Reason(err))
		return nil, err
	}
	p.metrics.ObserveScore(res)
	return res, nil
}

func (p *MarketPipeline) score(ctx context.Context, req MarketRequest) (*contracts.ScoreResult, error) {
	ticker := strings.TrimSpace(req.Ticker)
	if ticker == "" {
		return nil, contracts.ValidationError{Field: "ticker", Message: "required"}
	}

	name := req.Scheme
	if name == "" {
		name = p.defaultScheme
	}
	scheme, hash, err := p.schemes.Get(name)
	if err != nil {
		return nil, err
	}

	now := p.now()
	from := now.AddDate(0, 0, -p.lookbackDays)
	providerName := p.provider.Name()

	// 1. Fetch
	series, err := p.provider.FetchPrices(ctx, ticker, from, now)
	if err != nil {
		return nil, contracts.NewProviderError(providerName, ticker, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("ticker %s: no price data: %w", ticker, contracts.ErrInsufficientData)
	}

	quality := p.quality.Check(series, from, now)
	if !quality.Passed {
		p.logger.WithFields(map[string]interface{}{
			"ticker":       ticker,
			"provider":     providerName,
			"coverage":     quality.Coverage,
			"non_finite":   quality.NonFinite,
			"non_positive": quality.NonPositive,
			"duplicates":   quality.Duplicates,
			"out_of_order": quality.OutOfOrder,
		}).Warn("Price series below quality threshold")
	}

	// NaN/Inf 종가는 제외, 남은 종가가 2개 미만이면 Extract가 InsufficientData 반환
	if quality.NonFinite > 0 {
		series = series.Finite()
	}

	var fundamentals *contracts.Fundamentals
	if scheme.RequiresFundamentals() {
		fundamentals, err = p.fetchFundamentals(ctx, ticker)
		if err != nil {
			return nil, contracts.NewProviderError(providerName, ticker, err)
		}
	}

	// 2. Extract
	stats, err := marketstats.Extract(series, fundamentals)
	if err != nil {
		return nil, fmt.Errorf("ticker %s: %w", ticker, err)
	}

	// 3. Normalize + combine
	composite, err := scoring.Evaluate(scheme, stats)
	if err != nil {
		return nil, contracts.NewProviderError(providerName, ticker, err)
	}

	// 4. Classify + narrate
	class := p.classifier.Classify(composite.Score)
	text := narrative.Market(narrative.MarketMeta{Ticker: ticker, Scheme: scheme.Name}, composite.Score, stats, class)

	if p.logger.DebugEnabled() {
		p.logger.WithFields(map[string]interface{}{
			"ticker":     ticker,
			"scheme":     scheme.Name,
			"provider":   providerName,
			"sub_scores": composite.SubScores,
			"raw":        composite.Raw,
			"score":      composite.Score,
		}).Debug("Ticker scored")
	}

	res := &contracts.ScoreResult{
		ID:             uuid.NewString(),
		Pipeline:       contracts.PipelineMarket,
		Scheme:         scheme.Name,
		SchemeHash:     hash,
		Ticker:         ticker,
		Provider:       providerName,
		RawScore:       composite.Raw,
		Score:          composite.Score,
		SubScores:      composite.SubScores,
		Statistics:     stats,
		Classification: class,
		Narrative:      text,
		Quality:        quality,
		ComputedAt:     now.UTC(),
	}
	if req.IncludeSeries {
		res.Series = marketstats.Display(series)
	}
	return res, nil
}

func (p *MarketPipeline) fetchFundamentals(ctx context.Context, ticker string) (*contracts.Fundamentals, error) {
	fp, ok := p.provider.(contracts.FundamentalsProvider)
	if !ok {
		return nil, contracts.ErrFundamentalsUnavailable
	}
	f, err := fp.FetchFundamentals(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, contracts.ErrFundamentalsUnavailable
	}
	if !f.Finite() {
		return nil, fmt.Errorf("%w: non-finite figures", contracts.ErrFundamentalsUnavailable)
	}
	return f, nil
}
