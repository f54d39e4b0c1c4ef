package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/wonny/esgproxy/backend/internal/classify"
	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/metrics"
	"github.com/wonny/esgproxy/backend/internal/narrative"
	"github.com/wonny/esgproxy/backend/internal/regression"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// FeaturePipeline scores a manually entered feature vector with the regression model
type FeaturePipeline struct {
	models     *regression.Cache
	classifier *classify.Classifier
	metrics    *metrics.Recorder
	logger     *logger.Logger
	now        func() time.Time
}

// NewFeaturePipeline creates the feature pipeline; m may be nil
func NewFeaturePipeline(models *regression.Cache, m *metrics.Recorder, log *logger.Logger) *FeaturePipeline {
	return &FeaturePipeline{
		models:     models,
		classifier: classify.ForPipeline(contracts.PipelineFeature),
		metrics:    m,
		logger:     log.WithComponent("feature_pipeline"),
		now:        time.Now,
	}
}

// WithClock replaces the clock used for ComputedAt
func (p *FeaturePipeline) WithClock(now func() time.Time) *FeaturePipeline {
	p.now = now
	return p
}

// Score validates f, predicts, clips and classifies
// validate → standardize → predict → clip → classify → narrative
func (p *FeaturePipeline) Score(f contracts.FeatureVector) (*contracts.ScoreResult, error) {
	res, err := p.score(f)
	if err != nil {
		p.metrics.ObserveFailure(contracts.PipelineFeature, Reason(err))
		return nil, err
	}
	p.metrics.ObserveScore(res)
	return res, nil
}

func (p *FeaturePipeline) score(f contracts.FeatureVector) (*contracts.ScoreResult, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	model, err := p.models.Get()
	if err != nil {
		return nil, err
	}
	raw, score, err := model.Score(f)
	if err != nil {
		return nil, err
	}

	class := p.classifier.Classify(score)
	features := f

	if p.logger.DebugEnabled() {
		p.logger.WithFields(map[string]interface{}{
			"raw":   raw,
			"score": score,
			"band":  class.Band,
		}).Debug("Feature vector scored")
	}

	return &contracts.ScoreResult{
		ID:             uuid.NewString(),
		Pipeline:       contracts.PipelineFeature,
		Features:       &features,
		RawScore:       raw,
		Score:          score,
		Classification: class,
		Narrative:      narrative.Features(score, f, class),
		ComputedAt:     p.now().UTC(),
	}, nil
}
