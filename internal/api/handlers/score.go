package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/pipeline"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// FeatureScorer scores a feature vector
type FeatureScorer interface {
	Score(f contracts.FeatureVector) (*contracts.ScoreResult, error)
}

// MarketScorer scores a ticker
type MarketScorer interface {
	Score(ctx context.Context, req pipeline.MarketRequest) (*contracts.ScoreResult, error)
}

// ScoreHandler handles scoring API endpoints
// ⭐ SSOT: 스코어링 API 핸들러는 이 구조체에서만
type ScoreHandler struct {
	features FeatureScorer
	market   MarketScorer
	logger   *logger.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(features FeatureScorer, market MarketScorer, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		features: features,
		market:   market,
		logger:   log,
	}
}

// ScoreFeatures scores a manually entered feature vector
// POST /api/score/features
// Omitted fields keep the default vector's values.
func (h *ScoreHandler) ScoreFeatures(w http.ResponseWriter, r *http.Request) {
	f := contracts.DefaultFeatureVector()
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	res, err := h.features.Score(f)
	if err != nil {
		h.logFailure(err, map[string]interface{}{"pipeline": contracts.PipelineFeature})
		respondScoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    res,
	})
}

// ScoreTicker scores a ticker from its price history
// GET /api/score/ticker/{ticker}?scheme=growth-v2&series=true
func (h *ScoreHandler) ScoreTicker(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]
	q := r.URL.Query()

	includeSeries := false
	if s := q.Get("series"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "series must be a boolean")
			return
		}
		includeSeries = v
	}

	res, err := h.market.Score(r.Context(), pipeline.MarketRequest{
		Ticker:        ticker,
		Scheme:        q.Get("scheme"),
		IncludeSeries: includeSeries,
	})
	if err != nil {
		h.logFailure(err, map[string]interface{}{
			"pipeline": contracts.PipelineMarket,
			"ticker":   ticker,
			"scheme":   q.Get("scheme"),
		})
		respondScoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    res,
	})
}

func (h *ScoreHandler) logFailure(err error, fields map[string]interface{}) {
	fields["reason"] = pipeline.Reason(err)
	entry := h.logger.WithError(err).WithFields(fields)
	if fields["reason"] == pipeline.ReasonInternal || fields["reason"] == pipeline.ReasonConfiguration {
		entry.Error("Scoring failed")
		return
	}
	entry.Warn("Scoring rejected")
}
