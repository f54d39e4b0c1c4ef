package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/esgproxy/backend/internal/contracts"
	"github.com/wonny/esgproxy/backend/internal/pipeline"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondScoreError maps a scoring failure to a status and a safe message
// ⭐ SSOT: 에러 → HTTP 상태 매핑은 여기서만
func respondScoreError(w http.ResponseWriter, err error) {
	switch pipeline.Reason(err) {
	case pipeline.ReasonValidation:
		respondError(w, http.StatusBadRequest, err.Error())
	case pipeline.ReasonUnknownScheme:
		respondError(w, http.StatusNotFound, err.Error())
	case pipeline.ReasonInsufficient:
		respondError(w, http.StatusUnprocessableEntity, "Not enough price history to score this ticker.")
	case pipeline.ReasonProvider:
		var pe *contracts.ProviderError
		errors.As(err, &pe)
		respondError(w, http.StatusBadGateway, pe.UserMessage())
	case pipeline.ReasonConfiguration:
		respondError(w, http.StatusInternalServerError, "Scoring model is not configured")
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
