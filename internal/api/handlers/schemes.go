package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/esgproxy/backend/internal/scoring"
)

// SchemeHandler lists weighting schemes
type SchemeHandler struct {
	registry *scoring.Registry
}

// NewSchemeHandler creates a new scheme handler
func NewSchemeHandler(registry *scoring.Registry) *SchemeHandler {
	return &SchemeHandler{registry: registry}
}

// List returns every registered scheme with its hash
// GET /api/schemes
func (h *SchemeHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    h.registry.List(),
	})
}

// Get returns one scheme
// GET /api/schemes/{name}
func (h *SchemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s, hash, err := h.registry.Get(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    scoring.SchemeInfo{Scheme: s, Hash: hash},
	})
}
