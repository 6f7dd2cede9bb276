package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/cvjutsu/internal/store"
)

// SamplesHandler handles HTTP requests for seal training samples.
type SamplesHandler struct {
	store *store.Store
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
func NewSamplesHandler(s *store.Store) *SamplesHandler {
	return &SamplesHandler{store: s}
}

// ServeHTTP routes requests to the appropriate method.
// Expected paths: /api/samples or /api/samples/{label}
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/samples")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.counts(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	label := path
	switch r.Method {
	case http.MethodDelete:
		h.deleteByLabel(w, r, label)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createSamplesRequest struct {
	Label   string      `json:"label"`
	Vectors [][]float64 `json:"vectors"`
}

type createSamplesResponse struct {
	Label string   `json:"label"`
	IDs   []string `json:"ids"`
}

type countsResponse struct {
	Counts map[string]int `json:"counts"`
}

// counts handles GET /api/samples and returns per-label sample counts.
func (h *SamplesHandler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Samples().Counts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count samples")
		return
	}
	writeJSON(w, http.StatusOK, countsResponse{Counts: counts})
}

// create handles POST /api/samples and records feature vectors for a label.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "Label is required")
		return
	}
	if len(req.Vectors) == 0 {
		writeError(w, http.StatusBadRequest, "At least one vector is required")
		return
	}

	ids := make([]string, len(req.Vectors))
	for i := range ids {
		ids[i] = uuid.New().String()
	}

	if err := h.store.Samples().CreateBatch(req.Label, ids, req.Vectors); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store samples")
		return
	}

	writeJSON(w, http.StatusCreated, createSamplesResponse{Label: req.Label, IDs: ids})
}

// deleteByLabel handles DELETE /api/samples/{label}.
func (h *SamplesHandler) deleteByLabel(w http.ResponseWriter, r *http.Request, label string) {
	if err := h.store.Samples().DeleteByLabel(label); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
