// Package api provides HTTP API handlers for the CVJutsu seal recognition system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/cvjutsu/internal/seal"
	"github.com/ayusman/cvjutsu/internal/store"
)

// JutsuHandler handles HTTP requests for jutsu catalog resources.
type JutsuHandler struct {
	store    *store.Store
	onChange func() error
}

// NewJutsuHandler creates a new JutsuHandler. onChange is called after
// the catalog is modified and may be nil.
func NewJutsuHandler(s *store.Store, onChange func() error) *JutsuHandler {
	return &JutsuHandler{store: s, onChange: onChange}
}

// ServeHTTP routes requests to the appropriate method.
// Expected paths: /api/jutsu or /api/jutsu/{name}
func (h *JutsuHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/jutsu")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	name := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodDelete:
		h.delete(w, r, name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createJutsuRequest struct {
	Name        string   `json:"name"`
	Display     string   `json:"display"`
	Element     string   `json:"element"`
	Seals       []string `json:"seals"`
	EffectAsset string   `json:"effect_asset"`
}

type listJutsuResponse struct {
	Jutsu []seal.Jutsu `json:"jutsu"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/jutsu and returns the catalog in order.
func (h *JutsuHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.Jutsu().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list jutsu")
		return
	}
	if list == nil {
		list = []seal.Jutsu{}
	}
	writeJSON(w, http.StatusOK, listJutsuResponse{Jutsu: list})
}

// get handles GET /api/jutsu/{name}.
func (h *JutsuHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	jutsu, err := h.store.Jutsu().GetByName(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Jutsu not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get jutsu")
		return
	}
	writeJSON(w, http.StatusOK, jutsu)
}

// create handles POST /api/jutsu.
func (h *JutsuHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createJutsuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if len(req.Seals) == 0 {
		writeError(w, http.StatusBadRequest, "At least one seal is required")
		return
	}
	for _, s := range req.Seals {
		if _, ok := seal.SealDisplay[s]; !ok {
			writeError(w, http.StatusBadRequest, "Unknown seal: "+s)
			return
		}
	}

	jutsu := seal.Jutsu{
		Name:        req.Name,
		Display:     req.Display,
		Element:     req.Element,
		Seals:       req.Seals,
		EffectAsset: req.EffectAsset,
	}
	if jutsu.Display == "" {
		jutsu.Display = jutsu.Name
	}

	if err := h.store.Jutsu().Create(jutsu); err != nil {
		writeError(w, http.StatusConflict, "Failed to create jutsu")
		return
	}

	if h.onChange != nil {
		if err := h.onChange(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reload catalog")
			return
		}
	}

	writeJSON(w, http.StatusCreated, jutsu)
}

// delete handles DELETE /api/jutsu/{name}.
func (h *JutsuHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	if err := h.store.Jutsu().Delete(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Jutsu not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete jutsu")
		return
	}

	if h.onChange != nil {
		if err := h.onChange(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reload catalog")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
