package api

import "net/http"

// TrainHandler triggers classifier retraining from stored samples.
type TrainHandler struct {
	train func() ([]string, error)
}

// NewTrainHandler creates a TrainHandler around the given training function.
func NewTrainHandler(train func() ([]string, error)) *TrainHandler {
	return &TrainHandler{train: train}
}

type trainResponse struct {
	Labels []string `json:"labels"`
}

// ServeHTTP handles POST /api/train.
func (h *TrainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	labels, err := h.train()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, trainResponse{Labels: labels})
}
