package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSamplesHandler_CreateAndCounts(t *testing.T) {
	s := newTestStore(t)
	handler := NewSamplesHandler(s)

	body, _ := json.Marshal(createSamplesRequest{
		Label:   "tora",
		Vectors: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/samples", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var created createSamplesResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(created.IDs) != 2 {
		t.Errorf("got %d ids, want 2", len(created.IDs))
	}
	if created.IDs[0] == created.IDs[1] {
		t.Error("sample ids should be unique")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/samples", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var counts countsResponse
	if err := json.NewDecoder(rec.Body).Decode(&counts); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if counts.Counts["tora"] != 2 {
		t.Errorf("tora count = %d, want 2", counts.Counts["tora"])
	}
}

func TestSamplesHandler_Create_Invalid(t *testing.T) {
	s := newTestStore(t)
	handler := NewSamplesHandler(s)

	tests := []struct {
		name string
		body createSamplesRequest
	}{
		{"missing label", createSamplesRequest{Vectors: [][]float64{{1}}}},
		{"missing vectors", createSamplesRequest{Label: "tora"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/samples", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestSamplesHandler_DeleteByLabel(t *testing.T) {
	s := newTestStore(t)
	handler := NewSamplesHandler(s)

	if err := s.Samples().CreateBatch("mi", []string{"m1"}, [][]float64{{1}}); err != nil {
		t.Fatalf("failed to create samples: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/samples/mi", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	counts, err := s.Samples().Counts()
	if err != nil {
		t.Fatalf("failed to count samples: %v", err)
	}
	if _, ok := counts["mi"]; ok {
		t.Error("mi samples should be gone after delete")
	}
}

func TestTrainHandler(t *testing.T) {
	t.Run("returns trained labels", func(t *testing.T) {
		handler := NewTrainHandler(func() ([]string, error) {
			return []string{"mi", "tora"}, nil
		})

		req := httptest.NewRequest(http.MethodPost, "/api/train", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response trainResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Labels) != 2 {
			t.Errorf("got %d labels, want 2", len(response.Labels))
		}
	})

	t.Run("propagates training errors", func(t *testing.T) {
		handler := NewTrainHandler(func() ([]string, error) {
			return nil, errors.New("no samples recorded")
		})

		req := httptest.NewRequest(http.MethodPost, "/api/train", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		handler := NewTrainHandler(func() ([]string, error) { return nil, nil })

		req := httptest.NewRequest(http.MethodGet, "/api/train", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}
