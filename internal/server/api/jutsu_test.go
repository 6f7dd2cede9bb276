package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/cvjutsu/internal/seal"
	"github.com/ayusman/cvjutsu/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "cvjutsu-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestJutsuHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewJutsuHandler(s, nil)

	if _, err := s.Jutsu().Seed(seal.DefaultCatalog()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jutsu", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listJutsuResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Jutsu) != seal.DefaultCatalog().Len() {
		t.Errorf("got %d jutsu, want %d", len(response.Jutsu), seal.DefaultCatalog().Len())
	}
}

func TestJutsuHandler_List_Empty(t *testing.T) {
	s := newTestStore(t)
	handler := NewJutsuHandler(s, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/jutsu", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listJutsuResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Jutsu == nil {
		t.Error("empty catalog should encode as [], not null")
	}
}

func TestJutsuHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewJutsuHandler(s, nil)

	if _, err := s.Jutsu().Seed(seal.DefaultCatalog()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jutsu/chidori", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var jutsu seal.Jutsu
	if err := json.NewDecoder(rec.Body).Decode(&jutsu); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if jutsu.Name != "chidori" {
		t.Errorf("Name = %q, want chidori", jutsu.Name)
	}
}

func TestJutsuHandler_Get_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewJutsuHandler(s, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/jutsu/missing", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestJutsuHandler_Create(t *testing.T) {
	s := newTestStore(t)

	reloaded := false
	handler := NewJutsuHandler(s, func() error {
		reloaded = true
		return nil
	})

	body, _ := json.Marshal(createJutsuRequest{
		Name:    "rasengan",
		Display: "Rasengan",
		Seals:   []string{seal.SealUshi, seal.SealMi},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/jutsu", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if !reloaded {
		t.Error("catalog change callback should run after create")
	}

	stored, err := s.Jutsu().GetByName("rasengan")
	if err != nil {
		t.Fatalf("created jutsu should be in the store: %v", err)
	}
	if len(stored.Seals) != 2 {
		t.Errorf("got %d seals, want 2", len(stored.Seals))
	}
}

func TestJutsuHandler_Create_Invalid(t *testing.T) {
	s := newTestStore(t)
	handler := NewJutsuHandler(s, nil)

	tests := []struct {
		name string
		body createJutsuRequest
	}{
		{"missing name", createJutsuRequest{Seals: []string{seal.SealTora}}},
		{"missing seals", createJutsuRequest{Name: "empty"}},
		{"unknown seal", createJutsuRequest{Name: "bad", Seals: []string{"dragon"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/api/jutsu", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestJutsuHandler_Delete(t *testing.T) {
	s := newTestStore(t)

	reloaded := false
	handler := NewJutsuHandler(s, func() error {
		reloaded = true
		return nil
	})

	if _, err := s.Jutsu().Seed(seal.DefaultCatalog()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/jutsu/chidori", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if !reloaded {
		t.Error("catalog change callback should run after delete")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/jutsu/chidori", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
