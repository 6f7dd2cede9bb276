package store

import (
	"reflect"
	"testing"
)

func TestSampleRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Samples()

	sample := &Sample{
		ID:       "sample-1",
		Label:    "tora",
		Features: []float64{0.1, 0.2, 0.3},
	}

	if err := repo.Create(sample); err != nil {
		t.Fatalf("failed to create sample: %v", err)
	}
	if sample.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	vectors, err := repo.GetByLabel("tora")
	if err != nil {
		t.Fatalf("failed to get samples by label: %v", err)
	}
	if len(vectors) != 1 {
		t.Fatalf("got %d vectors, want 1", len(vectors))
	}
	if !reflect.DeepEqual(vectors[0], sample.Features) {
		t.Errorf("features = %v, want %v", vectors[0], sample.Features)
	}
}

func TestSampleRepository_Create_Invalid(t *testing.T) {
	s := newTestStore(t)
	repo := s.Samples()

	if err := repo.Create(&Sample{ID: "s1", Features: []float64{1}}); err == nil {
		t.Error("creating a sample without a label should fail")
	}
	if err := repo.Create(&Sample{ID: "s2", Label: "tora"}); err == nil {
		t.Error("creating a sample without features should fail")
	}
}

func TestSampleRepository_CreateBatch(t *testing.T) {
	s := newTestStore(t)
	repo := s.Samples()

	ids := []string{"b1", "b2", "b3"}
	vectors := [][]float64{
		{0.1, 0.2},
		{0.3, 0.4},
		{0.5, 0.6},
	}

	if err := repo.CreateBatch("mi", ids, vectors); err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}

	got, err := repo.GetByLabel("mi")
	if err != nil {
		t.Fatalf("failed to get samples by label: %v", err)
	}
	if !reflect.DeepEqual(got, vectors) {
		t.Errorf("vectors = %v, want %v", got, vectors)
	}
}

func TestSampleRepository_CreateBatch_IDMismatch(t *testing.T) {
	s := newTestStore(t)
	repo := s.Samples()

	err := repo.CreateBatch("mi", []string{"only-one"}, [][]float64{{1}, {2}})
	if err == nil {
		t.Error("batch with mismatched ids and vectors should fail")
	}
}

func TestSampleRepository_All(t *testing.T) {
	s := newTestStore(t)
	repo := s.Samples()

	if err := repo.CreateBatch("tora", []string{"t1", "t2"}, [][]float64{{1}, {2}}); err != nil {
		t.Fatalf("failed to create tora samples: %v", err)
	}
	if err := repo.CreateBatch("mi", []string{"m1"}, [][]float64{{3}}); err != nil {
		t.Fatalf("failed to create mi samples: %v", err)
	}

	all, err := repo.All()
	if err != nil {
		t.Fatalf("failed to get all samples: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d labels, want 2", len(all))
	}
	if len(all["tora"]) != 2 {
		t.Errorf("got %d tora vectors, want 2", len(all["tora"]))
	}
	if len(all["mi"]) != 1 {
		t.Errorf("got %d mi vectors, want 1", len(all["mi"]))
	}
}

func TestSampleRepository_Counts(t *testing.T) {
	s := newTestStore(t)
	repo := s.Samples()

	if err := repo.CreateBatch("tora", []string{"t1", "t2", "t3"}, [][]float64{{1}, {2}, {3}}); err != nil {
		t.Fatalf("failed to create samples: %v", err)
	}

	counts, err := repo.Counts()
	if err != nil {
		t.Fatalf("failed to get counts: %v", err)
	}
	want := map[string]int{"tora": 3}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
}

func TestSampleRepository_DeleteByLabel(t *testing.T) {
	s := newTestStore(t)
	repo := s.Samples()

	if err := repo.CreateBatch("tora", []string{"t1", "t2"}, [][]float64{{1}, {2}}); err != nil {
		t.Fatalf("failed to create tora samples: %v", err)
	}
	if err := repo.CreateBatch("mi", []string{"m1"}, [][]float64{{3}}); err != nil {
		t.Fatalf("failed to create mi samples: %v", err)
	}

	if err := repo.DeleteByLabel("tora"); err != nil {
		t.Fatalf("failed to delete samples: %v", err)
	}

	counts, err := repo.Counts()
	if err != nil {
		t.Fatalf("failed to get counts: %v", err)
	}
	if _, ok := counts["tora"]; ok {
		t.Error("tora samples should be gone after delete")
	}
	if counts["mi"] != 1 {
		t.Errorf("mi count = %d, want 1", counts["mi"])
	}
}
