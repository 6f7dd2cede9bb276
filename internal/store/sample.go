package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Sample is one recorded feature vector with its seal label.
type Sample struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Features  []float64 `json:"features"`
	CreatedAt time.Time `json:"created_at"`
}

// SampleRepository provides access to recorded training samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create inserts a single sample. The caller supplies the id.
func (r *SampleRepository) Create(sample *Sample) error {
	if sample.Label == "" {
		return fmt.Errorf("sample has no label")
	}
	if len(sample.Features) == 0 {
		return fmt.Errorf("sample has no features")
	}

	features, err := json.Marshal(sample.Features)
	if err != nil {
		return err
	}

	sample.CreatedAt = time.Now()
	_, err = r.db.Exec(
		`INSERT INTO seal_samples (id, label, features, created_at) VALUES (?, ?, ?, ?)`,
		sample.ID, sample.Label, string(features), sample.CreatedAt,
	)
	return err
}

// CreateBatch inserts multiple feature vectors for one label in a single
// transaction. IDs are supplied by the caller, one per vector.
func (r *SampleRepository) CreateBatch(label string, ids []string, vectors [][]float64) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("got %d ids for %d vectors", len(ids), len(vectors))
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO seal_samples (id, label, features, created_at) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i, vec := range vectors {
		features, err := json.Marshal(vec)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(ids[i], label, string(features), now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByLabel retrieves all feature vectors recorded for a label.
func (r *SampleRepository) GetByLabel(label string) ([][]float64, error) {
	rows, err := r.db.Query(
		`SELECT features FROM seal_samples WHERE label = ? ORDER BY created_at`,
		label,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vectors [][]float64
	for rows.Next() {
		var features string
		if err := rows.Scan(&features); err != nil {
			return nil, err
		}

		var vec []float64
		if err := json.Unmarshal([]byte(features), &vec); err != nil {
			return nil, fmt.Errorf("sample for %q has malformed features: %w", label, err)
		}
		vectors = append(vectors, vec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// All retrieves every recorded sample grouped by label, ready for training.
func (r *SampleRepository) All() (map[string][][]float64, error) {
	rows, err := r.db.Query(`SELECT label, features FROM seal_samples ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make(map[string][][]float64)
	for rows.Next() {
		var label, features string
		if err := rows.Scan(&label, &features); err != nil {
			return nil, err
		}

		var vec []float64
		if err := json.Unmarshal([]byte(features), &vec); err != nil {
			return nil, fmt.Errorf("sample for %q has malformed features: %w", label, err)
		}
		grouped[label] = append(grouped[label], vec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return grouped, nil
}

// Counts returns the number of recorded samples per label.
func (r *SampleRepository) Counts() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT label, COUNT(*) FROM seal_samples GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// DeleteByLabel removes all samples recorded for a label.
func (r *SampleRepository) DeleteByLabel(label string) error {
	_, err := r.db.Exec(`DELETE FROM seal_samples WHERE label = ?`, label)
	return err
}
