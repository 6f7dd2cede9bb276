package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/cvjutsu/internal/seal"
)

// JutsuRepository provides access to the persisted jutsu catalog.
type JutsuRepository struct {
	db *sql.DB
}

// Jutsu returns the jutsu repository for this store.
func (s *Store) Jutsu() *JutsuRepository {
	return &JutsuRepository{db: s.db}
}

// List retrieves all jutsu in catalog order.
func (r *JutsuRepository) List() ([]seal.Jutsu, error) {
	rows, err := r.db.Query(
		`SELECT name, display, element, seals, effect_asset FROM jutsu ORDER BY position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []seal.Jutsu
	for rows.Next() {
		var j seal.Jutsu
		var seals string

		if err := rows.Scan(&j.Name, &j.Display, &j.Element, &seals, &j.EffectAsset); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(seals), &j.Seals); err != nil {
			return nil, fmt.Errorf("jutsu %q has malformed seals: %w", j.Name, err)
		}

		list = append(list, j)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// GetByName retrieves a single jutsu by its name.
func (r *JutsuRepository) GetByName(name string) (seal.Jutsu, error) {
	var j seal.Jutsu
	var seals string

	err := r.db.QueryRow(
		`SELECT name, display, element, seals, effect_asset FROM jutsu WHERE name = ?`,
		name,
	).Scan(&j.Name, &j.Display, &j.Element, &seals, &j.EffectAsset)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return seal.Jutsu{}, ErrNotFound
		}
		return seal.Jutsu{}, err
	}

	if err := json.Unmarshal([]byte(seals), &j.Seals); err != nil {
		return seal.Jutsu{}, fmt.Errorf("jutsu %q has malformed seals: %w", j.Name, err)
	}

	return j, nil
}

// Create inserts a jutsu at the end of the catalog order.
func (r *JutsuRepository) Create(j seal.Jutsu) error {
	if j.Name == "" {
		return fmt.Errorf("jutsu has no name")
	}
	if len(j.Seals) == 0 {
		return fmt.Errorf("jutsu %q has an empty seal sequence", j.Name)
	}

	seals, err := json.Marshal(j.Seals)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO jutsu (name, display, element, seals, effect_asset, position)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM jutsu))`,
		j.Name, j.Display, j.Element, string(seals), j.EffectAsset,
	)
	return err
}

// Delete removes a jutsu from the catalog by its name.
func (r *JutsuRepository) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM jutsu WHERE name = ?`, name)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Seed stores the given catalog if the jutsu table is empty.
// Returns whether seeding took place.
func (r *JutsuRepository) Seed(catalog seal.Catalog) (bool, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM jutsu`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	for _, j := range catalog.All() {
		if err := r.Create(j); err != nil {
			return false, err
		}
	}

	return true, nil
}

// Catalog loads the persisted jutsu list as a validated catalog.
func (r *JutsuRepository) Catalog() (seal.Catalog, error) {
	list, err := r.List()
	if err != nil {
		return seal.Catalog{}, err
	}
	return seal.NewCatalog(list)
}
