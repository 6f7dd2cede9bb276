package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Jutsu catalog - named seal sequences with trigger metadata
		`CREATE TABLE IF NOT EXISTS jutsu (
			name TEXT PRIMARY KEY,
			display TEXT NOT NULL,
			element TEXT NOT NULL DEFAULT 'None',
			seals TEXT NOT NULL,
			effect_asset TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Recorded feature vectors for classifier training, one row per sample
		`CREATE TABLE IF NOT EXISTS seal_samples (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			features TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_seal_samples_label ON seal_samples(label)`,
		`CREATE INDEX IF NOT EXISTS idx_jutsu_position ON jutsu(position)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
