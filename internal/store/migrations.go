package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - configuration overrides as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,

		// Generated content - every quiz and maze that came back from the model
		`CREATE TABLE IF NOT EXISTS generated_content (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('quiz', 'maze')),
			prompt_hash TEXT NOT NULL,
			model TEXT NOT NULL,
			data BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_generated_content_kind ON generated_content(kind, created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
