package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Forecast payload cache",
		SQL: `
CREATE TABLE IF NOT EXISTS forecast_payloads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    location_key TEXT NOT NULL,
    fetched_at DATETIME NOT NULL,
    units TEXT NOT NULL,
    payload_compressed BLOB NOT NULL,
    payload_hash TEXT NOT NULL UNIQUE
);

CREATE INDEX IF NOT EXISTS idx_forecast_payloads_location ON forecast_payloads(location_key, fetched_at);
`,
	},
	{
		Version:     2,
		Description: "Geocode cache",
		SQL: `
CREATE TABLE IF NOT EXISTS locations (
    query TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    state TEXT,
    country TEXT,
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
    resolved_at DATETIME NOT NULL
);
`,
	},
}

// Migrate applies pending schema migrations in version order, each in its own
// transaction.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT,
		applied_at DATETIME
	)`); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	current, err := s.MigrationVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	pending := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(m); err != nil {
			return err
		}
		pending++
	}
	if pending > 0 {
		log.Printf("migrations: completed %d, schema at version %d", pending, migrations[len(migrations)-1].Version)
	}
	return nil
}

func (s *Store) apply(m migration) error {
	log.Printf("migrations: applying %d - %s", m.Version, m.Description)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Description, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("migration %d: record: %w", m.Version, err)
	}
	return tx.Commit()
}

func (s *Store) MigrationVersion() (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
