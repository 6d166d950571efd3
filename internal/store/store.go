// Package store caches forecast payloads and geocode lookups in SQLite so a
// failed fetch can fall back to the last good forecast.
package store

import (
	"database/sql"
	"time"
)

type Store struct {
	db  *sql.DB
	loc *time.Location
}

func New(db *sql.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{db: db, loc: loc}
}

// Ping checks the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}
