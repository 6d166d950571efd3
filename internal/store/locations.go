package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lox/forecastview/internal/models"
)

// LocationQuery normalises a city/state/country triple into a cache key.
func LocationQuery(city, state, country string) string {
	parts := []string{city, state, country}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, ",")
}

func (s *Store) SaveLocation(query string, loc models.Location) error {
	_, err := s.db.Exec(`
		INSERT INTO locations (query, name, state, country, latitude, longitude, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			country = excluded.country,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			resolved_at = excluded.resolved_at
	`, query, loc.Name, loc.State, loc.Country, loc.Latitude, loc.Longitude, time.Now().UTC())
	return err
}

// GetLocation returns the cached geocode result for query, or nil.
func (s *Store) GetLocation(query string) (*models.Location, error) {
	row := s.db.QueryRow(`SELECT name, state, country, latitude, longitude FROM locations WHERE query = ?`, query)

	var loc models.Location
	var state, country sql.NullString
	err := row.Scan(&loc.Name, &state, &country, &loc.Latitude, &loc.Longitude)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	loc.State = state.String
	loc.Country = country.String
	return &loc, nil
}
