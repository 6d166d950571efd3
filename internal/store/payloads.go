package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// ForecastPayload is a stored forecast API response.
type ForecastPayload struct {
	ID          int64
	LocationKey string
	FetchedAt   time.Time
	Units       string
	Payload     []byte
	PayloadHash string
}

// SaveForecastPayload stores a compressed forecast response for a location.
// An identical payload only refreshes the stored fetch time.
func (s *Store) SaveForecastPayload(locationKey, units string, fetchedAt time.Time, payload []byte) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close gzip: %w", err)
	}

	hash := sha256.Sum256(append([]byte(locationKey+"|"+units+"|"), payload...))

	_, err := s.db.Exec(`
		INSERT INTO forecast_payloads (location_key, fetched_at, units, payload_compressed, payload_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(payload_hash) DO UPDATE SET fetched_at = excluded.fetched_at
	`, locationKey, fetchedAt.UTC(), units, buf.Bytes(), hex.EncodeToString(hash[:]))
	if err != nil {
		return fmt.Errorf("insert forecast payload: %w", err)
	}
	return nil
}

// LatestForecastPayload returns the newest payload for the location in the
// given units. A positive maxAge excludes older payloads. Returns nil when
// nothing qualifies.
func (s *Store) LatestForecastPayload(locationKey, units string, maxAge time.Duration) (*ForecastPayload, error) {
	row := s.db.QueryRow(`
		SELECT id, location_key, fetched_at, units, payload_compressed, payload_hash
		FROM forecast_payloads
		WHERE location_key = ? AND units = ?
		ORDER BY fetched_at DESC
		LIMIT 1
	`, locationKey, units)

	var p ForecastPayload
	var compressed []byte
	err := row.Scan(&p.ID, &p.LocationKey, &p.FetchedAt, &p.Units, &compressed, &p.PayloadHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if maxAge > 0 && time.Since(p.FetchedAt) > maxAge {
		return nil, nil
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	p.Payload, err = io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("decompress payload: %w", err)
	}
	p.FetchedAt = p.FetchedAt.In(s.loc)
	return &p, nil
}

// CleanupOldPayloads deletes payloads fetched more than retention ago and
// returns the number removed.
func (s *Store) CleanupOldPayloads(retention time.Duration) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM forecast_payloads WHERE fetched_at < ?`, time.Now().Add(-retention).UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// PayloadStats summarises the payload cache.
type PayloadStats struct {
	TotalCount      int
	TotalSizeBytes  int64
	Locations       int
	NewestFetchedAt time.Time
}

func (s *Store) GetPayloadStats() (*PayloadStats, error) {
	stats := &PayloadStats{}
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(LENGTH(payload_compressed)), 0), COUNT(DISTINCT location_key)
		FROM forecast_payloads
	`).Scan(&stats.TotalCount, &stats.TotalSizeBytes, &stats.Locations)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`SELECT fetched_at FROM forecast_payloads ORDER BY fetched_at DESC LIMIT 1`).
		Scan(&stats.NewestFetchedAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return stats, nil
}
