// Package service resolves place queries to forecasts, caching API payloads
// in the store and aggregating them into day summaries.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lox/forecastview/internal/daily"
	"github.com/lox/forecastview/internal/metrics"
	"github.com/lox/forecastview/internal/models"
	"github.com/lox/forecastview/internal/owm"
	"github.com/lox/forecastview/internal/store"
)

var (
	ErrEmptyQuery  = errors.New("city is required")
	ErrDayNotFound = errors.New("no forecast for date")
	ErrFetch       = errors.New("forecast unavailable")
)

// Query names a place the way the geocoding API expects it.
type Query struct {
	City    string
	State   string
	Country string
}

func (q Query) Key() string {
	return store.LocationQuery(q.City, q.State, q.Country)
}

func (q Query) String() string {
	parts := []string{q.City}
	if q.State != "" {
		parts = append(parts, q.State)
	}
	if q.Country != "" {
		parts = append(parts, q.Country)
	}
	return strings.Join(parts, ", ")
}

// Fetcher is the forecast API surface the Forecaster depends on.
type Fetcher interface {
	Geocode(ctx context.Context, city, state, country string) (*models.Location, error)
	FetchForecast(ctx context.Context, lat, lon float64) (*models.Forecast, []byte, error)
	Units() models.TemperatureUnit
}

type Forecaster struct {
	client Fetcher
	store  *store.Store
	ttl    time.Duration
}

// NewForecaster returns a Forecaster that reuses cached payloads younger
// than ttl before calling the API.
func NewForecaster(client Fetcher, st *store.Store, ttl time.Duration) *Forecaster {
	return &Forecaster{client: client, store: st, ttl: ttl}
}

func (f *Forecaster) Units() models.TemperatureUnit {
	return f.client.Units()
}

// Lookup returns the forecast for q. When the API fails, the newest cached
// payload is served regardless of age; the cache is only written after a
// successful fetch.
func (f *Forecaster) Lookup(ctx context.Context, q Query) (*models.Forecast, error) {
	if strings.TrimSpace(q.City) == "" {
		return nil, ErrEmptyQuery
	}
	key := q.Key()
	unit := f.client.Units()

	cached, err := f.cached(key, unit, f.ttl)
	if err != nil {
		log.Printf("service: read cache %s: %v", key, err)
	}
	if cached != nil {
		metrics.ForecastCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.ForecastCacheLookups.WithLabelValues("miss").Inc()

	fc, fetchErr := f.fetch(ctx, q, key, unit)
	if fetchErr == nil {
		return fc, nil
	}
	if errors.Is(fetchErr, owm.ErrLocationNotFound) {
		return nil, fetchErr
	}

	stale, err := f.cached(key, unit, 0)
	if err != nil {
		log.Printf("service: read stale cache %s: %v", key, err)
	}
	if stale == nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, fetchErr)
	}
	log.Printf("service: serving cached forecast for %s from %s: %v", key, stale.FetchedAt.Format(time.RFC3339), fetchErr)
	metrics.ForecastCacheLookups.WithLabelValues("stale_fallback").Inc()
	return stale, nil
}

// Refresh fetches q from the API regardless of cache age and stores the
// payload.
func (f *Forecaster) Refresh(ctx context.Context, q Query) (*models.Forecast, error) {
	if strings.TrimSpace(q.City) == "" {
		return nil, ErrEmptyQuery
	}
	return f.fetch(ctx, q, q.Key(), f.client.Units())
}

// Days aggregates the forecast for q into per-day summaries.
func (f *Forecaster) Days(ctx context.Context, q Query) (*models.Forecast, []models.DaySummary, error) {
	fc, err := f.Lookup(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	days, err := daily.Aggregate(fc.Observations)
	if err != nil {
		return fc, nil, fmt.Errorf("aggregate %s: %w", q.Key(), err)
	}
	metrics.DaysAggregated.Add(float64(len(days)))
	return fc, days, nil
}

// Day returns the summary for a single calendar date.
func (f *Forecaster) Day(ctx context.Context, q Query, date time.Time) (*models.Forecast, models.DaySummary, error) {
	fc, days, err := f.Days(ctx, q)
	if err != nil {
		return nil, models.DaySummary{}, err
	}
	day, ok := daily.Find(days, date)
	if !ok {
		return fc, models.DaySummary{}, fmt.Errorf("%w: %s", ErrDayNotFound, daily.DateKey(date))
	}
	return fc, day, nil
}

func (f *Forecaster) fetch(ctx context.Context, q Query, key string, unit models.TemperatureUnit) (*models.Forecast, error) {
	loc, err := f.resolve(ctx, q, key)
	if err != nil {
		return nil, err
	}

	fc, body, err := f.client.FetchForecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, err
	}
	if fc.Location.Name == "" {
		fc.Location = *loc
	}

	if err := f.store.SaveForecastPayload(key, unit.APIUnits(), fc.FetchedAt, body); err != nil {
		log.Printf("service: cache forecast %s: %v", key, err)
	}
	log.Printf("service: fetched %d observations for %s", len(fc.Observations), key)
	return fc, nil
}

func (f *Forecaster) resolve(ctx context.Context, q Query, key string) (*models.Location, error) {
	loc, err := f.store.GetLocation(key)
	if err != nil {
		log.Printf("service: read location cache %s: %v", key, err)
	}
	if loc != nil {
		return loc, nil
	}

	loc, err = f.client.Geocode(ctx, q.City, q.State, q.Country)
	if err != nil {
		return nil, err
	}
	if err := f.store.SaveLocation(key, *loc); err != nil {
		log.Printf("service: cache location %s: %v", key, err)
	}
	return loc, nil
}

func (f *Forecaster) cached(key string, unit models.TemperatureUnit, maxAge time.Duration) (*models.Forecast, error) {
	p, err := f.store.LatestForecastPayload(key, unit.APIUnits(), maxAge)
	if err != nil || p == nil {
		return nil, err
	}
	fc, err := owm.ParseForecast(p.Payload, unit)
	if err != nil {
		return nil, fmt.Errorf("parse cached payload %d: %w", p.ID, err)
	}
	fc.FetchedAt = p.FetchedAt
	return fc, nil
}
