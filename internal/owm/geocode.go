package owm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lox/forecastview/internal/models"
)

type geocodeResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

// Geocode resolves a place name to coordinates. Empty parts are sent as empty
// fields, so "Berlin,,DE" is a valid query.
func (c *Client) Geocode(ctx context.Context, city, state, country string) (*models.Location, error) {
	query := url.Values{}
	query.Set("q", city+","+state+","+country)
	query.Set("limit", "1")

	body, err := c.get(ctx, "geocode", "/geo/1.0/direct", query)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}

	var results []geocodeResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("geocode: unmarshal: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrLocationNotFound, city)
	}

	r := results[0]
	return &models.Location{
		Name:      r.Name,
		State:     r.State,
		Country:   r.Country,
		Latitude:  r.Lat,
		Longitude: r.Lon,
	}, nil
}
