package models

import (
	"database/sql"
	"time"
)

// Observation is one 3-hour forecast sample.
type Observation struct {
	Timestamp      time.Time
	Temp           float64
	TempMin        float64
	TempMax        float64
	WindSpeed      float64         // m/s
	WindGust       float64         // m/s
	Precipitation  sql.NullFloat64 // mm over the 3h slot
	Humidity       float64
	PressureMain   float64 // hPa
	PressureSea    float64
	PressureGround float64
	Visibility     float64 // metres
	Cloudiness     float64
}

// PrecipOrZero returns the slot's precipitation, treating a missing value as dry.
func (o Observation) PrecipOrZero() float64 {
	if !o.Precipitation.Valid {
		return 0
	}
	return o.Precipitation.Float64
}

// DaySummary aggregates a contiguous run of observations sharing a calendar date.
// Temperatures stay in the unit the observations were fetched in.
type DaySummary struct {
	Date          time.Time
	Observations  []Observation
	TempMin       float64
	TempMax       float64
	PrecipTotal   float64
	HumidityAvg   float64
	PressureAvg   float64
	VisibilityMin float64
	VisibilityMax float64
}

type Location struct {
	Name      string
	State     string
	Country   string
	Latitude  float64
	Longitude float64
}

// Forecast is a materialised forecast fetch: location plus ordered observations.
type Forecast struct {
	Location     Location
	Unit         TemperatureUnit
	FetchedAt    time.Time
	Observations []Observation
}
