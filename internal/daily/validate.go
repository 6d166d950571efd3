package daily

import (
	"errors"
	"fmt"
	"math"

	"github.com/lox/forecastview/internal/models"
)

// ErrInvalidRecord is returned when an observation is missing its timestamp
// or carries values no forecast source could produce.
var ErrInvalidRecord = errors.New("invalid observation record")

const (
	problemNoTimestamp     = "missing timestamp"
	problemNonFinite       = "non-finite value"
	problemTempRange       = "temp_min above temp_max"
	problemPrecipNegative  = "negative precipitation"
	problemVisibilityRange = "negative visibility"
)

// ValidateObservation returns the problems found in obs, or nil.
func ValidateObservation(obs *models.Observation) []string {
	var problems []string

	if obs.Timestamp.IsZero() {
		problems = append(problems, problemNoTimestamp)
	}

	values := []float64{
		obs.Temp, obs.TempMin, obs.TempMax,
		obs.WindSpeed, obs.WindGust,
		obs.Humidity, obs.PressureMain, obs.PressureSea, obs.PressureGround,
		obs.Visibility, obs.Cloudiness,
	}
	if obs.Precipitation.Valid {
		values = append(values, obs.Precipitation.Float64)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, problemNonFinite)
			break
		}
	}

	if obs.TempMin > obs.TempMax {
		problems = append(problems, problemTempRange)
	}
	if obs.Precipitation.Valid && obs.Precipitation.Float64 < 0 {
		problems = append(problems, problemPrecipNegative)
	}
	if obs.Visibility < 0 {
		problems = append(problems, problemVisibilityRange)
	}

	return problems
}

func checkRecords(observations []models.Observation) error {
	for i := range observations {
		if problems := ValidateObservation(&observations[i]); len(problems) > 0 {
			return fmt.Errorf("%w: observation %d: %v", ErrInvalidRecord, i, problems)
		}
	}
	return nil
}
