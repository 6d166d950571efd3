package models

import "fmt"

const (
	KelvinOffset = 273.15
	MSToKMH      = 3.6
)

type TemperatureUnit string

const (
	Kelvin  TemperatureUnit = "kelvin"
	Celsius TemperatureUnit = "celsius"
)

// ParseTemperatureUnit accepts the unit names as well as the OpenWeather
// "units" parameter values ("standard", "metric").
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch s {
	case "kelvin", "standard", "K":
		return Kelvin, nil
	case "celsius", "metric", "C":
		return Celsius, nil
	}
	return "", fmt.Errorf("unknown temperature unit %q", s)
}

// ToCelsius converts a value expressed in u to degrees Celsius.
func (u TemperatureUnit) ToCelsius(v float64) float64 {
	if u == Kelvin {
		return v - KelvinOffset
	}
	return v
}

// APIUnits returns the OpenWeather "units" query value for u.
func (u TemperatureUnit) APIUnits() string {
	if u == Celsius {
		return "metric"
	}
	return "standard"
}
