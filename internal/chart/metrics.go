package chart

import (
	"errors"
	"fmt"
	"math"

	"github.com/lox/forecastview/internal/models"
)

type Metric string

const (
	MetricTemperature   Metric = "temperature"
	MetricWind          Metric = "wind"
	MetricPrecipitation Metric = "precipitation"
	MetricPressure      Metric = "pressure"
)

// Metrics lists the charts drawn for a day, in display order.
var Metrics = []Metric{MetricTemperature, MetricWind, MetricPrecipitation, MetricPressure}

var ErrUnknownMetric = errors.New("unknown metric")

func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

const windStepKMH = 10

// slotLabel mirrors the forecast's "HH:MM:SS" slot text; Project trims it.
func slotLabel(o models.Observation) string {
	return o.Timestamp.Format("15:04:05")
}

// Temperature charts the slot temperature in °C inside its min/max band.
func Temperature(obs []models.Observation, unit models.TemperatureUnit) Series {
	s := Series{Unit: "°C", Band: true, Markers: true, Samples: make([]Sample, len(obs))}
	for i, o := range obs {
		s.Samples[i] = Sample{
			Label: slotLabel(o),
			Value: unit.ToCelsius(o.Temp),
			Low:   unit.ToCelsius(o.TempMin),
			High:  unit.ToCelsius(o.TempMax),
		}
	}
	return s
}

// Wind charts mean wind speed in km/h inside the speed/gust band. The lower
// bound is always zero.
func Wind(obs []models.Observation) Series {
	s := Series{Unit: " km/h", Band: true, Markers: true, Step: windStepKMH, FloorAtZero: true, Samples: make([]Sample, len(obs))}
	for i, o := range obs {
		s.Samples[i] = Sample{
			Label: slotLabel(o),
			Value: o.WindSpeed * models.MSToKMH,
			Low:   math.Min(o.WindSpeed, o.WindGust) * models.MSToKMH,
			High:  math.Max(o.WindSpeed, o.WindGust) * models.MSToKMH,
		}
	}
	return s
}

func Precipitation(obs []models.Observation) Series {
	s := Series{Unit: " mm", Samples: make([]Sample, len(obs))}
	for i, o := range obs {
		s.Samples[i] = Sample{Label: slotLabel(o), Value: o.PrecipOrZero()}
	}
	return s
}

func Pressure(obs []models.Observation) Series {
	s := Series{Unit: " hPa", Samples: make([]Sample, len(obs))}
	for i, o := range obs {
		s.Samples[i] = Sample{Label: slotLabel(o), Value: o.PressureMain}
	}
	return s
}

// SeriesFor builds the series for metric m from one day's observations.
func SeriesFor(m Metric, obs []models.Observation, unit models.TemperatureUnit) (Series, error) {
	switch m {
	case MetricTemperature:
		return Temperature(obs, unit), nil
	case MetricWind:
		return Wind(obs), nil
	case MetricPrecipitation:
		return Precipitation(obs), nil
	case MetricPressure:
		return Pressure(obs), nil
	}
	return Series{}, fmt.Errorf("%w: %q", ErrUnknownMetric, m)
}

func ProjectMetric(m Metric, obs []models.Observation, unit models.TemperatureUnit, c Canvas) (*Geometry, error) {
	s, err := SeriesFor(m, obs, unit)
	if err != nil {
		return nil, err
	}
	g, err := Project(s, c)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", m, err)
	}
	return g, nil
}
