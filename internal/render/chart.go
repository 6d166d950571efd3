package render

import (
	"github.com/lox/forecastview/internal/chart"
	"github.com/lox/forecastview/internal/metrics"
	"github.com/lox/forecastview/internal/models"
)

// Chart projects one metric for a day's observations onto the default
// canvas and encodes it.
func Chart(m chart.Metric, obs []models.Observation, unit models.TemperatureUnit, f Format) ([]byte, error) {
	g, err := chart.ProjectMetric(m, obs, unit, chart.DefaultCanvas)
	if err != nil {
		return nil, err
	}
	data, err := Render(f, g, StyleFor(m))
	if err != nil {
		return nil, err
	}
	metrics.ChartsRendered.WithLabelValues(string(m), string(f)).Inc()
	return data, nil
}
