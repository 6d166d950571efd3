package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OWMAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastview_owm_api_calls_total",
			Help: "Total OpenWeather API calls",
		},
		[]string{"endpoint", "status"},
	)

	OWMAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecastview_owm_api_latency_seconds",
			Help:    "OpenWeather API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ForecastCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastview_forecast_cache_lookups_total",
			Help: "Forecast lookups by outcome (hit, miss, stale_fallback)",
		},
		[]string{"outcome"},
	)

	DaysAggregated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forecastview_days_aggregated_total",
			Help: "Total day summaries produced",
		},
	)

	ChartsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecastview_charts_rendered_total",
			Help: "Total charts rendered",
		},
		[]string{"metric", "format"},
	)
)
