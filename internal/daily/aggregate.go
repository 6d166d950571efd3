// Package daily groups an ordered forecast series into calendar-day summaries.
package daily

import (
	"math"
	"time"

	"github.com/lox/forecastview/internal/models"
)

const dateKeyLayout = "2006-01-02"

// DateKey is the grouping key for an observation: its calendar date in the
// timestamp's own location.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// Aggregate partitions observations into contiguous runs sharing a calendar
// date and summarises each run. Input must already be ordered by timestamp;
// unsorted input is not reordered and yields one summary per contiguous run.
// Any invalid record fails the whole call.
func Aggregate(observations []models.Observation) ([]models.DaySummary, error) {
	if err := checkRecords(observations); err != nil {
		return nil, err
	}

	summaries := make([]models.DaySummary, 0)
	start := 0
	for i := 1; i <= len(observations); i++ {
		// end of input closes the trailing run
		if i < len(observations) && DateKey(observations[i].Timestamp) == DateKey(observations[start].Timestamp) {
			continue
		}
		summaries = append(summaries, Summarize(observations[start:i]))
		start = i
	}

	return summaries, nil
}

// Summarize computes the aggregates for one day's observations. The run must
// be non-empty; its date comes from the first observation.
func Summarize(run []models.Observation) models.DaySummary {
	first := run[0].Timestamp
	summary := models.DaySummary{
		Date:          time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, first.Location()),
		Observations:  run[:len(run):len(run)],
		TempMin:       math.Inf(1),
		TempMax:       math.Inf(-1),
		VisibilityMin: math.Inf(1),
		VisibilityMax: math.Inf(-1),
	}

	var humiditySum, pressureSum float64
	for _, obs := range run {
		summary.TempMin = math.Min(summary.TempMin, obs.TempMin)
		summary.TempMax = math.Max(summary.TempMax, obs.TempMax)
		summary.PrecipTotal += obs.PrecipOrZero()
		humiditySum += obs.Humidity
		pressureSum += obs.PressureMain
		summary.VisibilityMin = math.Min(summary.VisibilityMin, obs.Visibility)
		summary.VisibilityMax = math.Max(summary.VisibilityMax, obs.Visibility)
	}

	n := float64(len(run))
	summary.HumidityAvg = humiditySum / n
	summary.PressureAvg = pressureSum / n

	return summary
}

// Find returns the summary for the given calendar date.
func Find(summaries []models.DaySummary, date time.Time) (models.DaySummary, bool) {
	key := DateKey(date)
	for _, s := range summaries {
		if DateKey(s.Date) == key {
			return s, true
		}
	}
	return models.DaySummary{}, false
}
