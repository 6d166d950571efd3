// Package report formats day summaries and slot observations as display rows.
package report

import (
	"math"
	"strconv"
	"time"

	"github.com/lox/forecastview/internal/daily"
	"github.com/lox/forecastview/internal/models"
)

// Overview is one row of the multi-day overview table.
type Overview struct {
	Date        string // 2006-01-02
	Label       string // Mon 2 Jan
	Condition   string // "Showers"
	Temperature string // "12°C - 20°C"
	Rain        string // "3 l/m²"
	Humidity    string // "80%"
	Pressure    string // "1013 hPa"
	Visibility  string // "9000 - 10000"
}

type WaterRow struct {
	Time       string
	Rain       string
	Humidity   string
	Cloudiness string
	Visibility string
}

type PressureRow struct {
	Time   string
	Main   string
	Sea    string
	Ground string
}

// OverviewRow formats a day summary. Temperatures are converted to °C and
// all values are rounded half up.
func OverviewRow(s models.DaySummary, unit models.TemperatureUnit) Overview {
	return Overview{
		Date:        daily.DateKey(s.Date),
		Label:       s.Date.Format("Mon 2 Jan"),
		Condition:   DayCondition(s, unit).Label(),
		Temperature: rounded(unit.ToCelsius(s.TempMin)) + "°C - " + rounded(unit.ToCelsius(s.TempMax)) + "°C",
		Rain:        rounded(s.PrecipTotal) + " l/m²",
		Humidity:    rounded(s.HumidityAvg) + "%",
		Pressure:    rounded(s.PressureAvg) + " hPa",
		Visibility:  rounded(s.VisibilityMin) + " - " + rounded(s.VisibilityMax),
	}
}

func OverviewRows(days []models.DaySummary, unit models.TemperatureUnit) []Overview {
	rows := make([]Overview, len(days))
	for i, d := range days {
		rows[i] = OverviewRow(d, unit)
	}
	return rows
}

// WaterRows lists rain, humidity, cloudiness and visibility per slot.
func WaterRows(obs []models.Observation) []WaterRow {
	rows := make([]WaterRow, len(obs))
	for i, o := range obs {
		rows[i] = WaterRow{
			Time:       slotTime(o.Timestamp),
			Rain:       plain(o.PrecipOrZero()),
			Humidity:   plain(o.Humidity) + "%",
			Cloudiness: plain(o.Cloudiness) + "%",
			Visibility: plain(o.Visibility),
		}
	}
	return rows
}

// PressureRows lists main, sea-level and ground pressure per slot.
func PressureRows(obs []models.Observation) []PressureRow {
	rows := make([]PressureRow, len(obs))
	for i, o := range obs {
		rows[i] = PressureRow{
			Time:   slotTime(o.Timestamp),
			Main:   plain(o.PressureMain) + " hPa",
			Sea:    plain(o.PressureSea) + " hPa",
			Ground: plain(o.PressureGround) + " hPa",
		}
	}
	return rows
}

// Heading is the long date used above the day detail view.
func Heading(date time.Time) string {
	return date.Format("Monday, January 2, 2006")
}

func slotTime(t time.Time) string {
	return t.Format("15:04")
}

func rounded(v float64) string {
	return strconv.FormatFloat(math.Floor(v+0.5), 'f', 0, 64)
}

func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
