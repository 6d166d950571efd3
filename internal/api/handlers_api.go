package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/lox/forecastview/internal/chart"
	"github.com/lox/forecastview/internal/daily"
	"github.com/lox/forecastview/internal/models"
	"github.com/lox/forecastview/internal/render"
)

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), apiError{Error: err.Error()})
}

// DayJSON is the /api/days representation of a day summary.
type DayJSON struct {
	Date          string  `json:"date"`
	Observations  int     `json:"observations"`
	TempMinC      float64 `json:"temp_min_c"`
	TempMaxC      float64 `json:"temp_max_c"`
	PrecipTotal   float64 `json:"precip_total_mm"`
	HumidityAvg   float64 `json:"humidity_avg"`
	PressureAvg   float64 `json:"pressure_avg_hpa"`
	VisibilityMin float64 `json:"visibility_min_m"`
	VisibilityMax float64 `json:"visibility_max_m"`
}

type DaysResponse struct {
	Location models.Location `json:"location"`
	Days     []DayJSON       `json:"days"`
}

func (s *Server) handleAPIDays(w http.ResponseWriter, r *http.Request) {
	q := queryFrom(r)
	fc, days, err := s.forecasts.Days(r.Context(), q)
	if err != nil {
		log.Printf("api: days %s: %v", q.Key(), err)
		writeError(w, err)
		return
	}

	resp := DaysResponse{Location: fc.Location, Days: make([]DayJSON, len(days))}
	for i, d := range days {
		resp.Days[i] = DayJSON{
			Date:          daily.DateKey(d.Date),
			Observations:  len(d.Observations),
			TempMinC:      fc.Unit.ToCelsius(d.TempMin),
			TempMaxC:      fc.Unit.ToCelsius(d.TempMax),
			PrecipTotal:   d.PrecipTotal,
			HumidityAvg:   d.HumidityAvg,
			PressureAvg:   d.PressureAvg,
			VisibilityMin: d.VisibilityMin,
			VisibilityMax: d.VisibilityMax,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// dayObservations resolves the date query parameter to one day's
// observations.
func (s *Server) dayObservations(r *http.Request) (*models.Forecast, models.DaySummary, error) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		return nil, models.DaySummary{}, err
	}
	return s.forecasts.Day(r.Context(), queryFrom(r), date)
}

func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	m, err := chart.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, err)
		return
	}
	fc, day, err := s.dayObservations(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g, err := chart.ProjectMetric(m, day.Observations, fc.Unit, chart.DefaultCanvas)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleChart serves /chart/{metric}.{svg,png}.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ext, ok := strings.Cut(r.PathValue("file"), ".")
	if !ok {
		http.Error(w, "missing image extension", http.StatusBadRequest)
		return
	}
	m, err := chart.ParseMetric(name)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	format, err := render.ParseFormat(ext)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	fc, day, err := s.dayObservations(r)
	if err != nil {
		log.Printf("api: chart %s: %v", r.URL.RawQuery, err)
		http.Error(w, userMessage(err), statusFor(err))
		return
	}

	key := fmt.Sprintf("%s|%s|%s|%s|%d", queryFrom(r).Key(), daily.DateKey(day.Date), m, format, fc.FetchedAt.Unix())
	data, ok := s.charts.Get(key)
	if !ok {
		data, err = render.Chart(m, day.Observations, fc.Unit, format)
		if err != nil {
			log.Printf("api: render %s: %v", key, err)
			http.Error(w, userMessage(err), statusFor(err))
			return
		}
		s.charts.Set(key, data)
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=600")
	w.Write(data)
}
