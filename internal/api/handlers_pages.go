package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lox/forecastview/internal/chart"
	"github.com/lox/forecastview/internal/daily"
	"github.com/lox/forecastview/internal/models"
	"github.com/lox/forecastview/internal/report"
	"github.com/lox/forecastview/internal/service"
)

func queryFrom(r *http.Request) service.Query {
	v := r.URL.Query()
	return service.Query{
		City:    strings.TrimSpace(v.Get("city")),
		State:   strings.TrimSpace(v.Get("state")),
		Country: strings.TrimSpace(v.Get("country")),
	}
}

func locationName(l models.Location) string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	q := queryFrom(r)
	data := IndexData{Query: q}
	status := http.StatusOK

	if q.City != "" {
		fc, days, err := s.forecasts.Days(r.Context(), q)
		if err != nil {
			log.Printf("api: overview %s: %v", q.Key(), err)
			status = statusFor(err)
			data.Error = userMessage(err)
		} else {
			data.Location = locationName(fc.Location)
			for _, row := range report.OverviewRows(days, fc.Unit) {
				data.Days = append(data.Days, DayLink{Overview: row, URL: dayURL(q, row.Date)})
			}
		}
	}

	s.renderPage(w, "index.html", status, data)
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	q := queryFrom(r)
	data := DayData{Query: q, BackURL: "/?" + queryValues(q).Encode()}

	date, err := parseDate(r.URL.Query().Get("date"))
	if err == nil {
		var fc *models.Forecast
		var day models.DaySummary
		fc, day, err = s.forecasts.Day(r.Context(), q, date)
		if err == nil {
			key := daily.DateKey(day.Date)
			data.Location = locationName(fc.Location)
			data.Heading = report.Heading(day.Date)
			data.Overview = report.OverviewRow(day, fc.Unit)
			data.Moon = report.MoonOn(day.Date.Add(12 * time.Hour))
			data.Water = report.WaterRows(day.Observations)
			data.Pressure = report.PressureRows(day.Observations)
			for _, m := range chart.Metrics {
				data.Charts = append(data.Charts, ChartLink{Metric: m, URL: chartURL(q, m, key)})
			}
		}
	}

	status := http.StatusOK
	if err != nil {
		log.Printf("api: day %s: %v", q.Key(), err)
		status = statusFor(err)
		data.Error = userMessage(err)
	}
	s.renderPage(w, "day.html", status, data)
}

func (s *Server) renderPage(w http.ResponseWriter, name string, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("template error: %v", err)
	}
}
