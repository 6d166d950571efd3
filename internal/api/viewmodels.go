package api

import (
	"net/url"

	"github.com/lox/forecastview/internal/chart"
	"github.com/lox/forecastview/internal/report"
	"github.com/lox/forecastview/internal/service"
)

// IndexData is the overview page: the search form plus one row per day.
type IndexData struct {
	Query    service.Query
	Location string
	Days     []DayLink
	Error    string
}

type DayLink struct {
	report.Overview
	URL string
}

// DayData is the detail page for a single day.
type DayData struct {
	Query    service.Query
	Location string
	Heading  string
	Overview report.Overview
	Moon     report.Moon
	Charts   []ChartLink
	Water    []report.WaterRow
	Pressure []report.PressureRow
	BackURL  string
	Error    string
}

type ChartLink struct {
	Metric chart.Metric
	URL    string
}

func queryValues(q service.Query) url.Values {
	v := url.Values{}
	v.Set("city", q.City)
	if q.State != "" {
		v.Set("state", q.State)
	}
	if q.Country != "" {
		v.Set("country", q.Country)
	}
	return v
}

func dayURL(q service.Query, date string) string {
	v := queryValues(q)
	v.Set("date", date)
	return "/day?" + v.Encode()
}

func chartURL(q service.Query, m chart.Metric, date string) string {
	v := queryValues(q)
	v.Set("date", date)
	return "/chart/" + string(m) + ".svg?" + v.Encode()
}
