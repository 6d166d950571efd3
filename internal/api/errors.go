package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lox/forecastview/internal/chart"
	"github.com/lox/forecastview/internal/daily"
	"github.com/lox/forecastview/internal/owm"
	"github.com/lox/forecastview/internal/render"
	"github.com/lox/forecastview/internal/service"
)

var errBadDate = errors.New("invalid date")

const dateLayout = "2006-01-02"

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, errBadDate),
		errors.Is(err, chart.ErrUnknownMetric),
		errors.Is(err, render.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, owm.ErrLocationNotFound),
		errors.Is(err, service.ErrDayNotFound):
		return http.StatusNotFound
	case errors.Is(err, daily.ErrInvalidRecord),
		errors.Is(err, chart.ErrEmptySeries),
		errors.Is(err, chart.ErrInvalidSample):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrFetch),
		errors.Is(err, owm.ErrCircuitOpen):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// userMessage is the text shown in place of the forecast when a lookup fails.
func userMessage(err error) string {
	switch statusFor(err) {
	case http.StatusNotFound:
		if errors.Is(err, owm.ErrLocationNotFound) {
			return "Location not found."
		}
		return "No forecast for that date."
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusBadGateway:
		return "The forecast service is unavailable, please try again later."
	case http.StatusUnprocessableEntity:
		return "The forecast contained invalid data."
	}
	return "Something went wrong."
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errBadDate, s)
	}
	return t, nil
}
