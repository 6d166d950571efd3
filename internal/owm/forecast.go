package owm

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/lox/forecastview/internal/models"
)

// slotLayout is the layout of dt_txt; the API reports it in UTC.
const slotLayout = "2006-01-02 15:04:05"

type ForecastResponse struct {
	Cod  string         `json:"cod"`
	List []ForecastItem `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Coord   struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
}

type ForecastItem struct {
	Dt    int64  `json:"dt"`
	DtTxt string `json:"dt_txt"`
	Main  struct {
		Temp      float64 `json:"temp"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		SeaLevel  float64 `json:"sea_level"`
		GrndLevel float64 `json:"grnd_level"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64  `json:"speed"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Rain *struct {
		ThreeHour *float64 `json:"3h"`
	} `json:"rain"`
	Visibility float64 `json:"visibility"`
	Clouds     struct {
		All float64 `json:"all"`
	} `json:"clouds"`
}

// FetchForecast retrieves the 5-day forecast for a coordinate. It returns the
// decoded forecast and the raw response body for caching.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (*models.Forecast, []byte, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	query.Set("units", c.units.APIUnits())

	body, err := c.get(ctx, "forecast", "/data/2.5/forecast", query)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch forecast: %w", err)
	}

	fc, err := ParseForecast(body, c.units)
	if err != nil {
		return nil, body, err
	}
	fc.FetchedAt = time.Now().UTC()
	return fc, body, nil
}

// ParseForecast decodes a forecast response body. A slot without dt_txt
// falls back to its unix dt; a slot with neither keeps a zero timestamp and
// is rejected later by the aggregator.
func ParseForecast(body []byte, unit models.TemperatureUnit) (*models.Forecast, error) {
	var data ForecastResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal forecast: %w", err)
	}

	fc := &models.Forecast{
		Location: models.Location{
			Name:      data.City.Name,
			Country:   data.City.Country,
			Latitude:  data.City.Coord.Lat,
			Longitude: data.City.Coord.Lon,
		},
		Unit:         unit,
		Observations: make([]models.Observation, 0, len(data.List)),
	}

	for i, item := range data.List {
		obs := models.Observation{
			Temp:           item.Main.Temp,
			TempMin:        item.Main.TempMin,
			TempMax:        item.Main.TempMax,
			WindSpeed:      item.Wind.Speed,
			WindGust:       item.Wind.Speed,
			Humidity:       item.Main.Humidity,
			PressureMain:   item.Main.Pressure,
			PressureSea:    item.Main.SeaLevel,
			PressureGround: item.Main.GrndLevel,
			Visibility:     item.Visibility,
			Cloudiness:     item.Clouds.All,
		}

		switch {
		case item.DtTxt != "":
			ts, err := time.ParseInLocation(slotLayout, item.DtTxt, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: parse dt_txt %q: %w", i, item.DtTxt, err)
			}
			obs.Timestamp = ts
		case item.Dt != 0:
			obs.Timestamp = time.Unix(item.Dt, 0).UTC()
		}

		if item.Wind.Gust != nil {
			obs.WindGust = *item.Wind.Gust
		}
		if item.Rain != nil && item.Rain.ThreeHour != nil {
			obs.Precipitation = sql.NullFloat64{Float64: *item.Rain.ThreeHour, Valid: true}
		}

		fc.Observations = append(fc.Observations, obs)
	}

	return fc, nil
}
