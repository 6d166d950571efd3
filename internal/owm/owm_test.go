package owm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lox/forecastview/internal/models"
)

const sampleForecast = `{
  "cod": "200",
  "list": [
    {
      "dt": 1704067200,
      "dt_txt": "2024-01-01 00:00:00",
      "main": {"temp": 280.1, "temp_min": 279.5, "temp_max": 281.0, "pressure": 1012, "sea_level": 1012, "grnd_level": 1004, "humidity": 81},
      "wind": {"speed": 3.2, "gust": 6.4},
      "rain": {"3h": 0.42},
      "visibility": 10000,
      "clouds": {"all": 75}
    },
    {
      "dt": 1704078000,
      "dt_txt": "2024-01-01 03:00:00",
      "main": {"temp": 279.0, "temp_min": 279.0, "temp_max": 279.0, "pressure": 1011, "humidity": 85},
      "wind": {"speed": 2.1},
      "visibility": 8000,
      "clouds": {"all": 100}
    }
  ],
  "city": {"name": "Berlin", "country": "DE", "coord": {"lat": 52.517, "lon": 13.389}}
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRetry(time.Millisecond, 200*time.Millisecond))
}

func TestParseForecast(t *testing.T) {
	fc, err := ParseForecast([]byte(sampleForecast), models.Kelvin)
	if err != nil {
		t.Fatalf("ParseForecast: %v", err)
	}

	if fc.Location.Name != "Berlin" || fc.Location.Country != "DE" {
		t.Errorf("Location = %+v", fc.Location)
	}
	if len(fc.Observations) != 2 {
		t.Fatalf("len(Observations) = %d, want 2", len(fc.Observations))
	}

	first := fc.Observations[0]
	if !first.Timestamp.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamp = %v", first.Timestamp)
	}
	if first.TempMin != 279.5 || first.TempMax != 281.0 {
		t.Errorf("temps = %v..%v", first.TempMin, first.TempMax)
	}
	if first.WindGust != 6.4 {
		t.Errorf("WindGust = %v, want 6.4", first.WindGust)
	}
	if !first.Precipitation.Valid || first.Precipitation.Float64 != 0.42 {
		t.Errorf("Precipitation = %+v, want 0.42", first.Precipitation)
	}
	if first.PressureGround != 1004 || first.Cloudiness != 75 {
		t.Errorf("pressure/clouds = %v/%v", first.PressureGround, first.Cloudiness)
	}

	second := fc.Observations[1]
	if second.Precipitation.Valid {
		t.Error("missing rain should be invalid")
	}
	if second.WindGust != second.WindSpeed {
		t.Errorf("missing gust = %v, want wind speed %v", second.WindGust, second.WindSpeed)
	}
}

func TestParseForecast_TimestampFallbacks(t *testing.T) {
	body := `{"list":[{"dt":1704067200},{"main":{"temp":1}}]}`
	fc, err := ParseForecast([]byte(body), models.Celsius)
	if err != nil {
		t.Fatalf("ParseForecast: %v", err)
	}
	if !fc.Observations[0].Timestamp.Equal(time.Unix(1704067200, 0)) {
		t.Errorf("dt fallback = %v", fc.Observations[0].Timestamp)
	}
	if !fc.Observations[1].Timestamp.IsZero() {
		t.Errorf("slot without time = %v, want zero", fc.Observations[1].Timestamp)
	}
}

func TestParseForecast_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"bad dt_txt", `{"list":[{"dt_txt":"tomorrow"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseForecast([]byte(tt.body), models.Kelvin); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFetchForecast(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/forecast" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleForecast))
	})

	fc, body, err := c.FetchForecast(context.Background(), 52.517, 13.389)
	if err != nil {
		t.Fatalf("FetchForecast: %v", err)
	}
	if string(body) != sampleForecast {
		t.Error("raw body not returned")
	}
	if fc.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
	want := "appid=test-key&lat=52.5170&lon=13.3890&units=standard"
	if gotQuery != want {
		t.Errorf("query = %s, want %s", gotQuery, want)
	}
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Berlin,,DE" {
			t.Errorf("q = %q, want Berlin,,DE", got)
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Error("limit not 1")
		}
		w.Write([]byte(`[{"name":"Berlin","lat":52.517,"lon":13.389,"country":"DE","state":"Berlin"}]`))
	})

	loc, err := c.Geocode(context.Background(), "Berlin", "", "DE")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	want := models.Location{Name: "Berlin", State: "Berlin", Country: "DE", Latitude: 52.517, Longitude: 13.389}
	if *loc != want {
		t.Errorf("Geocode = %+v, want %+v", *loc, want)
	}
}

func TestGeocode_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	if _, err := c.Geocode(context.Background(), "Atlantis", "", ""); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleForecast))
	})

	if _, _, err := c.FetchForecast(context.Background(), 1, 2); err != nil {
		t.Fatalf("FetchForecast: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClient_ClientErrorsArePermanent(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"cod":401}`, http.StatusUnauthorized)
	})

	_, _, err := c.FetchForecast(context.Background(), 1, 2)
	var se *statusError
	if !errors.As(err, &se) || se.code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 status error", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClient_NoAPIKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Geocode(context.Background(), "x", "", ""); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("err = %v, want ErrNoAPIKey", err)
	}
}

func TestClient_CircuitOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	// one attempt per call so each call is one breaker failure
	c := NewClient("test-key", WithBaseURL(srv.URL), WithRetry(time.Millisecond, time.Nanosecond))

	var err error
	for i := 0; i < 10; i++ {
		if _, _, err = c.FetchForecast(context.Background(), 1, 2); errors.Is(err, ErrCircuitOpen) {
			break
		}
	}
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen after repeated failures", err)
	}
	if calls.Load() != 6 {
		t.Errorf("calls before open = %d, want 6", calls.Load())
	}

	if _, err := c.Geocode(context.Background(), "Berlin", "", "DE"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Geocode err = %v, want ErrCircuitOpen", err)
	}
	if calls.Load() != 6 {
		t.Errorf("calls after open = %d, want no further requests", calls.Load())
	}
}
