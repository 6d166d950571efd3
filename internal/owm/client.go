// Package owm fetches geocoding and 5-day/3-hour forecasts from OpenWeather
// and decodes them into observations.
package owm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/lox/forecastview/internal/httputil"
	"github.com/lox/forecastview/internal/metrics"
	"github.com/lox/forecastview/internal/models"
)

const DefaultBaseURL = "https://api.openweathermap.org"

var (
	ErrNoAPIKey         = errors.New("openweather api key is not configured")
	ErrLocationNotFound = errors.New("location not found")
	ErrCircuitOpen      = errors.New("circuit breaker open")
)

type Client struct {
	apiKey          string
	baseURL         string
	units           models.TemperatureUnit
	client          *http.Client
	breaker         *gobreaker.CircuitBreaker
	initialInterval time.Duration
	maxElapsedTime  time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithUnits selects the temperature unit requested from the API.
func WithUnits(u models.TemperatureUnit) Option {
	return func(c *Client) { c.units = u }
}

func WithRetry(initial, maxElapsed time.Duration) Option {
	return func(c *Client) {
		c.initialInterval = initial
		c.maxElapsedTime = maxElapsed
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:          apiKey,
		baseURL:         DefaultBaseURL,
		units:           models.Kelvin,
		client:          httputil.NewClient(),
		initialInterval: 500 * time.Millisecond,
		maxElapsedTime:  time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("owm: circuit %s %s -> %s", name, from, to)
		},
	})
	return c
}

func (c *Client) Units() models.TemperatureUnit {
	return c.units
}

type statusError struct {
	endpoint string
	code     int
	body     string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.endpoint, e.code, e.body)
}

// get performs a GET against the API, retrying rate limits, server errors and
// transport failures with exponential backoff.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	query.Set("appid", c.apiKey)
	u := c.baseURL + path + "?" + query.Encode()

	var body []byte
	operation := func() error {
		start := time.Now()
		result, err := c.breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("%s: build request: %w", endpoint, err))
			}

			resp, err := c.client.Do(req)
			if err != nil {
				metrics.OWMAPICallsTotal.WithLabelValues(endpoint, "error").Inc()
				return nil, fmt.Errorf("%s: %w", endpoint, err)
			}
			defer resp.Body.Close()
			metrics.OWMAPICallsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return nil, &statusError{endpoint: endpoint, code: resp.StatusCode, body: string(b)}
			}
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
				return nil, backoff.Permanent(&statusError{endpoint: endpoint, code: resp.StatusCode, body: string(b)})
			}

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("%s: read body: %w", endpoint, err)
			}
			return b, nil
		})
		metrics.OWMAPILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrCircuitOpen, err))
		}
		if err != nil {
			return err
		}
		body = result.([]byte)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxElapsedTime = c.maxElapsedTime
	notify := func(err error, wait time.Duration) {
		log.Printf("owm: %s failed, retrying in %s: %v", endpoint, wait.Round(time.Millisecond), err)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}
