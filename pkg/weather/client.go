package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"weatheragent/pkg/llmerrors"
	"weatheragent/pkg/logx"
	"weatheragent/pkg/metrics"
	"weatheragent/pkg/resilience"
)

const (
	// DefaultGeocodeURL is the Nominatim search endpoint.
	DefaultGeocodeURL = "https://nominatim.openstreetmap.org/search"
	// DefaultForecastURL is the Open-Meteo daily forecast endpoint.
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

	userAgent    = "WeatherAgent/1.0 (weather-agent@example.com)"
	maxBodyBytes = 1024 * 1024
)

// Config holds construction parameters for the weather client.
type Config struct {
	GeocodeURL  string
	ForecastURL string
	Timeout     time.Duration
	Retry       resilience.RetryConfig
	Recorder    metrics.Recorder // nil disables metrics
}

// DefaultConfig returns the production endpoints with a conservative
// per-request timeout and short retry schedule.
func DefaultConfig() Config {
	return Config{
		GeocodeURL:  DefaultGeocodeURL,
		ForecastURL: DefaultForecastURL,
		Timeout:     30 * time.Second,
		Retry: resilience.RetryConfig{
			MaxRetries:    2,
			InitialDelay:  300 * time.Millisecond,
			MaxDelay:      5 * time.Second,
			BackoffFactor: 2.0,
			Jitter:        true,
		},
	}
}

// Client fetches geocoding and forecast data over HTTP.
type Client struct {
	httpClient  *http.Client
	logger      *logx.Logger
	recorder    metrics.Recorder
	geocodeURL  string
	forecastURL string
	retry       resilience.RetryConfig
}

// NewClient creates a weather client. Zero-value config fields fall back to
// the defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.GeocodeURL == "" {
		cfg.GeocodeURL = def.GeocodeURL
	}
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = def.ForecastURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialDelay == 0 {
		cfg.Retry = def.Retry
	}
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.NewNopRecorder()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logx.NewLogger("weather"),
		recorder:    cfg.Recorder,
		geocodeURL:  cfg.GeocodeURL,
		forecastURL: cfg.ForecastURL,
		retry:       cfg.Retry,
	}
}

type geocodeHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a place name to coordinates via Nominatim. An empty result
// set returns ErrLocationNotFound, which is not retried.
func (c *Client) Geocode(ctx context.Context, place string) (Coordinates, error) {
	place = NormalizeLocation(place)
	if place == "" {
		return Coordinates{}, fmt.Errorf("%w: empty place", ErrLocationNotFound)
	}

	params := url.Values{}
	params.Set("q", place)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	var hits []geocodeHit
	start := time.Now()
	err := resilience.Do(ctx, c.logger, c.retry, func(ctx context.Context) error {
		return c.getJSON(ctx, c.geocodeURL, params, &hits)
	})
	c.observe("geocode", start, err)
	if err != nil {
		return Coordinates{}, fmt.Errorf("geocoding %q: %w", place, err)
	}

	if len(hits) == 0 {
		return Coordinates{}, fmt.Errorf("%w: %s", ErrLocationNotFound, place)
	}

	lat, latErr := strconv.ParseFloat(hits[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(hits[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return Coordinates{}, fmt.Errorf("geocoding %q: malformed coordinates in response", place)
	}

	c.logger.Debug("Geocoded %q to lat=%g lon=%g", place, lat, lon)
	return Coordinates{
		DisplayName: hits[0].DisplayName,
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}

type forecastResponse struct {
	Daily struct {
		Time          []string  `json:"time"`
		MaxTemp       []float64 `json:"temperature_2m_max"`
		MinTemp       []float64 `json:"temperature_2m_min"`
		Precipitation []float64 `json:"precipitation_sum"`
		WindSpeed     []float64 `json:"windspeed_10m_max"`
	} `json:"daily"`
}

// Forecast fetches daily aggregates for an inclusive ISO date range.
func (c *Client) Forecast(ctx context.Context, coords Coordinates, startDate, endDate string) ([]Day, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,windspeed_10m_max")
	params.Set("timezone", "auto")
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)

	var resp forecastResponse
	start := time.Now()
	err := resilience.Do(ctx, c.logger, c.retry, func(ctx context.Context) error {
		return c.getJSON(ctx, c.forecastURL, params, &resp)
	})
	c.observe("forecast", start, err)
	if err != nil {
		return nil, fmt.Errorf("forecast for %s..%s: %w", startDate, endDate, err)
	}

	d := resp.Daily
	n := len(d.Time)
	if len(d.MaxTemp) != n || len(d.MinTemp) != n || len(d.Precipitation) != n || len(d.WindSpeed) != n {
		return nil, fmt.Errorf("forecast response has mismatched series lengths")
	}

	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, Day{
			Date:          d.Time[i],
			MaxTemp:       d.MaxTemp[i],
			MinTemp:       d.MinTemp[i],
			Precipitation: d.Precipitation[i],
			WindSpeed:     d.WindSpeed[i],
		})
	}

	c.logger.Debug("Fetched %d forecast days for lat=%g lon=%g", n, coords.Latitude, coords.Longitude)
	return days, nil
}

// Lookup runs the full pipeline for a query: geocode the location, then fetch
// the forecast for the date range.
func (c *Client) Lookup(ctx context.Context, q Query) (*Report, error) {
	location := NormalizeLocation(q.Location)

	coords, err := c.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	startDate, endDate := q.StartDate, q.EndDate
	if startDate == "" {
		startDate = time.Now().Format(ISODate)
	}
	if endDate == "" {
		endDate = startDate
	}
	if startDate > endDate {
		startDate, endDate = endDate, startDate
	}

	days, err := c.Forecast(ctx, coords, startDate, endDate)
	if err != nil {
		return nil, err
	}

	return &Report{
		Location:    location,
		Coordinates: coords,
		StartDate:   startDate,
		EndDate:     endDate,
		Days:        days,
	}, nil
}

func (c *Client) observe(endpoint string, start time.Time, err error) {
	status := metrics.OutcomeOK
	if err != nil {
		status = metrics.OutcomeError
	}
	c.recorder.ObserveWeatherRequest(endpoint, status, time.Since(start))
}

// getJSON performs one GET and decodes the body, classifying failures so the
// retry layer knows which ones are worth another attempt.
func (c *Client) getJSON(ctx context.Context, baseURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		return llmerrors.NewErrorWithStatus(llmerrors.ErrorTypeRateLimit, resp.StatusCode, "rate limited")
	case resp.StatusCode >= 500:
		return llmerrors.NewErrorWithStatus(llmerrors.ErrorTypeTransient, resp.StatusCode, "server error")
	default:
		return llmerrors.NewErrorWithStatus(llmerrors.ErrorTypeBadPrompt, resp.StatusCode, "request rejected")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeTransient, err, "reading response body")
	}

	if err := json.Unmarshal(body, out); err != nil {
		return llmerrors.NewErrorWithCause(llmerrors.ErrorTypeEmptyResponse, err, "decoding response")
	}
	return nil
}
