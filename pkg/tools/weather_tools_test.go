package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatheragent/pkg/resilience"
	"weatheragent/pkg/weather"
)

func testWeatherClient(t *testing.T, geocodeBody, forecastBody string) *weather.Client {
	t.Helper()
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(geocodeBody))
	}))
	t.Cleanup(geo.Close)
	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(forecastBody))
	}))
	t.Cleanup(fc.Close)

	return weather.NewClient(weather.Config{
		GeocodeURL:  geo.URL,
		ForecastURL: fc.URL,
		Timeout:     2 * time.Second,
		Retry:       resilience.RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1},
	})
}

func TestWeatherLookupToolHappyPath(t *testing.T) {
	client := testWeatherClient(t,
		`[{"lat":"48.8566","lon":"2.3522","display_name":"Paris, France"}]`,
		`{"daily":{"time":["2026-08-30"],"temperature_2m_max":[18.0],"temperature_2m_min":[12.0],"precipitation_sum":[0.0],"windspeed_10m_max":[9.0]}}`)

	tool := NewWeatherLookupTool(client)
	tool.now = func() time.Time { return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC) }

	result, err := tool.Exec(context.Background(), map[string]any{"location": "Paris"})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "Paris")
	assert.Contains(t, result.Content, "High 18°C")
	assert.Equal(t, "2026-08-30", result.Data["start_date"])
}

func TestWeatherLookupToolResolvesNaturalDates(t *testing.T) {
	client := testWeatherClient(t,
		`[{"lat":"1","lon":"2","display_name":"X"}]`,
		`{"daily":{"time":["2026-08-31"],"temperature_2m_max":[20.0],"temperature_2m_min":[10.0],"precipitation_sum":[1.0],"windspeed_10m_max":[5.0]}}`)

	tool := NewWeatherLookupTool(client)
	tool.now = func() time.Time { return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC) }

	result, err := tool.Exec(context.Background(), map[string]any{
		"location":   "X",
		"start_date": "tomorrow",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", result.Data["start_date"])
	assert.Equal(t, "2026-08-31", result.Data["end_date"])
}

func TestWeatherLookupToolUnknownPlace(t *testing.T) {
	client := testWeatherClient(t, `[]`, `{}`)
	tool := NewWeatherLookupTool(client)

	_, err := tool.Exec(context.Background(), map[string]any{"location": "Atlantis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such place is known: Atlantis")
}

func TestWeatherLookupToolRejectsEmptyLocation(t *testing.T) {
	tool := NewWeatherLookupTool(weather.NewClient(weather.Config{}))
	_, err := tool.Exec(context.Background(), map[string]any{"location": "   "})
	require.Error(t, err)
}

func TestGetCoordinatesTool(t *testing.T) {
	client := testWeatherClient(t,
		`[{"lat":"52.52","lon":"13.405","display_name":"Berlin, Germany"}]`, `{}`)
	tool := NewGetCoordinatesTool(client)

	result, err := tool.Exec(context.Background(), map[string]any{"place": "Berlin"})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "Berlin, Germany")
	assert.InDelta(t, 52.52, result.Data["latitude"].(float64), 0.001)
}

func TestParseDateTool(t *testing.T) {
	tool := NewParseDateTool()
	tool.now = func() time.Time { return time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC) }

	result, err := tool.Exec(context.Background(), map[string]any{"expression": "in 3 days"})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-29", result.Content)

	_, err = tool.Exec(context.Background(), map[string]any{"expression": ""})
	require.Error(t, err)
}
