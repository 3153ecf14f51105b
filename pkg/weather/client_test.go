package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatheragent/pkg/llmerrors"
	"weatheragent/pkg/resilience"
)

const parisGeocodeBody = `[{"lat":"48.8566","lon":"2.3522","display_name":"Paris, France"}]`

const parisForecastBody = `{"daily":{
	"time":["2026-08-30"],
	"temperature_2m_max":[18.0],
	"temperature_2m_min":[12.5],
	"precipitation_sum":[0.2],
	"windspeed_10m_max":[14.0]}}`

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func newTestClient(geocode, forecast *httptest.Server) *Client {
	cfg := Config{Timeout: 2 * time.Second, Retry: fastRetry()}
	if geocode != nil {
		cfg.GeocodeURL = geocode.URL
	}
	if forecast != nil {
		cfg.ForecastURL = forecast.URL
	}
	return NewClient(cfg)
}

func TestGeocodeParsesCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(parisGeocodeBody))
	}))
	defer srv.Close()

	coords, err := newTestClient(srv, nil).Geocode(context.Background(), "  Paris ")
	require.NoError(t, err)
	assert.InDelta(t, 48.8566, coords.Latitude, 0.0001)
	assert.InDelta(t, 2.3522, coords.Longitude, 0.0001)
	assert.Equal(t, "Paris, France", coords.DisplayName)
}

func TestGeocodeUnknownPlaceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, nil).Geocode(context.Background(), "Atlantis")
	require.ErrorIs(t, err, ErrLocationNotFound)
}

func TestGeocodeRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(parisGeocodeBody))
	}))
	defer srv.Close()

	coords, err := newTestClient(srv, nil).Geocode(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.InDelta(t, 48.8566, coords.Latitude, 0.0001)
}

func TestGeocodeExhaustionIsServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv, nil).Geocode(context.Background(), "Paris")
	require.Error(t, err)
	assert.True(t, llmerrors.IsServiceUnavailable(err))
}

func TestForecastDecodesDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "auto", q.Get("timezone"))
		assert.Equal(t, "2026-08-30", q.Get("start_date"))
		assert.Equal(t, "2026-08-30", q.Get("end_date"))
		_, _ = w.Write([]byte(parisForecastBody))
	}))
	defer srv.Close()

	days, err := newTestClient(nil, srv).Forecast(context.Background(),
		Coordinates{Latitude: 48.8566, Longitude: 2.3522}, "2026-08-30", "2026-08-30")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-08-30", days[0].Date)
	assert.InDelta(t, 18.0, days[0].MaxTemp, 0.01)
	assert.InDelta(t, 0.2, days[0].Precipitation, 0.01)
}

func TestForecastRejectsMismatchedSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"daily":{"time":["2026-08-30","2026-08-31"],
			"temperature_2m_max":[18.0],"temperature_2m_min":[12.0],
			"precipitation_sum":[0.0],"windspeed_10m_max":[10.0]}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(nil, srv).Forecast(context.Background(), Coordinates{}, "2026-08-30", "2026-08-31")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched")
}

func TestLookupFullPipeline(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(parisGeocodeBody))
	}))
	defer geo.Close()
	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(parisForecastBody))
	}))
	defer fc.Close()

	report, err := newTestClient(geo, fc).Lookup(context.Background(), Query{
		Location:  " Paris  ",
		StartDate: "2026-08-30",
		EndDate:   "2026-08-30",
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", report.Location)
	require.Len(t, report.Days, 1)
	assert.Contains(t, report.Summary(), "High 18°C")
}

func TestLookupSwapsInvertedRange(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(parisGeocodeBody))
	}))
	defer geo.Close()
	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-08-29", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2026-08-30", r.URL.Query().Get("end_date"))
		_, _ = w.Write([]byte(parisForecastBody))
	}))
	defer fc.Close()

	_, err := newTestClient(geo, fc).Lookup(context.Background(), Query{
		Location:  "Paris",
		StartDate: "2026-08-30",
		EndDate:   "2026-08-29",
	})
	require.NoError(t, err)
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "New York City", NormalizeLocation("  New   York\tCity "))
	assert.Equal(t, "", NormalizeLocation("   "))
}
