// Package weather provides geocoding and forecast retrieval for the agent's
// weather tools, backed by Nominatim and Open-Meteo.
package weather

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLocationNotFound indicates the geocoder returned no match for a place.
var ErrLocationNotFound = errors.New("location not found")

// Coordinates is a geocoded latitude/longitude pair.
type Coordinates struct {
	DisplayName string  `json:"display_name,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Day holds the daily aggregates returned by the forecast provider.
type Day struct {
	Date          string  `json:"date"`
	MaxTemp       float64 `json:"max_temp"`
	MinTemp       float64 `json:"min_temp"`
	Precipitation float64 `json:"precipitation"`
	WindSpeed     float64 `json:"wind_speed"`
}

// Query identifies a location and inclusive ISO date range to look up.
type Query struct {
	Location  string `json:"location"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Report is the result of a full lookup: coordinates plus daily data.
type Report struct {
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	Days        []Day       `json:"days"`
}

// Summary renders the report as compact human-readable text suitable for
// feeding back to the LLM.
func (r *Report) Summary() string {
	if len(r.Days) == 0 {
		return "No weather data available."
	}

	if len(r.Days) == 1 {
		d := r.Days[0]
		return fmt.Sprintf("On %s: High %g°C, Low %g°C, Precipitation %gmm, Wind %gkm/h",
			d.Date, d.MaxTemp, d.MinTemp, d.Precipitation, d.WindSpeed)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weather forecast for %d days:\n", len(r.Days))
	for _, d := range r.Days {
		fmt.Fprintf(&b, "• %s: %g°C/%g°C, %gmm rain, %gkm/h wind\n",
			d.Date, d.MaxTemp, d.MinTemp, d.Precipitation, d.WindSpeed)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NormalizeLocation trims and collapses whitespace in a place name so the
// same location always produces the same provider query.
func NormalizeLocation(location string) string {
	return strings.Join(strings.Fields(location), " ")
}
