package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weatheragent/pkg/weather"
)

// ToolWeatherLookup is the constant name for the weather lookup tool.
const ToolWeatherLookup = "weather_lookup"

// WeatherLookupTool fetches a daily forecast for a location and date range.
// Date arguments accept either ISO dates or natural expressions like
// "tomorrow" or "in 3 days".
type WeatherLookupTool struct {
	client *weather.Client
	now    func() time.Time
}

// NewWeatherLookupTool creates a weather lookup tool backed by client.
func NewWeatherLookupTool(client *weather.Client) *WeatherLookupTool {
	return &WeatherLookupTool{client: client, now: time.Now}
}

// Name returns the tool name.
func (t *WeatherLookupTool) Name() string {
	return ToolWeatherLookup
}

// PromptDocumentation returns formatted tool documentation for prompts.
func (t *WeatherLookupTool) PromptDocumentation() string {
	return `- **weather_lookup** - Get the weather forecast for a location and date range
  - Parameters: location (string, REQUIRED), start_date (string), end_date (string)
  - Dates may be ISO (2026-08-30) or natural ("tomorrow", "in 3 days", "yesterday")
  - Omitted dates default to today
  - Returns daily high/low temperature, precipitation and wind speed`
}

// Definition returns the tool definition for the LLM.
func (t *WeatherLookupTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name: ToolWeatherLookup,
		Description: `Get the weather forecast for a location and date range. Use this whenever the user asks about weather conditions. The tool:
- Geocodes the location automatically
- Accepts ISO dates or natural expressions like "tomorrow" and "in 3 days"
- Returns daily high/low temperatures, precipitation and wind speed
- Covers up to 15 days in the past or future`,
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"location": {
					Type:        "string",
					Description: "Place name to look up (e.g., 'Paris', 'New York City')",
				},
				"start_date": {
					Type:        "string",
					Description: "First day of the range, ISO or natural language (defaults to today)",
				},
				"end_date": {
					Type:        "string",
					Description: "Last day of the range, ISO or natural language (defaults to start_date)",
				},
			},
			Required: []string{"location"},
		},
	}
}

// Exec executes the weather lookup.
func (t *WeatherLookupTool) Exec(ctx context.Context, args map[string]any) (*ExecResult, error) {
	location, ok := args["location"].(string)
	if !ok || weather.NormalizeLocation(location) == "" {
		return nil, fmt.Errorf("location is required and must be a non-empty string")
	}

	ref := t.now()
	startExpr, _ := args["start_date"].(string)
	endExpr, _ := args["end_date"].(string)
	startDate := weather.ResolveRelativeDate(startExpr, ref)
	endDate := startDate
	if endExpr != "" {
		endDate = weather.ResolveRelativeDate(endExpr, ref)
	}

	report, err := t.client.Lookup(ctx, weather.Query{
		Location:  location,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		if errors.Is(err, weather.ErrLocationNotFound) {
			return nil, fmt.Errorf("no such place is known: %s", weather.NormalizeLocation(location))
		}
		return nil, fmt.Errorf("weather lookup failed: %w", err)
	}

	return &ExecResult{
		Content: fmt.Sprintf("Weather for %s (%s to %s):\n%s",
			report.Location, report.StartDate, report.EndDate, report.Summary()),
		Data: map[string]any{
			"location":   report.Location,
			"latitude":   report.Coordinates.Latitude,
			"longitude":  report.Coordinates.Longitude,
			"start_date": report.StartDate,
			"end_date":   report.EndDate,
			"days":       report.Days,
		},
	}, nil
}
