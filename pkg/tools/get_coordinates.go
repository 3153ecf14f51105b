package tools

import (
	"context"
	"fmt"

	"weatheragent/pkg/weather"
)

// ToolGetCoordinates is the constant name for the geocoding tool.
const ToolGetCoordinates = "get_coordinates"

// GetCoordinatesTool resolves a place name to latitude and longitude.
type GetCoordinatesTool struct {
	client *weather.Client
}

// NewGetCoordinatesTool creates a geocoding tool backed by client.
func NewGetCoordinatesTool(client *weather.Client) *GetCoordinatesTool {
	return &GetCoordinatesTool{client: client}
}

// Name returns the tool name.
func (t *GetCoordinatesTool) Name() string {
	return ToolGetCoordinates
}

// PromptDocumentation returns formatted tool documentation for prompts.
func (t *GetCoordinatesTool) PromptDocumentation() string {
	return `- **get_coordinates** - Get latitude and longitude for a place name
  - Parameters: place (string, REQUIRED)
  - Returns coordinates and the resolved display name`
}

// Definition returns the tool definition for the LLM.
func (t *GetCoordinatesTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        ToolGetCoordinates,
		Description: "Get latitude and longitude coordinates for a location. Use this when the user asks where a place is or needs coordinates directly.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"place": {
					Type:        "string",
					Description: "Place name to geocode (e.g., 'Berlin', 'Mount Fuji')",
				},
			},
			Required: []string{"place"},
		},
	}
}

// Exec executes the geocoding lookup.
func (t *GetCoordinatesTool) Exec(ctx context.Context, args map[string]any) (*ExecResult, error) {
	place, ok := args["place"].(string)
	if !ok || weather.NormalizeLocation(place) == "" {
		return nil, fmt.Errorf("place is required and must be a non-empty string")
	}

	coords, err := t.client.Geocode(ctx, place)
	if err != nil {
		return nil, fmt.Errorf("could not find coordinates for %s: %w", weather.NormalizeLocation(place), err)
	}

	return &ExecResult{
		Content: fmt.Sprintf("%s is at latitude %g, longitude %g",
			coords.DisplayName, coords.Latitude, coords.Longitude),
		Data: map[string]any{
			"place":        weather.NormalizeLocation(place),
			"display_name": coords.DisplayName,
			"latitude":     coords.Latitude,
			"longitude":    coords.Longitude,
		},
	}, nil
}
