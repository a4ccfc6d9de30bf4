// Package nasa exposes the NASA tools: Astronomy Picture of the Day, Mars
// rover photos, and the image library search. Tools work without a key by
// substituting NASA's shared DEMO_KEY, which allows reduced-rate anonymous
// access.
package nasa

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opencivic/civicmcp/pkg/config"
	"github.com/opencivic/civicmcp/pkg/gateway"
	"github.com/opencivic/civicmcp/pkg/shared/jsonsafe"
	"github.com/opencivic/civicmcp/pkg/shared/stringutil"
	"github.com/opencivic/civicmcp/pkg/tools"
)

// Group is the registry group for NASA tools.
const Group = "nasa"

const (
	// demoKey is NASA's public placeholder key (30 requests/hour).
	demoKey = "DEMO_KEY"

	defaultRoverSol = 1000
	maxPhotos       = 10
	maxSearchItems  = 10
	maxDescription  = 200
)

// Client adapts NASA tool invocations into gateway fetches.
type Client struct {
	gw  *gateway.Client
	cfg *config.Config
}

// New creates a NASA provider backed by the shared gateway.
func New(gw *gateway.Client, cfg *config.Config) *Client {
	return &Client{gw: gw, cfg: cfg}
}

func (c *Client) apiKey() string {
	if c.cfg.HasNASAKey() {
		return c.cfg.NASA.APIKey
	}
	return demoKey
}

// Tools returns the NASA tool definitions.
func (c *Client) Tools() []*tools.Tool {
	return []*tools.Tool{
		{
			Tool: mcp.Tool{
				Name:        "get_astronomy_photo",
				Description: "Get NASA's Astronomy Picture of the Day (APOD).",
				Annotations: &mcp.ToolAnnotations{Title: "Astronomy Photo"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"date": map[string]any{
							"type":        "string",
							"description": "Optional date in YYYY-MM-DD format (default: today)",
						},
					},
				},
			},
			Group:   Group,
			Execute: c.executeAstronomyPhoto,
		},
		{
			Tool: mcp.Tool{
				Name:        "get_mars_rover_photos",
				Description: "Get photos from Mars rovers (Curiosity, Opportunity, Spirit, Perseverance).",
				Annotations: &mcp.ToolAnnotations{Title: "Mars Rover Photos"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"rover": map[string]any{
							"type":        "string",
							"description": "Rover name: 'curiosity', 'opportunity', 'spirit', or 'perseverance'",
						},
						"sol": map[string]any{
							"type":        "integer",
							"description": "Martian sol (day) number",
						},
						"earth_date": map[string]any{
							"type":        "string",
							"description": "Earth date in YYYY-MM-DD format (alternative to sol)",
						},
						"camera": map[string]any{
							"type":        "string",
							"description": "Optional camera name (e.g., 'FHAZ', 'RHAZ', 'MAST', 'NAVCAM')",
						},
					},
				},
			},
			Group:   Group,
			Execute: c.executeMarsRoverPhotos,
		},
		{
			Tool: mcp.Tool{
				Name:        "search_nasa_images",
				Description: "Search NASA's image and video library.",
				Annotations: &mcp.ToolAnnotations{Title: "NASA Image Search"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Search terms (e.g., 'apollo 11', 'mars', 'hubble')",
						},
						"media_type": map[string]any{
							"type":        "string",
							"description": "Type of media: 'image', 'video', or 'audio'",
						},
					},
					"required": []string{"query"},
				},
			},
			Group:   Group,
			Execute: c.executeSearchImages,
		},
		{
			Tool: mcp.Tool{
				Name:        "query_nasa",
				Description: "Make a raw query to the NASA API. The api_key parameter is added automatically.",
				Annotations: &mcp.ToolAnnotations{Title: "Query NASA"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"endpoint": map[string]any{
							"type":        "string",
							"description": "API endpoint (e.g., '/planetary/apod', '/neo/rest/v1/feed')",
						},
						"params": map[string]any{
							"type":        "object",
							"description": "Query parameters",
						},
					},
					"required": []string{"endpoint"},
				},
			},
			Group:   Group,
			Execute: c.executeQuery,
		},
	}
}

func (c *Client) executeAstronomyPhoto(ctx context.Context, input map[string]any) (*tools.Result, error) {
	date, _ := tools.ReadString(input, "date", false)
	text, err := c.AstronomyPhoto(ctx, date)
	if err != nil {
		return tools.ErrorResult("get_astronomy_photo", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// AstronomyPhoto fetches the APOD entry for a date (today when empty).
func (c *Client) AstronomyPhoto(ctx context.Context, date string) (string, error) {
	params := url.Values{"api_key": {c.apiKey()}}
	if date != "" {
		params.Set("date", date)
	}

	value, err := c.gw.FetchJSON(ctx, c.cfg.NASA.BaseURL+"/planetary/apod", params)
	if err != nil {
		return "", err
	}

	payload := asObject(value)
	mediaType := jsonsafe.StringOr(payload, "media_type", "image")
	label := "Image"
	if mediaType != "image" {
		label = "Video"
	}

	return fmt.Sprintf("**%s**\nDate: %s\n\n%s\n\n%s: %s",
		jsonsafe.String(payload, "title"),
		jsonsafe.String(payload, "date"),
		jsonsafe.String(payload, "explanation"),
		label,
		jsonsafe.StringOr(payload, "url", "N/A"),
	), nil
}

func (c *Client) executeMarsRoverPhotos(ctx context.Context, input map[string]any) (*tools.Result, error) {
	rover := strings.ToLower(tools.ReadStringDefault(input, "rover", "curiosity"))
	earthDate, _ := tools.ReadString(input, "earth_date", false)
	camera, _ := tools.ReadString(input, "camera", false)

	params := url.Values{"api_key": {c.apiKey()}}
	switch {
	case tools.HasKey(input, "sol"):
		sol, err := tools.ReadInt(input, "sol", true)
		if err != nil {
			return tools.ErrorResult("get_mars_rover_photos", err.Error()), nil
		}
		params.Set("sol", strconv.Itoa(sol))
	case earthDate != "":
		params.Set("earth_date", earthDate)
	default:
		// A recent sol with broad coverage for Curiosity.
		params.Set("sol", strconv.Itoa(defaultRoverSol))
	}
	if camera != "" {
		params.Set("camera", strings.ToLower(camera))
	}

	text, err := c.MarsRoverPhotos(ctx, rover, params)
	if err != nil {
		return tools.ErrorResult("get_mars_rover_photos", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// MarsRoverPhotos lists photos for a rover with prepared query parameters.
func (c *Client) MarsRoverPhotos(ctx context.Context, rover string, params url.Values) (string, error) {
	endpoint := fmt.Sprintf("%s/mars-photos/api/v1/rovers/%s/photos", c.cfg.NASA.BaseURL, rover)
	value, err := c.gw.FetchJSON(ctx, endpoint, params)
	if err != nil {
		return "", err
	}

	photos := jsonsafe.Slice(asObject(value), "photos")
	if len(photos) == 0 {
		return fmt.Sprintf("No photos found for %s with the specified parameters", rover), nil
	}

	sections := []string{
		fmt.Sprintf("**Mars Rover Photos - %s**\n", capitalize(rover)),
		fmt.Sprintf("Found %d photos\n", len(photos)),
	}
	for i, entry := range photos {
		if i >= maxPhotos {
			break
		}
		photo := asObject(entry)
		sections = append(sections, fmt.Sprintf(
			"- Camera: %s\n  Sol: %d | Earth Date: %s\n  URL: %s",
			jsonsafe.String(jsonsafe.Map(photo, "camera"), "full_name"),
			jsonsafe.Int(photo, "sol"),
			jsonsafe.String(photo, "earth_date"),
			jsonsafe.String(photo, "img_src"),
		))
	}
	return strings.Join(sections, "\n\n"), nil
}

func (c *Client) executeSearchImages(ctx context.Context, input map[string]any) (*tools.Result, error) {
	query, err := tools.ReadString(input, "query", true)
	if err != nil {
		return tools.ErrorResult("search_nasa_images", err.Error()), nil
	}
	mediaType := tools.ReadStringDefault(input, "media_type", "image")

	text, err := c.SearchImages(ctx, query, mediaType)
	if err != nil {
		return tools.ErrorResult("search_nasa_images", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// SearchImages searches the NASA image/video library, a separate unkeyed
// host from the main API.
func (c *Client) SearchImages(ctx context.Context, query, mediaType string) (string, error) {
	params := url.Values{"q": {query}, "media_type": {mediaType}}
	value, err := c.gw.FetchJSON(ctx, c.cfg.NASA.ImagesBaseURL+"/search", params)
	if err != nil {
		return "", err
	}

	items := jsonsafe.Slice(jsonsafe.Map(asObject(value), "collection"), "items")
	if len(items) == 0 {
		return fmt.Sprintf("No results found for '%s'", query), nil
	}

	sections := []string{
		fmt.Sprintf("**NASA Image Search: '%s'**\n", query),
		fmt.Sprintf("Found %d results\n", len(items)),
	}
	for i, entry := range items {
		if i >= maxSearchItems {
			break
		}
		item := asObject(entry)
		itemData := asObject(firstOf(jsonsafe.Slice(item, "data")))
		preview := jsonsafe.StringOr(asObject(firstOf(jsonsafe.Slice(item, "links"))), "href", "N/A")

		created := jsonsafe.StringOr(itemData, "date_created", "N/A")
		sections = append(sections, fmt.Sprintf(
			"**%s**\nDate: %s\nDescription: %s...\nPreview: %s",
			jsonsafe.StringOr(itemData, "title", "Untitled"),
			stringutil.Truncate(created, 10),
			stringutil.Truncate(jsonsafe.StringOr(itemData, "description", "N/A"), maxDescription),
			preview,
		))
	}
	return strings.Join(sections, "\n\n---\n\n"), nil
}

func (c *Client) executeQuery(ctx context.Context, input map[string]any) (*tools.Result, error) {
	endpoint, err := tools.ReadString(input, "endpoint", true)
	if err != nil {
		return tools.ErrorResult("query_nasa", err.Error()), nil
	}
	rawParams, err := tools.ReadMap(input, "params", false)
	if err != nil {
		return tools.ErrorResult("query_nasa", err.Error()), nil
	}

	params := gateway.QueryValues(rawParams)
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey())

	value, err := c.gw.FetchJSON(ctx, c.cfg.NASA.BaseURL+endpoint, params)
	if err != nil {
		return tools.ErrorResult("query_nasa", err.Error()), nil
	}
	return tools.JSONResult(value), nil
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func firstOf(items []any) any {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
