// Package weather exposes the NOAA and OpenWeather tools: US forecasts and
// alerts plus key-gated global city weather.
package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opencivic/civicmcp/pkg/config"
	"github.com/opencivic/civicmcp/pkg/gateway"
	"github.com/opencivic/civicmcp/pkg/shared/jsonsafe"
	"github.com/opencivic/civicmcp/pkg/tools"
)

// Group is the registry group for weather tools.
const Group = "weather"

const (
	forecastPeriods = 6
	maxAlerts       = 10

	openWeatherDenial = "Error: OpenWeather tools require OPENWEATHER_API_KEY environment variable"
)

// Client adapts weather tool invocations into gateway fetches.
type Client struct {
	gw  *gateway.Client
	cfg *config.Config
}

// New creates a weather provider backed by the shared gateway.
func New(gw *gateway.Client, cfg *config.Config) *Client {
	return &Client{gw: gw, cfg: cfg}
}

// Tools returns all weather tool definitions.
func (c *Client) Tools() []*tools.Tool {
	return append(c.NOAATools(), c.OpenWeatherTools()...)
}

// NOAATools returns the tools backed by the NOAA Weather API.
func (c *Client) NOAATools() []*tools.Tool {
	return []*tools.Tool{
		{
			Tool: mcp.Tool{
				Name:        "get_weather_forecast",
				Description: "Get weather forecast for a US location by coordinates. Returns current conditions and 7-day forecast from NOAA.",
				Annotations: &mcp.ToolAnnotations{Title: "Weather Forecast"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"latitude": map[string]any{
							"type":        "number",
							"description": "Latitude of the location (e.g., 38.8894 for Washington DC)",
						},
						"longitude": map[string]any{
							"type":        "number",
							"description": "Longitude of the location (e.g., -77.0352 for Washington DC)",
						},
					},
					"required": []string{"latitude", "longitude"},
				},
			},
			Group:   Group,
			Execute: c.executeForecast,
		},
		{
			Tool: mcp.Tool{
				Name:        "get_weather_alerts",
				Description: "Get active weather alerts for a US state.",
				Annotations: &mcp.ToolAnnotations{Title: "Weather Alerts"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"state": map[string]any{
							"type":        "string",
							"description": "Two-letter state code (e.g., 'CA', 'TX', 'NY')",
						},
					},
					"required": []string{"state"},
				},
			},
			Group:   Group,
			Execute: c.executeAlerts,
		},
		{
			Tool: mcp.Tool{
				Name:        "query_noaa",
				Description: "Make a raw query to the NOAA Weather API.",
				Annotations: &mcp.ToolAnnotations{Title: "Query NOAA"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"endpoint": map[string]any{
							"type":        "string",
							"description": "API endpoint path (e.g., '/points/38.8894,-77.0352', '/alerts/active')",
						},
						"params": map[string]any{
							"type":        "object",
							"description": "Optional query parameters",
						},
					},
					"required": []string{"endpoint"},
				},
			},
			Group:   Group,
			Execute: c.executeQueryNOAA,
		},
	}
}

// OpenWeatherTools returns the key-gated tools backed by the OpenWeather
// API.
func (c *Client) OpenWeatherTools() []*tools.Tool {
	return []*tools.Tool{
		{
			Tool: mcp.Tool{
				Name:        "get_global_weather",
				Description: "Get current weather for any city worldwide (requires OPENWEATHER_API_KEY).",
				Annotations: &mcp.ToolAnnotations{Title: "Global Weather"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"city": map[string]any{
							"type":        "string",
							"description": "City name (e.g., 'London', 'Tokyo', 'Paris')",
						},
						"country_code": map[string]any{
							"type":        "string",
							"description": "Optional 2-letter country code (e.g., 'GB', 'JP', 'FR')",
						},
					},
					"required": []string{"city"},
				},
			},
			Group:   Group,
			Execute: c.executeGlobalWeather,
		},
		{
			Tool: mcp.Tool{
				Name:        "query_openweather",
				Description: "Make a raw query to the OpenWeather API (requires OPENWEATHER_API_KEY). The appid parameter is added automatically.",
				Annotations: &mcp.ToolAnnotations{Title: "Query OpenWeather"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"endpoint": map[string]any{
							"type":        "string",
							"description": "API endpoint (e.g., '/data/2.5/weather', '/data/2.5/forecast')",
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
			Execute: c.executeQueryOpenWeather,
		},
	}
}

func (c *Client) executeForecast(ctx context.Context, input map[string]any) (*tools.Result, error) {
	lat, err := tools.ReadNumber(input, "latitude", true)
	if err != nil {
		return tools.ErrorResult("get_weather_forecast", err.Error()), nil
	}
	lon, err := tools.ReadNumber(input, "longitude", true)
	if err != nil {
		return tools.ErrorResult("get_weather_forecast", err.Error()), nil
	}

	text, err := c.Forecast(ctx, lat, lon)
	if err != nil {
		return tools.ErrorResult("get_weather_forecast", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// Forecast resolves the NOAA grid endpoint for a coordinate and fetches
// the forecast at it (a one-level dependent fetch chain).
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (string, error) {
	coords := formatCoord(lat) + "," + formatCoord(lon)
	pointsURL := c.cfg.NOAA.BaseURL + "/points/" + coords
	pointsValue, err := c.gw.FetchJSON(ctx, pointsURL, nil)
	if err != nil {
		return "", err
	}

	forecastURL := jsonsafe.String(jsonsafe.Map(asObject(pointsValue), "properties"), "forecast")
	if forecastURL == "" {
		return "", fmt.Errorf("no forecast endpoint for %s", coords)
	}

	forecastValue, err := c.gw.FetchJSON(ctx, forecastURL, nil)
	if err != nil {
		return "", err
	}

	periods := jsonsafe.Slice(jsonsafe.Map(asObject(forecastValue), "properties"), "periods")
	sections := []string{fmt.Sprintf("Weather forecast for %s, %s:\n", formatCoord(lat), formatCoord(lon))}
	for _, entry := range periods {
		if len(sections) > forecastPeriods {
			break
		}
		period := asObject(entry)
		sections = append(sections, fmt.Sprintf("**%s**: %s",
			jsonsafe.String(period, "name"), jsonsafe.String(period, "detailedForecast")))
	}
	return strings.Join(sections, "\n\n"), nil
}

func (c *Client) executeAlerts(ctx context.Context, input map[string]any) (*tools.Result, error) {
	state, err := tools.ReadString(input, "state", true)
	if err != nil {
		return tools.ErrorResult("get_weather_alerts", err.Error()), nil
	}

	state = strings.ToUpper(state)
	if len(state) != 2 {
		return tools.ErrorResult("get_weather_alerts", "Error: State must be a 2-letter code (e.g., 'CA', 'TX')"), nil
	}

	text, err := c.Alerts(ctx, state)
	if err != nil {
		return tools.ErrorResult("get_weather_alerts", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// Alerts fetches active alerts for an uppercased two-letter state code.
func (c *Client) Alerts(ctx context.Context, state string) (string, error) {
	value, err := c.gw.FetchJSON(ctx, c.cfg.NOAA.BaseURL+"/alerts/active", urlValues("area", state))
	if err != nil {
		return "", err
	}

	alerts := jsonsafe.Slice(asObject(value), "features")
	if len(alerts) == 0 {
		return fmt.Sprintf("No active weather alerts for %s", state), nil
	}

	sections := []string{fmt.Sprintf("Active weather alerts for %s:\n", state)}
	for i, entry := range alerts {
		if i >= maxAlerts {
			break
		}
		props := jsonsafe.Map(asObject(entry), "properties")
		sections = append(sections, fmt.Sprintf("**%s** (%s)\nAreas: %s\n%s",
			jsonsafe.String(props, "event"),
			jsonsafe.String(props, "severity"),
			jsonsafe.StringOr(props, "areaDesc", "N/A"),
			jsonsafe.String(props, "headline")))
	}
	return strings.Join(sections, "\n\n---\n\n"), nil
}

func (c *Client) executeGlobalWeather(ctx context.Context, input map[string]any) (*tools.Result, error) {
	// Gated tool: deny before any network call when the key is missing.
	if !c.cfg.HasOpenWeather() {
		return tools.TextResult(openWeatherDenial), nil
	}

	city, err := tools.ReadString(input, "city", true)
	if err != nil {
		return tools.ErrorResult("get_global_weather", err.Error()), nil
	}
	countryCode, _ := tools.ReadString(input, "country_code", false)

	text, err := c.GlobalWeather(ctx, city, countryCode)
	if err != nil {
		return tools.ErrorResult("get_global_weather", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// GlobalWeather fetches current conditions for a city from OpenWeather.
func (c *Client) GlobalWeather(ctx context.Context, city, countryCode string) (string, error) {
	query := city
	if countryCode != "" {
		query = city + "," + countryCode
	}
	params := urlValues("q", query)
	params.Set("appid", c.cfg.OpenWeather.APIKey)
	params.Set("units", "metric")

	value, err := c.gw.FetchJSON(ctx, c.cfg.OpenWeather.BaseURL+"/data/2.5/weather", params)
	if err != nil {
		return "", err
	}

	payload := asObject(value)
	conditions := asObject(first(jsonsafe.Slice(payload, "weather")))
	main := jsonsafe.Map(payload, "main")
	wind := jsonsafe.Map(payload, "wind")

	windSpeed := "N/A"
	if _, ok := wind["speed"]; ok {
		windSpeed = formatCoord(jsonsafe.Number(wind, "speed"))
	}

	return fmt.Sprintf(
		"**Weather in %s, %s**\n\n"+
			"Conditions: %s\n"+
			"Temperature: %s°C (feels like %s°C)\n"+
			"Humidity: %d%%\n"+
			"Wind: %s m/s\n"+
			"Pressure: %d hPa",
		jsonsafe.String(payload, "name"),
		jsonsafe.String(jsonsafe.Map(payload, "sys"), "country"),
		capitalize(jsonsafe.String(conditions, "description")),
		formatCoord(jsonsafe.Number(main, "temp")),
		formatCoord(jsonsafe.Number(main, "feels_like")),
		jsonsafe.Int(main, "humidity"),
		windSpeed,
		jsonsafe.Int(main, "pressure"),
	), nil
}

func (c *Client) executeQueryNOAA(ctx context.Context, input map[string]any) (*tools.Result, error) {
	endpoint, err := tools.ReadString(input, "endpoint", true)
	if err != nil {
		return tools.ErrorResult("query_noaa", err.Error()), nil
	}
	params, err := tools.ReadMap(input, "params", false)
	if err != nil {
		return tools.ErrorResult("query_noaa", err.Error()), nil
	}

	value, err := c.gw.FetchJSON(ctx, c.cfg.NOAA.BaseURL+endpoint, gateway.QueryValues(params))
	if err != nil {
		return tools.ErrorResult("query_noaa", err.Error()), nil
	}
	return tools.JSONResult(value), nil
}

func (c *Client) executeQueryOpenWeather(ctx context.Context, input map[string]any) (*tools.Result, error) {
	if !c.cfg.HasOpenWeather() {
		return tools.JSONResult(map[string]any{
			"error": "OpenWeather requires OPENWEATHER_API_KEY environment variable",
		}), nil
	}

	endpoint, err := tools.ReadString(input, "endpoint", true)
	if err != nil {
		return tools.ErrorResult("query_openweather", err.Error()), nil
	}
	params, err := tools.ReadMap(input, "params", false)
	if err != nil {
		return tools.ErrorResult("query_openweather", err.Error()), nil
	}

	values := gateway.QueryValues(params)
	if values == nil {
		values = urlValues("appid", c.cfg.OpenWeather.APIKey)
	} else {
		values.Set("appid", c.cfg.OpenWeather.APIKey)
	}

	value, err := c.gw.FetchJSON(ctx, c.cfg.OpenWeather.BaseURL+endpoint, values)
	if err != nil {
		return tools.ErrorResult("query_openweather", err.Error()), nil
	}
	return tools.JSONResult(value), nil
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func first(items []any) any {
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func urlValues(key, value string) url.Values {
	return url.Values{key: {value}}
}
