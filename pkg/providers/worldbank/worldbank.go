// Package worldbank exposes the World Bank economic indicator tools:
// per-country indicator summaries and cross-country comparison.
package worldbank

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opencivic/civicmcp/pkg/config"
	"github.com/opencivic/civicmcp/pkg/gateway"
	"github.com/opencivic/civicmcp/pkg/shared/jsonsafe"
	"github.com/opencivic/civicmcp/pkg/tools"
)

// Group is the registry group for World Bank tools.
const Group = "worldbank"

// Indicator codes used for defaults and display names.
const (
	IndicatorGDP          = "NY.GDP.MKTP.CD"
	IndicatorPopulation   = "SP.POP.TOTL"
	IndicatorPoverty      = "SI.POV.DDAY"
	IndicatorGDPPerCapita = "NY.GDP.PCAP.CD"
	IndicatorUnemployment = "SL.UEM.TOTL.ZS"
	IndicatorInflation    = "FP.CPI.TOTL.ZG"
)

var indicatorNames = map[string]string{
	IndicatorGDP:          "GDP (current US$)",
	IndicatorPopulation:   "Population",
	IndicatorPoverty:      "Poverty Rate (% at $2.15/day)",
	IndicatorGDPPerCapita: "GDP per Capita",
	IndicatorUnemployment: "Unemployment Rate (%)",
	IndicatorInflation:    "Inflation Rate (%)",
}

var defaultIndicators = []string{
	IndicatorGDP,
	IndicatorPopulation,
	IndicatorPoverty,
	IndicatorGDPPerCapita,
}

// Client adapts World Bank tool invocations into gateway fetches.
type Client struct {
	gw  *gateway.Client
	cfg *config.Config
}

// New creates a World Bank provider backed by the shared gateway.
func New(gw *gateway.Client, cfg *config.Config) *Client {
	return &Client{gw: gw, cfg: cfg}
}

// Tools returns the World Bank tool definitions.
func (c *Client) Tools() []*tools.Tool {
	return []*tools.Tool{
		{
			Tool: mcp.Tool{
				Name:        "get_country_indicators",
				Description: "Get economic indicators for a country from the World Bank. Defaults to GDP, population, poverty, and GDP per capita.",
				Annotations: &mcp.ToolAnnotations{Title: "Country Indicators"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"country": map[string]any{
							"type":        "string",
							"description": "Country code (e.g., 'USA', 'CHN', 'IND', 'BRA') or name",
						},
						"indicators": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Optional list of indicator codes",
						},
					},
					"required": []string{"country"},
				},
			},
			Group:   Group,
			Execute: c.executeCountryIndicators,
		},
		{
			Tool: mcp.Tool{
				Name:        "compare_countries",
				Description: "Compare an economic indicator across multiple countries, sorted by value.",
				Annotations: &mcp.ToolAnnotations{Title: "Compare Countries"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"countries": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "List of country codes (e.g., ['USA', 'CHN', 'IND'])",
						},
						"indicator": map[string]any{
							"type":        "string",
							"description": "World Bank indicator code (default: GDP)",
						},
					},
					"required": []string{"countries"},
				},
			},
			Group:   Group,
			Execute: c.executeCompareCountries,
		},
		{
			Tool: mcp.Tool{
				Name:        "query_worldbank",
				Description: "Make a raw query to the World Bank API. The format=json parameter is added automatically.",
				Annotations: &mcp.ToolAnnotations{Title: "Query World Bank"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"country": map[string]any{
							"type":        "string",
							"description": "Country code (e.g., 'USA', 'all')",
						},
						"indicator": map[string]any{
							"type":        "string",
							"description": "World Bank indicator code (e.g., 'NY.GDP.MKTP.CD')",
						},
						"params": map[string]any{
							"type":        "object",
							"description": "Additional query parameters",
						},
					},
					"required": []string{"country", "indicator"},
				},
			},
			Group:   Group,
			Execute: c.executeQuery,
		},
	}
}

// fetchLatest fetches the most recent observation of an indicator for a
// country. A nil record means the country has no data for the indicator.
func (c *Client) fetchLatest(ctx context.Context, country, indicator string, perPage int) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/country/%s/indicator/%s", c.cfg.WorldBank.BaseURL, country, indicator)
	params := url.Values{
		"format":   {"json"},
		"per_page": {fmt.Sprintf("%d", perPage)},
		"mrv":      {"1"},
	}
	value, err := c.gw.FetchJSON(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	// Response shape is [metadata, [records...]].
	pages, ok := value.([]any)
	if !ok || len(pages) < 2 {
		return nil, nil
	}
	records, ok := pages[1].([]any)
	if !ok || len(records) == 0 {
		return nil, nil
	}
	record, _ := records[0].(map[string]any)
	return record, nil
}

func (c *Client) executeCountryIndicators(ctx context.Context, input map[string]any) (*tools.Result, error) {
	country, err := tools.ReadString(input, "country", true)
	if err != nil {
		return tools.ErrorResult("get_country_indicators", err.Error()), nil
	}
	indicators, err := tools.ReadStringSlice(input, "indicators", false)
	if err != nil {
		return tools.ErrorResult("get_country_indicators", err.Error()), nil
	}

	return tools.TextResult(c.CountryIndicators(ctx, country, indicators)), nil
}

// CountryIndicators renders the latest value of each indicator for one
// country. Individual indicator failures are reported inline and do not
// abort the rest.
func (c *Client) CountryIndicators(ctx context.Context, country string, indicators []string) string {
	if len(indicators) == 0 {
		indicators = defaultIndicators
	}

	lines := []string{fmt.Sprintf("**Economic Indicators for %s**\n", strings.ToUpper(country))}
	for _, indicator := range indicators {
		name := indicatorName(indicator)
		record, err := c.fetchLatest(ctx, country, indicator, 5)
		if err != nil {
			lines = append(lines, fmt.Sprintf("- %s: Error fetching data", indicator))
			continue
		}
		if record == nil {
			continue
		}
		value, hasValue := record["value"]
		if !hasValue || value == nil {
			lines = append(lines, fmt.Sprintf("- **%s**: No data available", name))
			continue
		}
		lines = append(lines, fmt.Sprintf("- **%s** (%s): %s",
			name, jsonsafe.AsString(record["date"]), formatIndicatorValue(indicator, jsonsafe.AsNumber(value))))
	}
	return strings.Join(lines, "\n")
}

// countryValue is the explicit per-country outcome of the comparison
// fan-out; only successful fetches with non-null values become entries.
type countryValue struct {
	Name  string
	Value float64
	Year  string
}

func (c *Client) executeCompareCountries(ctx context.Context, input map[string]any) (*tools.Result, error) {
	countries, err := tools.ReadStringSlice(input, "countries", true)
	if err != nil {
		return tools.ErrorResult("compare_countries", err.Error()), nil
	}
	indicator := tools.ReadStringDefault(input, "indicator", IndicatorGDP)

	return tools.TextResult(c.CompareCountries(ctx, countries, indicator)), nil
}

// CompareCountries fetches an indicator for each country independently and
// renders the successful entries sorted by value descending. Per-country
// failures are excluded from the aggregate rather than aborting it.
func (c *Client) CompareCountries(ctx context.Context, countries []string, indicator string) string {
	entries := make([]countryValue, 0, len(countries))
	for _, country := range countries {
		record, err := c.fetchLatest(ctx, country, indicator, 1)
		if err != nil || record == nil {
			continue
		}
		value, ok := record["value"]
		if !ok || value == nil {
			continue
		}
		name := jsonsafe.String(jsonsafe.Map(record, "country"), "value")
		if name == "" {
			name = country
		}
		entries = append(entries, countryValue{
			Name:  name,
			Value: jsonsafe.AsNumber(value),
			Year:  jsonsafe.AsString(record["date"]),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})

	lines := []string{fmt.Sprintf("**Comparing %s**\n", indicatorName(indicator))}
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)",
			entry.Name, formatCompact(indicator, entry.Value), entry.Year))
	}
	return strings.Join(lines, "\n")
}

func (c *Client) executeQuery(ctx context.Context, input map[string]any) (*tools.Result, error) {
	country, err := tools.ReadString(input, "country", true)
	if err != nil {
		return tools.ErrorResult("query_worldbank", err.Error()), nil
	}
	indicator, err := tools.ReadString(input, "indicator", true)
	if err != nil {
		return tools.ErrorResult("query_worldbank", err.Error()), nil
	}
	rawParams, err := tools.ReadMap(input, "params", false)
	if err != nil {
		return tools.ErrorResult("query_worldbank", err.Error()), nil
	}

	params := gateway.QueryValues(rawParams)
	if params == nil {
		params = url.Values{}
	}
	params.Set("format", "json")

	endpoint := fmt.Sprintf("%s/country/%s/indicator/%s", c.cfg.WorldBank.BaseURL, country, indicator)
	value, err := c.gw.FetchJSON(ctx, endpoint, params)
	if err != nil {
		return tools.ErrorResult("query_worldbank", err.Error()), nil
	}
	return tools.JSONResult(value), nil
}

func indicatorName(indicator string) string {
	if name, ok := indicatorNames[indicator]; ok {
		return name
	}
	return indicator
}

// formatIndicatorValue renders a value with the unit conventions of the
// indicator: trillions for GDP, millions for population, percent for
// rates, grouped dollars for per-capita figures.
func formatIndicatorValue(indicator string, value float64) string {
	switch indicator {
	case IndicatorGDP:
		return fmt.Sprintf("$%.2f trillion", value/1e12)
	case IndicatorPopulation:
		return fmt.Sprintf("%.1f million", value/1e6)
	case IndicatorPoverty, IndicatorUnemployment, IndicatorInflation:
		return fmt.Sprintf("%.1f%%", value)
	case IndicatorGDPPerCapita:
		return "$" + humanize.Comma(int64(math.Round(value)))
	}
	return humanize.FormatFloat("#,###.##", value)
}

// formatCompact renders the short comparison-table form of a value.
func formatCompact(indicator string, value float64) string {
	switch indicator {
	case IndicatorGDP:
		return fmt.Sprintf("$%.2fT", value/1e12)
	case IndicatorPopulation:
		return fmt.Sprintf("%.1fM", value/1e6)
	case IndicatorGDPPerCapita:
		return "$" + humanize.Comma(int64(math.Round(value)))
	}
	return humanize.FormatFloat("#,###.##", value)
}
