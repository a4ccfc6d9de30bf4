// Package census exposes the US Census American Community Survey tools:
// population, demographics, and housing statistics by state or county.
package census

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opencivic/civicmcp/pkg/config"
	"github.com/opencivic/civicmcp/pkg/gateway"
	"github.com/opencivic/civicmcp/pkg/shared/jsonsafe"
	"github.com/opencivic/civicmcp/pkg/tools"
)

// Group is the registry group for census tools.
const Group = "census"

const (
	// acsYear pins the American Community Survey 5-year estimates vintage.
	acsYear = "2022"

	maxPopulationRows = 20
)

// Client adapts census tool invocations into gateway fetches.
type Client struct {
	gw  *gateway.Client
	cfg *config.Config
}

// New creates a census provider backed by the shared gateway.
func New(gw *gateway.Client, cfg *config.Config) *Client {
	return &Client{gw: gw, cfg: cfg}
}

// Tools returns the census tool definitions.
func (c *Client) Tools() []*tools.Tool {
	stateProp := map[string]any{
		"type":        "string",
		"description": "Two-letter state code (e.g., 'CA', 'TX') or state FIPS code",
	}
	return []*tools.Tool{
		{
			Tool: mcp.Tool{
				Name:        "get_population",
				Description: "Get population data for a US state or county from the American Community Survey.",
				Annotations: &mcp.ToolAnnotations{Title: "Population"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"state": stateProp,
						"county": map[string]any{
							"type":        "string",
							"description": "Optional county name or FIPS code; when set, all counties in the state are listed",
						},
					},
					"required": []string{"state"},
				},
			},
			Group:   Group,
			Execute: c.executePopulation,
		},
		{
			Tool: mcp.Tool{
				Name:        "get_demographics",
				Description: "Get age, race, and income demographics for a US state or county from the American Community Survey.",
				Annotations: &mcp.ToolAnnotations{Title: "Demographics"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"state": stateProp,
						"county": map[string]any{
							"type":        "string",
							"description": "Optional county FIPS code (3 digits)",
						},
					},
					"required": []string{"state"},
				},
			},
			Group:   Group,
			Execute: c.executeDemographics,
		},
		{
			Tool: mcp.Tool{
				Name:        "get_housing_stats",
				Description: "Get housing statistics for a US state or county: median values, rent, and vacancy rates.",
				Annotations: &mcp.ToolAnnotations{Title: "Housing Statistics"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"state": stateProp,
						"county": map[string]any{
							"type":        "string",
							"description": "Optional county FIPS code (3 digits)",
						},
					},
					"required": []string{"state"},
				},
			},
			Group:   Group,
			Execute: c.executeHousing,
		},
		{
			Tool: mcp.Tool{
				Name:        "query_census",
				Description: "Make a raw query to the Census API.",
				Annotations: &mcp.ToolAnnotations{Title: "Query Census"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"dataset": map[string]any{
							"type":        "string",
							"description": "Dataset path (e.g., 'acs/acs5', 'dec/pl')",
						},
						"variables": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "List of variable codes to retrieve",
						},
						"geo": map[string]any{
							"type":        "string",
							"description": "Geography specification (e.g., 'state:06', 'county:*&in=state:06')",
						},
						"year": map[string]any{
							"type":        "string",
							"description": "Data year (default: 2022)",
						},
					},
					"required": []string{"dataset", "variables", "geo"},
				},
			},
			Group:   Group,
			Execute: c.executeQuery,
		},
	}
}

// acsURL builds an ACS query URL. The geography clause may itself contain
// '&in=' and is appended verbatim, matching the Census query model.
func (c *Client) acsURL(variables, geo string) string {
	return fmt.Sprintf("%s/%s/acs/acs5?get=%s&for=%s", c.cfg.Census.BaseURL, acsYear, variables, geo)
}

// fetchRows fetches an ACS table: the first row holds column headers, the
// rest hold string-encoded values.
func (c *Client) fetchRows(ctx context.Context, url string) ([][]any, error) {
	value, err := c.gw.FetchJSON(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	raw, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected census response shape")
	}
	rows := make([][]any, 0, len(raw))
	for _, entry := range raw {
		if row, ok := entry.([]any); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func geoClause(fips, county string, wildcardCounties bool) string {
	if county == "" {
		return "state:" + fips
	}
	if wildcardCounties {
		return "county:*&in=state:" + fips
	}
	return fmt.Sprintf("county:%s&in=state:%s", county, fips)
}

func (c *Client) executePopulation(ctx context.Context, input map[string]any) (*tools.Result, error) {
	state, err := tools.ReadString(input, "state", true)
	if err != nil {
		return tools.ErrorResult("get_population", err.Error()), nil
	}
	county, _ := tools.ReadString(input, "county", false)

	text, err := c.Population(ctx, state, county)
	if err != nil {
		return tools.ErrorResult("get_population", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// Population lists total population for a state, or for every county in it
// when county is set (the county tools are deliberately inconsistent about
// wildcarding; this one lists all counties).
func (c *Client) Population(ctx context.Context, state, county string) (string, error) {
	fips := StateFIPS(state)
	url := c.acsURL("NAME,B01003_001E", geoClause(fips, county, true))

	rows, err := c.fetchRows(ctx, url)
	if err != nil {
		return "", err
	}
	if len(rows) < 2 {
		return fmt.Sprintf("No population data found for %s", state), nil
	}

	lines := []string{fmt.Sprintf("Population Data (%s ACS 5-Year Estimates):\n", acsYear)}
	for i, row := range rows[1:] {
		if i >= maxPopulationRows {
			break
		}
		name := jsonsafe.AsString(cell(row, 0))
		pop := int64(jsonsafe.AsNumber(cell(row, 1)))
		lines = append(lines, fmt.Sprintf("- %s: %s", name, humanize.Comma(pop)))
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Client) executeDemographics(ctx context.Context, input map[string]any) (*tools.Result, error) {
	state, err := tools.ReadString(input, "state", true)
	if err != nil {
		return tools.ErrorResult("get_demographics", err.Error()), nil
	}
	county, _ := tools.ReadString(input, "county", false)

	text, err := c.Demographics(ctx, state, county)
	if err != nil {
		return tools.ErrorResult("get_demographics", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// Demographics renders the age, income, and race breakdown for a state or
// a specific county.
func (c *Client) Demographics(ctx context.Context, state, county string) (string, error) {
	variables := strings.Join([]string{
		"NAME",
		"B01003_001E", // total population
		"B01002_001E", // median age
		"B19013_001E", // median household income
		"B02001_002E", // white alone
		"B02001_003E", // black alone
		"B02001_005E", // asian alone
		"B03001_003E", // hispanic or latino
	}, ",")

	fips := StateFIPS(state)
	rows, err := c.fetchRows(ctx, c.acsURL(variables, geoClause(fips, county, false)))
	if err != nil {
		return "", err
	}
	if len(rows) < 2 {
		return fmt.Sprintf("No demographic data found for %s", state), nil
	}

	row := rows[1]
	name := jsonsafe.AsString(cell(row, 0))
	totalPop := jsonsafe.AsNumber(cell(row, 1))
	medianAge := jsonsafe.AsNumber(cell(row, 2))
	medianIncome := int64(jsonsafe.AsNumber(cell(row, 3)))
	white := jsonsafe.AsNumber(cell(row, 4))
	black := jsonsafe.AsNumber(cell(row, 5))
	asian := jsonsafe.AsNumber(cell(row, 6))
	hispanic := jsonsafe.AsNumber(cell(row, 7))

	return fmt.Sprintf(
		"**Demographics for %s** (%s ACS 5-Year Estimates)\n\n"+
			"**Population**: %s\n"+
			"**Median Age**: %.1f\n"+
			"**Median Household Income**: $%s\n\n"+
			"**Race/Ethnicity**:\n"+
			"- White: %s (%s)\n"+
			"- Black: %s (%s)\n"+
			"- Asian: %s (%s)\n"+
			"- Hispanic/Latino: %s (%s)",
		name, acsYear,
		humanize.Comma(int64(totalPop)),
		medianAge,
		humanize.Comma(medianIncome),
		humanize.Comma(int64(white)), PercentOfTotal(white, totalPop),
		humanize.Comma(int64(black)), PercentOfTotal(black, totalPop),
		humanize.Comma(int64(asian)), PercentOfTotal(asian, totalPop),
		humanize.Comma(int64(hispanic)), PercentOfTotal(hispanic, totalPop),
	), nil
}

func (c *Client) executeHousing(ctx context.Context, input map[string]any) (*tools.Result, error) {
	state, err := tools.ReadString(input, "state", true)
	if err != nil {
		return tools.ErrorResult("get_housing_stats", err.Error()), nil
	}
	county, _ := tools.ReadString(input, "county", false)

	text, err := c.Housing(ctx, state, county)
	if err != nil {
		return tools.ErrorResult("get_housing_stats", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// Housing renders unit counts, vacancy rate, and median value/rent for a
// state or a specific county.
func (c *Client) Housing(ctx context.Context, state, county string) (string, error) {
	variables := strings.Join([]string{
		"NAME",
		"B25001_001E", // total housing units
		"B25002_002E", // occupied units
		"B25002_003E", // vacant units
		"B25077_001E", // median home value
		"B25064_001E", // median gross rent
	}, ",")

	fips := StateFIPS(state)
	rows, err := c.fetchRows(ctx, c.acsURL(variables, geoClause(fips, county, false)))
	if err != nil {
		return "", err
	}
	if len(rows) < 2 {
		return fmt.Sprintf("No housing data found for %s", state), nil
	}

	row := rows[1]
	name := jsonsafe.AsString(cell(row, 0))
	totalUnits := jsonsafe.AsNumber(cell(row, 1))
	occupied := int64(jsonsafe.AsNumber(cell(row, 2)))
	vacant := jsonsafe.AsNumber(cell(row, 3))
	medianValue := int64(jsonsafe.AsNumber(cell(row, 4)))
	medianRent := int64(jsonsafe.AsNumber(cell(row, 5)))

	vacancyRate := 0.0
	if totalUnits > 0 {
		vacancyRate = vacant / totalUnits * 100
	}

	return fmt.Sprintf(
		"**Housing Statistics for %s** (%s ACS 5-Year Estimates)\n\n"+
			"**Total Housing Units**: %s\n"+
			"**Occupied**: %s\n"+
			"**Vacant**: %s (%.1f%% vacancy rate)\n\n"+
			"**Median Home Value**: $%s\n"+
			"**Median Gross Rent**: $%s/month",
		name, acsYear,
		humanize.Comma(int64(totalUnits)),
		humanize.Comma(occupied),
		humanize.Comma(int64(vacant)), vacancyRate,
		humanize.Comma(medianValue),
		humanize.Comma(medianRent),
	), nil
}

func (c *Client) executeQuery(ctx context.Context, input map[string]any) (*tools.Result, error) {
	dataset, err := tools.ReadString(input, "dataset", true)
	if err != nil {
		return tools.ErrorResult("query_census", err.Error()), nil
	}
	variables, err := tools.ReadStringSlice(input, "variables", true)
	if err != nil {
		return tools.ErrorResult("query_census", err.Error()), nil
	}
	geo, err := tools.ReadString(input, "geo", true)
	if err != nil {
		return tools.ErrorResult("query_census", err.Error()), nil
	}
	year := tools.ReadStringDefault(input, "year", acsYear)

	url := fmt.Sprintf("%s/%s/%s?get=%s&for=%s",
		c.cfg.Census.BaseURL, year, dataset, strings.Join(variables, ","), geo)
	value, err := c.gw.FetchJSON(ctx, url, nil)
	if err != nil {
		return tools.ErrorResult("query_census", err.Error()), nil
	}
	return tools.JSONResult(value), nil
}

// PercentOfTotal formats part as a percentage of total with one decimal,
// returning "N/A" when total is zero.
func PercentOfTotal(part, total float64) string {
	if total == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", part/total*100)
}

func cell(row []any, i int) any {
	if i >= len(row) {
		return nil
	}
	return row[i]
}
