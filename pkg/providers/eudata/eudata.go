// Package eudata exposes dataset discovery tools over the EU Open Data
// Portal search API. Portal metadata is multilingual: string fields may
// arrive either as plain strings or as language-code maps.
package eudata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opencivic/civicmcp/pkg/config"
	"github.com/opencivic/civicmcp/pkg/gateway"
	"github.com/opencivic/civicmcp/pkg/shared/jsonsafe"
	"github.com/opencivic/civicmcp/pkg/shared/stringutil"
	"github.com/opencivic/civicmcp/pkg/tools"
)

// Group is the registry group for EU Open Data tools.
const Group = "eudata"

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	maxDistributions   = 10
	maxDescription     = 200
)

// Client adapts EU Open Data tool invocations into gateway fetches.
type Client struct {
	gw  *gateway.Client
	cfg *config.Config
}

// New creates an EU Open Data provider backed by the shared gateway.
func New(gw *gateway.Client, cfg *config.Config) *Client {
	return &Client{gw: gw, cfg: cfg}
}

// Tools returns the EU Open Data tool definitions.
func (c *Client) Tools() []*tools.Tool {
	return []*tools.Tool{
		{
			Tool: mcp.Tool{
				Name:        "search_eu_datasets",
				Description: "Search for datasets on the EU Open Data Portal by keyword.",
				Annotations: &mcp.ToolAnnotations{Title: "Search EU Datasets"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Search keywords",
						},
						"limit": map[string]any{
							"type":        "integer",
							"description": "Number of results to return (max 50, default 10)",
						},
					},
					"required": []string{"query"},
				},
			},
			Group:   Group,
			Execute: c.executeSearch,
		},
		{
			Tool: mcp.Tool{
				Name:        "get_eu_dataset_info",
				Description: "Get detailed metadata and distribution listing for an EU Open Data Portal dataset.",
				Annotations: &mcp.ToolAnnotations{Title: "EU Dataset Info"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"dataset_id": map[string]any{
							"type":        "string",
							"description": "Dataset ID from search results",
						},
					},
					"required": []string{"dataset_id"},
				},
			},
			Group:   Group,
			Execute: c.executeDatasetInfo,
		},
		{
			Tool: mcp.Tool{
				Name:        "query_eu_data",
				Description: "Make a raw query to the EU Open Data Portal search API.",
				Annotations: &mcp.ToolAnnotations{Title: "Query EU Open Data"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"endpoint": map[string]any{
							"type":        "string",
							"description": "API endpoint path (e.g., 'datasets', 'catalogues')",
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

// langString resolves a possibly multilingual field. Plain strings pass
// through; language maps prefer "en", then fall back to any entry, then
// to the provided fallback.
func langString(value any, fallback string) string {
	switch v := value.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if en, ok := v["en"].(string); ok && en != "" {
			return en
		}
		for _, entry := range v {
			if s, ok := entry.(string); ok && s != "" {
				return s
			}
		}
	}
	return fallback
}

func (c *Client) executeSearch(ctx context.Context, input map[string]any) (*tools.Result, error) {
	query, err := tools.ReadString(input, "query", true)
	if err != nil {
		return tools.ErrorResult("search_eu_datasets", err.Error()), nil
	}
	limit := tools.ReadIntDefault(input, "limit", defaultSearchLimit)
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	text, err := c.Search(ctx, query, limit)
	if err != nil {
		return tools.ErrorResult("search_eu_datasets", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// Search runs a dataset search and renders the result list.
func (c *Client) Search(ctx context.Context, query string, limit int) (string, error) {
	params := url.Values{
		"q":     {query},
		"limit": {fmt.Sprintf("%d", limit)},
	}
	value, err := c.gw.FetchJSON(ctx, c.cfg.EUData.BaseURL+"/datasets", params)
	if err != nil {
		return "", err
	}

	result := jsonsafe.Map(asObject(value), "result")
	total := jsonsafe.Int(result, "count")
	datasets := jsonsafe.Slice(result, "results")
	if len(datasets) == 0 {
		return fmt.Sprintf("No EU datasets found for '%s'", query), nil
	}

	sections := []string{
		fmt.Sprintf("**EU Open Data Search: '%s'**", query),
		fmt.Sprintf("Found %d datasets (showing %d)\n", total, len(datasets)),
	}
	for _, raw := range datasets {
		dataset := asObject(raw)
		publisher := jsonsafe.String(jsonsafe.Map(dataset, "publisher"), "name")
		if publisher == "" {
			publisher = "Unknown"
		}
		desc := stringutil.Truncate(langString(dataset["description"], "No description"), maxDescription)
		sections = append(sections, fmt.Sprintf("**%s**\nPublisher: %s\nID: `%s`\n%s...",
			langString(dataset["title"], "Untitled"),
			publisher,
			jsonsafe.String(dataset, "id"),
			desc))
	}
	return strings.Join(sections, "\n\n---\n\n"), nil
}

func (c *Client) executeDatasetInfo(ctx context.Context, input map[string]any) (*tools.Result, error) {
	datasetID, err := tools.ReadString(input, "dataset_id", true)
	if err != nil {
		return tools.ErrorResult("get_eu_dataset_info", err.Error()), nil
	}

	text, err := c.DatasetInfo(ctx, datasetID)
	if err != nil {
		return tools.ErrorResult("get_eu_dataset_info", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// DatasetInfo renders full metadata for one dataset, including its
// distributions.
func (c *Client) DatasetInfo(ctx context.Context, datasetID string) (string, error) {
	endpoint := fmt.Sprintf("%s/datasets/%s", c.cfg.EUData.BaseURL, url.PathEscape(datasetID))
	value, err := c.gw.FetchJSON(ctx, endpoint, nil)
	if err != nil {
		return "", err
	}

	dataset := jsonsafe.Map(asObject(value), "result")
	if len(dataset) == 0 {
		return fmt.Sprintf("Dataset not found: %s", datasetID), nil
	}

	publisher := jsonsafe.String(jsonsafe.Map(dataset, "publisher"), "name")
	if publisher == "" {
		publisher = "Unknown"
	}
	modified := jsonsafe.StringOr(dataset, "modified", "Unknown")
	if len(modified) > 10 {
		modified = modified[:10]
	}

	lines := []string{
		fmt.Sprintf("**%s**\n", langString(dataset["title"], "Untitled")),
		fmt.Sprintf("Publisher: %s", publisher),
		fmt.Sprintf("Modified: %s", modified),
		fmt.Sprintf("License: %s", jsonsafe.StringOr(dataset, "license", "Unknown")),
		fmt.Sprintf("\n**Description:**\n%s\n", langString(dataset["description"], "No description")),
	}

	distributions := jsonsafe.Slice(dataset, "distributions")
	if len(distributions) > 0 {
		lines = append(lines, "**Available Distributions:**")
		if len(distributions) > maxDistributions {
			distributions = distributions[:maxDistributions]
		}
		for _, raw := range distributions {
			dist := asObject(raw)
			lines = append(lines, fmt.Sprintf("- [%s] %s\n  %s",
				jsonsafe.StringOr(dist, "format", "Unknown"),
				langString(dist["title"], "Unnamed"),
				jsonsafe.StringOr(dist, "accessUrl", "N/A")))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Client) executeQuery(ctx context.Context, input map[string]any) (*tools.Result, error) {
	endpoint, err := tools.ReadString(input, "endpoint", true)
	if err != nil {
		return tools.ErrorResult("query_eu_data", err.Error()), nil
	}
	rawParams, err := tools.ReadMap(input, "params", false)
	if err != nil {
		return tools.ErrorResult("query_eu_data", err.Error()), nil
	}

	value, err := c.gw.FetchJSON(ctx, c.cfg.EUData.BaseURL+"/"+strings.TrimPrefix(endpoint, "/"), gateway.QueryValues(rawParams))
	if err != nil {
		return tools.ErrorResult("query_eu_data", err.Error()), nil
	}
	return tools.JSONResult(value), nil
}

func asObject(value any) map[string]any {
	obj, _ := value.(map[string]any)
	return obj
}
