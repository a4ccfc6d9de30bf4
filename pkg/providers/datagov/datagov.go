// Package datagov exposes dataset discovery tools over the Data.gov CKAN
// catalog API.
package datagov

import (
	"context"
	"errors"
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

// Group is the registry group for Data.gov tools.
const Group = "datagov"

const (
	defaultSearchRows = 10
	maxSearchRows     = 50
	maxResources      = 10
	maxNotes          = 200
)

// Client adapts Data.gov tool invocations into gateway fetches.
type Client struct {
	gw  *gateway.Client
	cfg *config.Config
}

// New creates a Data.gov provider backed by the shared gateway.
func New(gw *gateway.Client, cfg *config.Config) *Client {
	return &Client{gw: gw, cfg: cfg}
}

// Tools returns the Data.gov tool definitions.
func (c *Client) Tools() []*tools.Tool {
	return []*tools.Tool{
		{
			Tool: mcp.Tool{
				Name:        "search_datasets",
				Description: "Search for datasets on Data.gov by keyword.",
				Annotations: &mcp.ToolAnnotations{Title: "Search Data.gov"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Search keywords (e.g., 'climate change', 'census')",
						},
						"rows": map[string]any{
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
				Name:        "get_dataset_info",
				Description: "Get detailed metadata and resource listing for a Data.gov dataset.",
				Annotations: &mcp.ToolAnnotations{Title: "Dataset Info"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"dataset_id": map[string]any{
							"type":        "string",
							"description": "Dataset ID or name from search results",
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
				Name:        "query_datagov",
				Description: "Make a raw query to a Data.gov CKAN API action endpoint.",
				Annotations: &mcp.ToolAnnotations{Title: "Query Data.gov"},
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"action": map[string]any{
							"type":        "string",
							"description": "CKAN action name (e.g., 'package_search', 'organization_list')",
						},
						"params": map[string]any{
							"type":        "object",
							"description": "Query parameters for the action",
						},
					},
					"required": []string{"action"},
				},
			},
			Group:   Group,
			Execute: c.executeQuery,
		},
	}
}

func (c *Client) actionURL(action string) string {
	return fmt.Sprintf("%s/action/%s", c.cfg.DataGov.BaseURL, action)
}

func (c *Client) executeSearch(ctx context.Context, input map[string]any) (*tools.Result, error) {
	query, err := tools.ReadString(input, "query", true)
	if err != nil {
		return tools.ErrorResult("search_datasets", err.Error()), nil
	}
	rows := tools.ReadIntDefault(input, "rows", defaultSearchRows)
	if rows > maxSearchRows {
		rows = maxSearchRows
	}

	text, err := c.Search(ctx, query, rows)
	if err != nil {
		return tools.ErrorResult("search_datasets", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// Search runs a CKAN package_search and renders the result list.
func (c *Client) Search(ctx context.Context, query string, rows int) (string, error) {
	params := url.Values{
		"q":    {query},
		"rows": {fmt.Sprintf("%d", rows)},
	}
	value, err := c.gw.FetchJSON(ctx, c.actionURL("package_search"), params)
	if err != nil {
		return "", err
	}

	result := jsonsafe.Map(asObject(value), "result")
	total := jsonsafe.Int(result, "count")
	datasets := jsonsafe.Slice(result, "results")
	if len(datasets) == 0 {
		return fmt.Sprintf("No datasets found for '%s'", query), nil
	}

	sections := []string{
		fmt.Sprintf("**Data.gov Search: '%s'**", query),
		fmt.Sprintf("Found %d datasets (showing %d)\n", total, len(datasets)),
	}
	for _, raw := range datasets {
		dataset := asObject(raw)
		org := jsonsafe.String(jsonsafe.Map(dataset, "organization"), "title")
		if org == "" {
			org = "Unknown"
		}
		notes := stringutil.Truncate(jsonsafe.StringOr(dataset, "notes", "No description"), maxNotes)
		sections = append(sections, fmt.Sprintf("**%s**\nOrganization: %s\nResources: %d files\nID: `%s`\n%s...",
			jsonsafe.StringOr(dataset, "title", "Untitled"),
			org,
			len(jsonsafe.Slice(dataset, "resources")),
			jsonsafe.String(dataset, "id"),
			notes))
	}
	return strings.Join(sections, "\n\n---\n\n"), nil
}

func (c *Client) executeDatasetInfo(ctx context.Context, input map[string]any) (*tools.Result, error) {
	datasetID, err := tools.ReadString(input, "dataset_id", true)
	if err != nil {
		return tools.ErrorResult("get_dataset_info", err.Error()), nil
	}

	text, err := c.DatasetInfo(ctx, datasetID)
	if err != nil {
		var serr *gateway.StatusError
		if errors.As(err, &serr) && serr.Code == 404 {
			return tools.TextResult(fmt.Sprintf("Dataset not found: %s", datasetID)), nil
		}
		return tools.ErrorResult("get_dataset_info", err.Error()), nil
	}
	return tools.TextResult(text), nil
}

// DatasetInfo renders full metadata for one dataset, including up to ten
// of its downloadable resources.
func (c *Client) DatasetInfo(ctx context.Context, datasetID string) (string, error) {
	params := url.Values{"id": {datasetID}}
	value, err := c.gw.FetchJSON(ctx, c.actionURL("package_show"), params)
	if err != nil {
		return "", err
	}

	dataset := jsonsafe.Map(asObject(value), "result")
	if len(dataset) == 0 {
		return fmt.Sprintf("Dataset not found: %s", datasetID), nil
	}

	org := jsonsafe.String(jsonsafe.Map(dataset, "organization"), "title")
	if org == "" {
		org = "Unknown"
	}
	modified := jsonsafe.StringOr(dataset, "metadata_modified", "Unknown")
	if len(modified) > 10 {
		modified = modified[:10]
	}

	lines := []string{
		fmt.Sprintf("**%s**\n", jsonsafe.StringOr(dataset, "title", "Untitled")),
		fmt.Sprintf("Organization: %s", org),
		fmt.Sprintf("License: %s", jsonsafe.StringOr(dataset, "license_title", "Unknown")),
		fmt.Sprintf("Last Updated: %s", modified),
		fmt.Sprintf("\n**Description:**\n%s\n", jsonsafe.StringOr(dataset, "notes", "No description available")),
	}

	resources := jsonsafe.Slice(dataset, "resources")
	if len(resources) > 0 {
		lines = append(lines, "**Available Resources:**")
		if len(resources) > maxResources {
			resources = resources[:maxResources]
		}
		for _, raw := range resources {
			resource := asObject(raw)
			name := stringutil.FirstNonEmpty(
				jsonsafe.String(resource, "name"),
				jsonsafe.String(resource, "description"),
				"Unnamed")
			sizeSuffix := ""
			if size := jsonsafe.Int(resource, "size"); size > 0 {
				sizeSuffix = fmt.Sprintf(" (%d bytes)", size)
			}
			lines = append(lines, fmt.Sprintf("- [%s] %s%s\n  %s",
				jsonsafe.StringOr(resource, "format", "Unknown"),
				name,
				sizeSuffix,
				jsonsafe.StringOr(resource, "url", "N/A")))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Client) executeQuery(ctx context.Context, input map[string]any) (*tools.Result, error) {
	action, err := tools.ReadString(input, "action", true)
	if err != nil {
		return tools.ErrorResult("query_datagov", err.Error()), nil
	}
	rawParams, err := tools.ReadMap(input, "params", false)
	if err != nil {
		return tools.ErrorResult("query_datagov", err.Error()), nil
	}

	value, err := c.gw.FetchJSON(ctx, c.actionURL(action), gateway.QueryValues(rawParams))
	if err != nil {
		return tools.ErrorResult("query_datagov", err.Error()), nil
	}
	return tools.JSONResult(value), nil
}

func asObject(value any) map[string]any {
	obj, _ := value.(map[string]any)
	return obj
}
