package datagov

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opencivic/civicmcp/pkg/config"
	"github.com/opencivic/civicmcp/pkg/gateway"
)

func newTestClient(baseURL string) *Client {
	cfg := config.Config{TimeoutSecs: 5}
	cfg.DataGov.BaseURL = baseURL
	return New(gateway.NewClient(cfg.TimeoutSecs), &cfg)
}

func TestSearchFormatting(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result": map[string]any{
				"count": 1234,
				"results": []any{
					map[string]any{
						"title":        "National Climate Data",
						"id":           "national-climate-data",
						"organization": map[string]any{"title": "NOAA"},
						"resources":    []any{map[string]any{}, map[string]any{}},
						"notes":        strings.Repeat("x", 300),
					},
					map[string]any{
						"id": "untitled-set",
					},
				},
			},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).executeSearch(context.Background(), map[string]any{"query": "climate change"})
	if err != nil {
		t.Fatalf("executeSearch: %v", err)
	}
	text := result.Text()

	if !strings.Contains(gotPath, "/action/package_search") {
		t.Errorf("unexpected path %s", gotPath)
	}
	if !strings.Contains(gotQuery, "rows=10") {
		t.Errorf("default rows not applied: %s", gotQuery)
	}
	for _, want := range []string{
		"**Data.gov Search: 'climate change'**",
		"Found 1234 datasets (showing 2)",
		"**National Climate Data**",
		"Organization: NOAA",
		"Resources: 2 files",
		"ID: `national-climate-data`",
		strings.Repeat("x", 200) + "...",
		"**Untitled**",
		"Organization: Unknown",
		"No description...",
		"\n\n---\n\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, strings.Repeat("x", 201)) {
		t.Errorf("notes not truncated to 200 chars")
	}
}

func TestSearchRowsClamp(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"count": 0, "results": []any{}}})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).executeSearch(context.Background(), map[string]any{
		"query": "water",
		"rows":  500,
	})
	if err != nil {
		t.Fatalf("executeSearch: %v", err)
	}
	if !strings.Contains(gotQuery, "rows=50") {
		t.Errorf("rows not clamped to 50: %s", gotQuery)
	}

	_, err = newTestClient(server.URL).executeSearch(context.Background(), map[string]any{
		"query": "water",
		"rows":  float64(0),
	})
	if err != nil {
		t.Fatalf("executeSearch: %v", err)
	}
	if !strings.Contains(gotQuery, "rows=0") {
		t.Errorf("explicit zero rows not passed through: %s", gotQuery)
	}
}

func TestDatasetInfoFormatting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resources := make([]any, 0, 12)
		for i := 0; i < 12; i++ {
			resources = append(resources, map[string]any{
				"format": "CSV",
				"name":   "data file",
				"url":    "https://example.gov/data.csv",
				"size":   1024,
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"title":             "Air Quality Index",
				"organization":      map[string]any{"title": "EPA"},
				"license_title":     "Creative Commons",
				"metadata_modified": "2024-03-15T12:00:00.000000",
				"notes":             "Daily AQI readings.",
				"resources":         resources,
			},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).executeDatasetInfo(context.Background(), map[string]any{"dataset_id": "aqi"})
	if err != nil {
		t.Fatalf("executeDatasetInfo: %v", err)
	}
	text := result.Text()

	for _, want := range []string{
		"**Air Quality Index**",
		"Organization: EPA",
		"License: Creative Commons",
		"Last Updated: 2024-03-15",
		"**Description:**\nDaily AQI readings.",
		"**Available Resources:**",
		"- [CSV] data file (1024 bytes)\n  https://example.gov/data.csv",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if got := strings.Count(text, "- [CSV]"); got != 10 {
		t.Errorf("resource list not capped at 10, got %d", got)
	}
}

func TestDatasetInfoResourceNameFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"title": "Sparse",
				"resources": []any{
					map[string]any{"format": "JSON", "description": "described only"},
					map[string]any{},
				},
			},
		})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).executeDatasetInfo(context.Background(), map[string]any{"dataset_id": "sparse"})
	if err != nil {
		t.Fatalf("executeDatasetInfo: %v", err)
	}
	text := result.Text()
	if !strings.Contains(text, "- [JSON] described only\n  N/A") {
		t.Errorf("description fallback missing:\n%s", text)
	}
	if !strings.Contains(text, "- [Unknown] Unnamed") {
		t.Errorf("unnamed fallback missing:\n%s", text)
	}
}

func TestDatasetInfoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).executeDatasetInfo(context.Background(), map[string]any{"dataset_id": "missing-set"})
	if err != nil {
		t.Fatalf("executeDatasetInfo: %v", err)
	}
	if result.IsError() {
		t.Fatalf("404 should yield a plain message, got error result")
	}
	if got := result.Text(); got != "Dataset not found: missing-set" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestQueryDatagovAction(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "result": []any{"epa", "noaa"}})
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).executeQuery(context.Background(), map[string]any{
		"action": "organization_list",
		"params": map[string]any{"limit": 2},
	})
	if err != nil {
		t.Fatalf("executeQuery: %v", err)
	}
	if result.IsError() {
		t.Fatalf("unexpected error result: %s", result.Text())
	}
	if !strings.Contains(gotPath, "/action/organization_list") {
		t.Errorf("unexpected path %s", gotPath)
	}
	if !strings.Contains(gotQuery, "limit=2") {
		t.Errorf("params not forwarded: %s", gotQuery)
	}
	if !strings.Contains(result.Text(), "epa") {
		t.Errorf("response not passed through: %s", result.Text())
	}
}
