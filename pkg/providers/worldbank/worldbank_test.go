package worldbank

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
	cfg.WorldBank.BaseURL = baseURL
	return New(gateway.NewClient(cfg.TimeoutSecs), &cfg)
}

func indicatorResponse(country, code, date string, value any) []any {
	return []any{
		map[string]any{"page": 1, "total": 1},
		[]any{
			map[string]any{
				"country":   map[string]any{"id": code, "value": country},
				"date":      date,
				"value":     value,
				"indicator": map[string]any{"id": code},
			},
		},
	}
}

func TestCountryIndicatorsFormatting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp []any
		switch {
		case strings.Contains(r.URL.Path, "NY.GDP.MKTP.CD"):
			resp = indicatorResponse("United States", "USA", "2023", 27.36e12)
		case strings.Contains(r.URL.Path, "SP.POP.TOTL"):
			resp = indicatorResponse("United States", "USA", "2023", 334.9e6)
		case strings.Contains(r.URL.Path, "SI.POV.DDAY"):
			resp = indicatorResponse("United States", "USA", "2022", 1.2)
		case strings.Contains(r.URL.Path, "NY.GDP.PCAP.CD"):
			resp = indicatorResponse("United States", "USA", "2023", 81695.19)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	text := newTestClient(server.URL).CountryIndicators(context.Background(), "usa", nil)

	for _, want := range []string{
		"**Economic Indicators for USA**",
		"- **GDP (current US$)** (2023): $27.36 trillion",
		"- **Population** (2023): 334.9 million",
		"- **Poverty Rate (% at $2.15/day)** (2022): 1.2%",
		"- **GDP per Capita** (2023): $81,695",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestCountryIndicatorsNullValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(indicatorResponse("Somewhere", "SMW", "2023", nil))
	}))
	defer server.Close()

	text := newTestClient(server.URL).CountryIndicators(context.Background(), "smw", []string{"SP.POP.TOTL"})
	if !strings.Contains(text, "- **Population**: No data available") {
		t.Errorf("expected no-data line, got:\n%s", text)
	}
}

func TestCountryIndicatorsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	text := newTestClient(server.URL).CountryIndicators(context.Background(), "usa", []string{"SP.POP.TOTL"})
	if !strings.Contains(text, "- SP.POP.TOTL: Error fetching data") {
		t.Errorf("expected inline error line, got:\n%s", text)
	}
}

// One upstream failure out of three countries must yield exactly two
// entries, sorted descending by value.
func TestCompareCountriesExcludesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/country/IND/"):
			w.WriteHeader(http.StatusBadGateway)
		case strings.Contains(r.URL.Path, "/country/USA/"):
			_ = json.NewEncoder(w).Encode(indicatorResponse("United States", "USA", "2023", 27.36e12))
		case strings.Contains(r.URL.Path, "/country/CHN/"):
			_ = json.NewEncoder(w).Encode(indicatorResponse("China", "CHN", "2023", 17.79e12))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	text := newTestClient(server.URL).CompareCountries(context.Background(), []string{"CHN", "IND", "USA"}, "NY.GDP.MKTP.CD")

	if strings.Contains(text, "IND") || strings.Contains(text, "India") {
		t.Errorf("failed country leaked into output:\n%s", text)
	}
	usIdx := strings.Index(text, "United States: $27.36T (2023)")
	cnIdx := strings.Index(text, "China: $17.79T (2023)")
	if usIdx < 0 || cnIdx < 0 {
		t.Fatalf("missing expected entries in:\n%s", text)
	}
	if usIdx > cnIdx {
		t.Errorf("entries not sorted descending:\n%s", text)
	}
	if !strings.HasPrefix(text, "**Comparing GDP (current US$)**") {
		t.Errorf("unexpected header:\n%s", text)
	}
}

func TestCompareCountriesSkipsNullValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/country/ABW/") {
			_ = json.NewEncoder(w).Encode(indicatorResponse("Aruba", "ABW", "2023", nil))
			return
		}
		_ = json.NewEncoder(w).Encode(indicatorResponse("United States", "USA", "2023", 334.9e6))
	}))
	defer server.Close()

	text := newTestClient(server.URL).CompareCountries(context.Background(), []string{"ABW", "USA"}, "SP.POP.TOTL")
	if strings.Contains(text, "Aruba") {
		t.Errorf("null-valued country should be excluded:\n%s", text)
	}
	if !strings.Contains(text, "- United States: 334.9M (2023)") {
		t.Errorf("missing population entry:\n%s", text)
	}
}

func TestQueryWorldBankInjectsFormat(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]any{map[string]any{"total": 0}, []any{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.executeQuery(context.Background(), map[string]any{
		"country":   "all",
		"indicator": "NY.GDP.MKTP.CD",
		"params":    map[string]any{"per_page": 100},
	})
	if err != nil {
		t.Fatalf("executeQuery: %v", err)
	}
	if result.IsError() {
		t.Fatalf("unexpected error result: %s", result.Text())
	}
	if !strings.Contains(gotQuery, "format=json") || !strings.Contains(gotQuery, "per_page=100") {
		t.Errorf("query missing expected params: %s", gotQuery)
	}
}
