package census

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opencivic/civicmcp/pkg/config"
	"github.com/opencivic/civicmcp/pkg/gateway"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := (&config.Config{Census: config.ProviderConfig{BaseURL: baseURL}}).WithDefaults()
	return New(gateway.NewClient(5), cfg)
}

func TestStateFIPS(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "CA", want: "06"},
		{input: "TX", want: "48"},
		{input: "DC", want: "11"},
		{input: "pr", want: "72"},
		{input: "ny", want: "36"},
		{input: "06", want: "06"},
		{input: "ZZ", want: "ZZ"},
	}
	for _, tc := range tests {
		if got := StateFIPS(tc.input); got != tc.want {
			t.Fatalf("StateFIPS(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestStateFIPSCoversAllStates(t *testing.T) {
	// 50 states + DC + PR.
	if len(stateFIPS) != 52 {
		t.Fatalf("expected 52 FIPS entries, got %d", len(stateFIPS))
	}
}

func TestPercentOfTotal(t *testing.T) {
	if got := PercentOfTotal(50, 200); got != "25.0%" {
		t.Fatalf("got %q, want %q", got, "25.0%")
	}
	if got := PercentOfTotal(50, 0); got != "N/A" {
		t.Fatalf("got %q, want %q", got, "N/A")
	}
}

func TestPopulationStateQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("for"); got != "state:06" {
			t.Errorf("expected for=state:06, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]any{
			[]any{"NAME", "B01003_001E", "state"},
			[]any{"California", "39029342", "06"},
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Population(context.Background(), "ca", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "- California: 39,029,342") {
		t.Fatalf("missing grouped population in:\n%s", text)
	}
}

func TestPopulationCountyWildcardAndCap(t *testing.T) {
	rows := []any{[]any{"NAME", "B01003_001E", "state", "county"}}
	for i := 0; i < 100; i++ {
		rows = append(rows, []any{fmt.Sprintf("County %d", i), "1000", "48", fmt.Sprintf("%03d", i)})
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The raw query keeps its pre-encoded geography clause.
		if !strings.Contains(r.URL.RawQuery, "for=county:*&in=state:48") {
			t.Errorf("expected wildcard county clause, got %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Population(context.Background(), "TX", "some-county")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(text, "- County"); got != 20 {
		t.Fatalf("expected 20 rows, got %d", got)
	}
}

func TestDemographicsFormatting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("for"); got != "state:11" {
			t.Errorf("expected for=state:11, got %q", got)
		}
		_ = json.NewEncoder(w).Encode([]any{
			[]any{"NAME", "B01003_001E", "B01002_001E", "B19013_001E", "B02001_002E", "B02001_003E", "B02001_005E", "B03001_003E"},
			[]any{"District of Columbia", "200", "34.8", "101722", "50", "90", "10", "25"},
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Demographics(context.Background(), "DC", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"**Demographics for District of Columbia**",
		"**Population**: 200",
		"**Median Age**: 34.8",
		"**Median Household Income**: $101,722",
		"- White: 50 (25.0%)",
		"- Black: 90 (45.0%)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestDemographicsZeroPopulation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]any{
			[]any{"NAME", "B01003_001E", "B01002_001E", "B19013_001E", "B02001_002E", "B02001_003E", "B02001_005E", "B03001_003E"},
			[]any{"Ghost Town", "", "", "", "", "", "", ""},
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Demographics(context.Background(), "CA", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "- White: 0 (N/A)") {
		t.Fatalf("zero total should render N/A percentages:\n%s", text)
	}
}

func TestDemographicsCountyUsesSpecificCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "for=county:075&in=state:06") {
			t.Errorf("expected specific county clause, got %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]any{
			[]any{"NAME"},
			[]any{"San Francisco County, California", "800000", "38.2", "126187", "1", "2", "3", "4"},
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	if _, err := client.Demographics(context.Background(), "CA", "075"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHousingVacancyRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]any{
			[]any{"NAME", "B25001_001E", "B25002_002E", "B25002_003E", "B25077_001E", "B25064_001E"},
			[]any{"Texas", "1000", "900", "100", "300000", "1200"},
		})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Housing(context.Background(), "TX", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"**Vacant**: 100 (10.0% vacancy rate)",
		"**Median Home Value**: $300,000",
		"**Median Gross Rent**: $1,200/month",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestNoDataRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]any{[]any{"NAME", "B01003_001E"}})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Population(context.Background(), "WY", "")
	if err != nil {
		t.Fatalf("header-only response should not error: %v", err)
	}
	if !strings.Contains(text, "No population data found") {
		t.Fatalf("expected not-found text, got %q", text)
	}
}

func TestQueryCensusURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2020/dec/pl" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("get"); got != "NAME,P1_001N" {
			t.Errorf("unexpected get clause %q", got)
		}
		_ = json.NewEncoder(w).Encode([]any{[]any{"NAME", "P1_001N"}})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	tool := client.Tools()[3]
	if tool.Name != "query_census" {
		t.Fatalf("expected query_census, got %s", tool.Name)
	}

	result, err := tool.Execute(context.Background(), map[string]any{
		"dataset":   "dec/pl",
		"variables": []any{"NAME", "P1_001N"},
		"geo":       "state:06",
		"year":      "2020",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError() {
		t.Fatalf("unexpected error result: %q", result.Text())
	}
}
