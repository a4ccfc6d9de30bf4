package jsonsafe

import "testing"

func TestString(t *testing.T) {
	payload := map[string]any{"name": "value", "count": float64(3)}
	if got := String(payload, "name"); got != "value" {
		t.Fatalf("got %q, want %q", got, "value")
	}
	if got := String(payload, "count"); got != "" {
		t.Fatalf("mistyped value should return empty, got %q", got)
	}
	if got := String(payload, "missing"); got != "" {
		t.Fatalf("missing key should return empty, got %q", got)
	}
}

func TestStringOr(t *testing.T) {
	payload := map[string]any{"title": ""}
	if got := StringOr(payload, "title", "Untitled"); got != "Untitled" {
		t.Fatalf("got %q, want %q", got, "Untitled")
	}
	if got := StringOr(map[string]any{"title": "t"}, "title", "Untitled"); got != "t" {
		t.Fatalf("got %q, want %q", got, "t")
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    float64
	}{
		{name: "float", payload: map[string]any{"v": float64(1.5)}, want: 1.5},
		{name: "numeric string", payload: map[string]any{"v": "42"}, want: 42},
		{name: "empty string", payload: map[string]any{"v": ""}, want: 0},
		{name: "garbage string", payload: map[string]any{"v": "abc"}, want: 0},
		{name: "missing", payload: map[string]any{}, want: 0},
		{name: "null", payload: map[string]any{"v": nil}, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Number(tc.payload, "v"); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMapAndSlice(t *testing.T) {
	payload := map[string]any{
		"obj": map[string]any{"k": "v"},
		"arr": []any{"a"},
	}
	if got := Map(payload, "obj"); got == nil || got["k"] != "v" {
		t.Fatalf("unexpected map: %#v", got)
	}
	if got := Map(payload, "arr"); got != nil {
		t.Fatalf("array should not coerce to map, got %#v", got)
	}
	if got := Slice(payload, "arr"); len(got) != 1 {
		t.Fatalf("unexpected slice: %#v", got)
	}
	if got := Slice(payload, "obj"); got != nil {
		t.Fatalf("object should not coerce to slice, got %#v", got)
	}
}
