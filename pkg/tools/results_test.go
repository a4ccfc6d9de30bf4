package tools

import (
	"strings"
	"testing"
)

func TestTextResult(t *testing.T) {
	result := TextResult("hello")
	if result.IsError() {
		t.Fatalf("text result should not be an error")
	}
	if got := result.Text(); got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestJSONResult(t *testing.T) {
	result := JSONResult(map[string]any{"count": 3})
	if result.IsError() {
		t.Fatalf("json result should not be an error")
	}
	if !strings.Contains(result.Text(), `"count":3`) {
		t.Fatalf("unexpected text: %q", result.Text())
	}
	if result.Details["count"] != float64(3) {
		t.Fatalf("unexpected details: %#v", result.Details)
	}
}

func TestErrorResult(t *testing.T) {
	result := ErrorResultf("get_population", "HTTP %d", 500)
	if !result.IsError() {
		t.Fatalf("expected error result")
	}
	if got := result.Text(); got != "HTTP 500" {
		t.Fatalf("got %q", got)
	}
	if result.Details["tool"] != "get_population" {
		t.Fatalf("unexpected details: %#v", result.Details)
	}
}

func TestDecodeArguments(t *testing.T) {
	input, err := decodeArguments(nil)
	if err != nil || len(input) != 0 {
		t.Fatalf("nil arguments should decode to empty map: %#v, %v", input, err)
	}

	input, err = decodeArguments(map[string]any{"q": "x"})
	if err != nil || input["q"] != "x" {
		t.Fatalf("map arguments should pass through: %#v, %v", input, err)
	}

	input, err = decodeArguments([]byte(`{"state":"CA"}`))
	if err != nil || input["state"] != "CA" {
		t.Fatalf("raw arguments should decode: %#v, %v", input, err)
	}

	if _, err := decodeArguments([]byte(`[1,2]`)); err == nil {
		t.Fatalf("non-object arguments should fail")
	}
}
