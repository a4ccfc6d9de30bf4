// Package gateway is the single chokepoint for outbound HTTP GETs.
// It applies the configured timeout, a fixed identifying User-Agent, and
// classifies failures into a small error taxonomy. Responses are decoded
// JSON returned untyped; shape validation is the caller's job.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/opencivic/civicmcp/pkg/shared/stringutil"
)

const (
	userAgent    = "civicmcp/0.1.0"
	maxErrorBody = 200
)

// Client issues JSON GET requests against upstream APIs. One Client is
// created at startup and shared by all providers so the underlying
// connection pool lives for the process lifetime. Safe for concurrent use.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a gateway client with the given timeout in seconds.
// Redirects are followed automatically by the underlying http.Client.
func NewClient(timeoutSecs int) *Client {
	timeout := time.Duration(timeoutSecs) * time.Second
	return &Client{
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// FetchJSON GETs rawURL with the given query parameters appended and
// returns the decoded JSON value. Parameters already present in rawURL are
// preserved. No retries are attempted; failures surface immediately as
// *TimeoutError, *StatusError, or *TransportError.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, params url.Values) (any, error) {
	fullURL := rawURL
	if len(params) > 0 {
		sep := "?"
		if parsed, err := url.Parse(rawURL); err == nil && parsed.RawQuery != "" {
			sep = "&"
		}
		fullURL = rawURL + sep + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	log := zerolog.Ctx(ctx).With().Str("request_id", xid.New().String()).Logger()
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			log.Debug().Str("url", fullURL).Dur("duration", time.Since(start)).Msg("Fetch timed out")
			return nil, &TimeoutError{URL: fullURL, Timeout: c.timeout}
		}
		log.Debug().Str("url", fullURL).Err(err).Msg("Fetch failed")
		return nil, &TransportError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: fullURL, Err: err}
	}

	log.Debug().
		Str("url", fullURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Fetched JSON")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Code: resp.StatusCode,
			URL:  fullURL,
			Body: stringutil.Truncate(string(data), maxErrorBody),
		}
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parse response from %s: %w", fullURL, err)
	}
	return value, nil
}

// QueryValues converts a loosely-typed parameter mapping (as received from
// raw-query tools) into url.Values. Arrays become repeated parameters.
func QueryValues(params map[string]any) url.Values {
	if len(params) == 0 {
		return nil
	}
	values := url.Values{}
	for key, v := range params {
		switch item := v.(type) {
		case []any:
			for _, entry := range item {
				values.Add(key, scalarString(entry))
			}
		case []string:
			for _, entry := range item {
				values.Add(key, entry)
			}
		default:
			values.Set(key, scalarString(v))
		}
	}
	return values
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}
