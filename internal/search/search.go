// Package search proxies queries to the DuckDuckGo instant-answer API.
// The upstream payload is treated as opaque: it is decoded generically,
// a few known keys are lifted into the response, and the rest passes
// through a key filter.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/debtcoder/debtcoder/internal/metrics"
)

const (
	queryTimeout = 10 * time.Second
	pingTimeout  = 2 * time.Second
)

// rawKeys are the upstream payload keys echoed back to the caller.
var rawKeys = []string{"Abstract", "Answer", "RelatedTopics", "Results"}

// UpstreamError reports a non-2xx upstream response.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("search upstream returned status %d", e.StatusCode)
}

// Result is one search hit.
type Result struct {
	Title   string `json:"title,omitempty"`
	URL     string `json:"url,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Response is the proxied search response.
type Response struct {
	Query    string         `json:"query"`
	Abstract string         `json:"abstract"`
	Answer   string         `json:"answer"`
	Results  []Result       `json:"results"`
	Raw      map[string]any `json:"raw"`
}

// Client queries the instant-answer endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a search client for the given endpoint.
func New(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: queryTimeout},
	}
}

// Fetch runs a query against the upstream and reshapes the payload.
func (c *Client) Fetch(ctx context.Context, query string) (*Response, error) {
	start := time.Now()
	payload, err := c.get(ctx, query)
	metrics.RecordSearch(time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Query:    query,
		Abstract: stringField(payload, "Abstract"),
		Answer:   stringField(payload, "Answer"),
		Results:  []Result{},
		Raw:      map[string]any{},
	}
	for _, key := range rawKeys {
		if v, ok := payload[key]; ok {
			resp.Raw[key] = v
		}
	}

	for _, item := range listField(payload, "Results") {
		resp.Results = append(resp.Results, Result{
			Title:   stringField(item, "Text"),
			URL:     stringField(item, "FirstURL"),
			Summary: stringField(item, "Text"),
		})
	}

	// Fall back to related topics when there are no direct results.
	if len(resp.Results) == 0 {
		for _, topic := range listField(payload, "RelatedTopics") {
			if stringField(topic, "Text") == "" {
				continue
			}
			resp.Results = append(resp.Results, Result{
				Title:   stringField(topic, "Text"),
				URL:     stringField(topic, "FirstURL"),
				Summary: stringField(topic, "Text"),
			})
		}
	}

	return resp, nil
}

// Ping reports whether the upstream answers within a short timeout. Used
// by the diagnostics endpoint.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	_, err := c.get(ctx, "ping")
	return err == nil
}

func (c *Client) get(ctx context.Context, query string) (map[string]any, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_redirect", "1")
	params.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode}
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search payload: %w", err)
	}
	return payload, nil
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func listField(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if item, ok := v.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items
}
