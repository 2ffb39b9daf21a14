package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/finagents/stockpicker/internal/domain/search"
)

const defaultBaseURL = "https://google.serper.dev"

// Client calls the Serper google search API (google.serper.dev).
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type request struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type organicItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
}

type newsItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
	Source  string `json:"source,omitempty"`
}

type searchResponse struct {
	Organic []organicItem `json:"organic"`
	News    []newsItem    `json:"news"`
}

// Search runs a web search query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	resp, err := c.post(ctx, "/search", query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]search.Result, 0, len(resp.Organic))
	for _, it := range resp.Organic {
		out = append(out, search.Result{Title: it.Title, Link: it.Link, Snippet: it.Snippet, Date: it.Date})
	}
	return out, nil
}

// News runs a news search query.
func (c *Client) News(ctx context.Context, query string, limit int) ([]search.Result, error) {
	resp, err := c.post(ctx, "/news", query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]search.Result, 0, len(resp.News))
	for _, it := range resp.News {
		out = append(out, search.Result{Title: it.Title, Link: it.Link, Snippet: it.Snippet, Date: it.Date, Source: it.Source})
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path, query string, limit int) (*searchResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	body, err := json.Marshal(request{Q: query, Num: limit})
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-API-KEY", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying serper: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from serper: %d", httpResp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding serper response: %w", err)
	}
	return &out, nil
}
