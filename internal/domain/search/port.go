package search

import "context"

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Date    string `json:"date,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Client port for the web search provider used by the agents.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	News(ctx context.Context, query string, limit int) ([]Result, error)
}
