package memory

import "context"

// LongTermStore port for the append-only analysis memory
type LongTermStore interface {
	Append(ctx context.Context, rec *Record) error
	Recent(ctx context.Context, tenant string, limit int) ([]*Record, error)
	PastPicks(ctx context.Context, tenant string, sector string, limit int) ([]string, error)
	Count(ctx context.Context, tenant string) (int, error)
	SizeBytes(ctx context.Context) (int64, error)
}

// Recalled is one semantic-recall hit from the vector memory.
type Recalled struct {
	ID      string            `json:"id"`
	Content string            `json:"content"`
	Score   float64           `json:"score"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// VectorStore port for the embedding-backed recall memory
type VectorStore interface {
	Upsert(ctx context.Context, id string, content string, meta map[string]string) error
	Recall(ctx context.Context, tenant string, query string, limit int) ([]Recalled, error)
	Count(ctx context.Context) (int, error)
}
