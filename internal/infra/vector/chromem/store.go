package chromem

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	domai "github.com/finagents/stockpicker/internal/domain/ai"
	"github.com/finagents/stockpicker/internal/domain/memory"
)

const collectionName = "analyses"

// Store is the embedding-backed recall memory, persisted on disk so it
// survives restarts and keeps growing across analyses.
type Store struct {
	db  *chromem.DB
	col *chromem.Collection
}

var _ memory.VectorStore = (*Store)(nil)

// New opens (or creates) the persistent vector db at path. Embeddings are
// produced through the LLM client's embedding endpoint.
func New(path string, llm domai.Client) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector db: %w", err)
	}
	embed := func(ctx context.Context, text string) ([]float32, error) {
		return llm.Embed(ctx, text)
	}
	col, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("opening vector collection: %w", err)
	}
	return &Store{db: db, col: col}, nil
}

// NewWithEmbedding builds an in-memory store with a custom embedding func (tests).
func NewWithEmbedding(embed chromem.EmbeddingFunc) (*Store, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, col: col}, nil
}

// Upsert stores one document; an existing document with the same id is replaced.
func (s *Store) Upsert(ctx context.Context, id string, content string, meta map[string]string) error {
	return s.col.AddDocument(ctx, chromem.Document{
		ID:       id,
		Content:  content,
		Metadata: meta,
	})
}

// Recall performs cosine-similarity search scoped to one tenant.
func (s *Store) Recall(ctx context.Context, tenant string, query string, limit int) ([]memory.Recalled, error) {
	n := s.col.Count()
	if n == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	where := map[string]string{"tenant": tenant}
	results, err := s.col.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	out := make([]memory.Recalled, 0, len(results))
	for _, r := range results {
		out = append(out, memory.Recalled{
			ID:      r.ID,
			Content: r.Content,
			Score:   float64(r.Similarity),
			Meta:    r.Metadata,
		})
	}
	return out, nil
}

func (s *Store) Count(context.Context) (int, error) {
	return s.col.Count(), nil
}
