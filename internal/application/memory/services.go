package memory

import (
	"context"

	"github.com/finagents/stockpicker/internal/domain/memory"
)

// Service exposes memory stats and semantic recall to the API layer.
type Service struct {
	longTerm memory.LongTermStore
	vectors  memory.VectorStore
}

func NewService(longTerm memory.LongTermStore, vectors memory.VectorStore) *Service {
	return &Service{longTerm: longTerm, vectors: vectors}
}

// Stats menghitung ltm_count, vector_embeddings, memory_size_mb
func (s *Service) Stats(ctx context.Context, tenant string) (memory.Stats, error) {
	var st memory.Stats
	count, err := s.longTerm.Count(ctx, tenant)
	if err != nil {
		return st, err
	}
	st.LTMCount = count

	size, err := s.longTerm.SizeBytes(ctx)
	if err != nil {
		return st, err
	}
	st.MemorySizeMB = float64(size) / (1024 * 1024)

	if s.vectors != nil {
		n, err := s.vectors.Count(ctx)
		if err != nil {
			return st, err
		}
		st.VectorEmbeddings = n
	}
	return st, nil
}

// Recall cari memory lama yang mirip query
func (s *Service) Recall(ctx context.Context, tenant, query string, limit int) ([]memory.Recalled, error) {
	if s.vectors == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}
	return s.vectors.Recall(ctx, tenant, query, limit)
}

// Recent ambil N record terakhir dari long-term memory
func (s *Service) Recent(ctx context.Context, tenant string, limit int) ([]*memory.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.longTerm.Recent(ctx, tenant, limit)
}
