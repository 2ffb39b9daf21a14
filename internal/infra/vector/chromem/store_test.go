package chromem

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedding maps texts onto fixed unit vectors so similarity is deterministic.
func stubEmbedding(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(strings.ToLower(text), "energy") {
		return []float32{1, 0, 0}, nil
	}
	return []float32{0, 1, 0}, nil
}

func TestStoreUpsertAndRecall(t *testing.T) {
	s, err := NewWithEmbedding(stubEmbedding)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a1", "Sector: Technology. Chosen: Vertex Labs.", map[string]string{"tenant": "default"}))
	require.NoError(t, s.Upsert(ctx, "a2", "Sector: Energy. Chosen: Solaris Energy.", map[string]string{"tenant": "default"}))
	require.NoError(t, s.Upsert(ctx, "a3", "Sector: Energy. Chosen: Nimbus Grid.", map[string]string{"tenant": "other"}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := s.Recall(ctx, "default", "energy stocks", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a2", hits[0].ID)
	assert.Equal(t, "default", hits[0].Meta["tenant"])
	assert.Greater(t, hits[0].Score, 0.9)
}

func TestStoreRecallEmpty(t *testing.T) {
	s, err := NewWithEmbedding(stubEmbedding)
	require.NoError(t, err)

	hits, err := s.Recall(context.Background(), "default", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStoreUpsertReplaces(t *testing.T) {
	s, err := NewWithEmbedding(stubEmbedding)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "a1", "first", map[string]string{"tenant": "default"}))
	require.NoError(t, s.Upsert(ctx, "a1", "second", map[string]string{"tenant": "default"}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
