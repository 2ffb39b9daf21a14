package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finagents/stockpicker/internal/domain/memory"
	"github.com/finagents/stockpicker/internal/domain/runerrors"
)

func record(tenant, analysis, sector, chosen string, at time.Time) *memory.Record {
	return &memory.Record{
		TenantID:   tenant,
		AnalysisID: analysis,
		Sector:     sector,
		Task:       "Pick the best stock in the " + sector + " sector",
		Chosen:     chosen,
		Score:      1.0,
		Metadata:   `{"companies":3}`,
		CreatedAt:  at,
	}
}

func TestMemoryRepoAppendAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.db")
	db, err := Connect(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	repo := NewMemoryRepository(db, path)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	r1 := record("default", "a1", "Technology", "Vertex Labs", now.Add(-2*time.Hour))
	r2 := record("default", "a2", "Technology", "Orbit Semiconductors", now.Add(-time.Hour))
	require.NoError(t, repo.Append(ctx, r1))
	require.NoError(t, repo.Append(ctx, r2))
	assert.NotZero(t, r1.ID)
	assert.NotEqual(t, r1.ID, r2.ID)

	recent, err := repo.Recent(ctx, "default", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Orbit Semiconductors", recent[0].Chosen)
	assert.Equal(t, "Vertex Labs", recent[1].Chosen)
	assert.Equal(t, 1.0, recent[0].Score)
	assert.WithinDuration(t, now.Add(-time.Hour), recent[0].CreatedAt, time.Second)
}

func TestMemoryRepoPastPicks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.db")
	db, err := Connect(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	repo := NewMemoryRepository(db, path)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Append(ctx, record("default", "a1", "Technology", "Vertex Labs", now)))
	require.NoError(t, repo.Append(ctx, record("default", "a2", "Technology", "Vertex Labs", now)))
	require.NoError(t, repo.Append(ctx, record("default", "a3", "Technology", "Orbit Semiconductors", now)))
	require.NoError(t, repo.Append(ctx, record("default", "a4", "Energy", "Solaris Energy", now)))
	require.NoError(t, repo.Append(ctx, record("other", "a5", "Technology", "Nimbus Grid", now)))

	picks, err := repo.PastPicks(ctx, "default", "Technology", 10)
	require.NoError(t, err)
	// distinct, tenant- and sector-scoped
	assert.ElementsMatch(t, []string{"Vertex Labs", "Orbit Semiconductors"}, picks)
}

func TestMemoryRepoCountAndSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem.db")
	db, err := Connect(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	repo := NewMemoryRepository(db, path)
	ctx := context.Background()

	n, err := repo.Count(ctx, "default")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.Append(ctx, record("default", "a1", "Technology", "Vertex Labs", time.Now())))
	require.NoError(t, repo.Append(ctx, record("other", "a2", "Energy", "Solaris Energy", time.Now())))

	n, err = repo.Count(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	size, err := repo.SizeBytes(ctx)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))
}

func TestRunErrorRepo(t *testing.T) {
	db := testDB(t)
	repo := NewRunErrorRepository(db)
	ctx := context.Background()

	e := &runerrors.RunError{
		TenantID:   "default",
		AnalysisID: "a1-technology",
		Sector:     "Technology",
		Stage:      "picker",
		Message:    "picker produced no chosen company",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, e))
	assert.NotZero(t, e.ID)

	list, err := repo.ListByAnalysis(ctx, "default", "a1-technology", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "picker", list[0].Stage)
	assert.Contains(t, list[0].Message, "no chosen company")

	other, err := repo.ListByAnalysis(ctx, "other", "a1-technology", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}
