package sqlite

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/finagents/stockpicker/internal/domain/memory"
)

// MemoryRepository persists long-term memory records. The datetime column
// stores unix epoch seconds, matching the classic long_term_memories layout.
type MemoryRepository struct {
	db   *sql.DB
	path string
}

func NewMemoryRepository(db *sql.DB, path string) *MemoryRepository {
	return &MemoryRepository{db: db, path: path}
}

func (r *MemoryRepository) Append(ctx context.Context, rec *memory.Record) error {
	const q = `
INSERT INTO long_term_memories (tenant_id, analysis_id, sector, task, chosen, score, metadata, datetime)
VALUES (?,?,?,?,?,?,?,?);
`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q,
		rec.TenantID, rec.AnalysisID, rec.Sector, rec.Task, rec.Chosen,
		rec.Score, rec.Metadata, float64(created.Unix()),
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = memory.RecordID(id)
	}
	return nil
}

func (r *MemoryRepository) Recent(ctx context.Context, tenant string, limit int) ([]*memory.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, analysis_id, sector, task, chosen, score, metadata, datetime
FROM long_term_memories
WHERE tenant_id=? ORDER BY datetime DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*memory.Record
	for rows.Next() {
		var rec memory.Record
		var epoch float64
		if err := rows.Scan(&rec.ID, &rec.TenantID, &rec.AnalysisID, &rec.Sector,
			&rec.Task, &rec.Chosen, &rec.Score, &rec.Metadata, &epoch); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(int64(epoch), 0).UTC()
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// PastPicks returns the companies already chosen for a sector, newest first.
func (r *MemoryRepository) PastPicks(ctx context.Context, tenant string, sector string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT DISTINCT chosen FROM long_term_memories
WHERE tenant_id=? AND sector=? AND chosen != ''
ORDER BY chosen LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, sector, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var chosen string
		if err := rows.Scan(&chosen); err != nil {
			return nil, err
		}
		out = append(out, chosen)
	}
	return out, rows.Err()
}

func (r *MemoryRepository) Count(ctx context.Context, tenant string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM long_term_memories WHERE tenant_id=?;`, tenant).Scan(&n)
	return n, err
}

// SizeBytes reports the on-disk size of the memory database.
func (r *MemoryRepository) SizeBytes(context.Context) (int64, error) {
	fi, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	return fi.Size(), nil
}
