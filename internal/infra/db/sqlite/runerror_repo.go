package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/finagents/stockpicker/internal/domain/runerrors"
)

type RunErrorRepository struct {
	db *sql.DB
}

func NewRunErrorRepository(db *sql.DB) *RunErrorRepository {
	return &RunErrorRepository{db: db}
}

func (r *RunErrorRepository) Save(ctx context.Context, e *runerrors.RunError) error {
	const q = `
INSERT INTO run_errors (tenant_id, analysis_id, sector, stage, message, details_json, created_at)
VALUES (?,?,?,?,?,?,?);
`
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q,
		e.TenantID, e.AnalysisID, e.Sector, e.Stage, e.Message, e.DetailsJSON, created)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

func (r *RunErrorRepository) ListByAnalysis(ctx context.Context, tenant string, analysisID string, limit int) ([]*runerrors.RunError, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, analysis_id, sector, stage, message, details_json, created_at
FROM run_errors
WHERE tenant_id=? AND analysis_id=?
ORDER BY created_at DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, analysisID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*runerrors.RunError
	for rows.Next() {
		var e runerrors.RunError
		if err := rows.Scan(&e.ID, &e.TenantID, &e.AnalysisID, &e.Sector,
			&e.Stage, &e.Message, &e.DetailsJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
