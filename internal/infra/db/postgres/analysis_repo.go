package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	domain "github.com/finagents/stockpicker/internal/domain/analyses"
)

type AnalysisRepository struct{ db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

const analysisColumns = `id, tenant_id, triggered_at, sector, status, model,
       companies, researched, rejected, chosen, decision_summary,
       artifact_trending, artifact_research, artifact_decision, duration_ms`

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO analyses
(id, tenant_id, triggered_at, sector, status, model,
 companies, researched, rejected, chosen, decision_summary,
 artifact_trending, artifact_research, artifact_decision, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,
        $7,$8,$9,$10,$11,
        $12,$13,$14,$15)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 model = EXCLUDED.model,
 companies = EXCLUDED.companies,
 researched = EXCLUDED.researched,
 rejected = EXCLUDED.rejected,
 chosen = EXCLUDED.chosen,
 decision_summary = EXCLUDED.decision_summary,
 artifact_trending = EXCLUDED.artifact_trending,
 artifact_research = EXCLUDED.artifact_research,
 artifact_decision = EXCLUDED.artifact_decision,
 duration_ms = EXCLUDED.duration_ms;`

	triggered := a.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.TenantID, triggered, a.Sector, a.Status, a.Model,
		a.Counts.Companies, a.Counts.Researched, a.Counts.Rejected,
		a.Chosen, a.DecisionSummary,
		a.Artifacts.Trending, a.Artifacts.Research, a.Artifacts.Decision,
		a.DurationMS,
	)
	return err
}

func scanAnalysis(row interface{ Scan(...any) error }) (*domain.Analysis, error) {
	var a domain.Analysis
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.TriggeredAt, &a.Sector, &a.Status, &a.Model,
		&a.Counts.Companies, &a.Counts.Researched, &a.Counts.Rejected,
		&a.Chosen, &a.DecisionSummary,
		&a.Artifacts.Trending, &a.Artifacts.Research, &a.Artifacts.Decision,
		&a.DurationMS,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func collect(rows *sql.Rows) ([]*domain.Analysis, error) {
	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get by ID + Tenant
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=$1 AND id=$2 LIMIT 1;`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest analyses per tenant
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=$1 ORDER BY triggered_at DESC, id DESC LIMIT $2;`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Summary rekap analyses since N days
func (r *AnalysisRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status='success' THEN 1 ELSE 0 END),0),
       COALESCE(SUM(CASE WHEN status='failed' THEN 1 ELSE 0 END),0),
       COALESCE(SUM(companies),0)
FROM analyses
WHERE tenant_id=$1 AND triggered_at >= $2;`
	var s domain.Summary
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&s.Total, &s.Succeeded, &s.Failed, &s.Companies); err != nil {
		return domain.Summary{}, err
	}

	const lastQ = `
SELECT chosen FROM analyses
WHERE tenant_id=$1 AND status='success' AND chosen <> ''
ORDER BY triggered_at DESC LIMIT 1;`
	if err := r.db.QueryRowContext(ctx, lastQ, tenant).Scan(&s.LastPick); err != nil && err != sql.ErrNoRows {
		return domain.Summary{}, err
	}
	return s, nil
}

// Paginate with offset + limit (classic pagination)
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]any) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE tenant_id=$1`
	args := []any{tenant}
	query, args = applyFilters(query, args, filters)
	query += fmt.Sprintf(" ORDER BY triggered_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	list, err := collect(rows)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("scanning rows: %w", err)
	}

	total, err := r.count(ctx, tenant, filters)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func applyFilters(query string, args []any, filters map[string]any) (string, []any) {
	if filters == nil {
		return query, args
	}
	for key, value := range filters {
		switch key {
		case "sector":
			query += fmt.Sprintf(" AND sector = $%d", len(args)+1)
			args = append(args, value)
		case "status":
			query += fmt.Sprintf(" AND status = $%d", len(args)+1)
			args = append(args, value)
		case "chosen":
			query += fmt.Sprintf(" AND chosen ILIKE $%d", len(args)+1)
			args = append(args, "%"+escapeLikePattern(fmt.Sprint(value))+"%")
		}
	}
	return query, args
}

func (r *AnalysisRepository) count(ctx context.Context, tenant string, filters map[string]any) (int64, error) {
	query := "SELECT COUNT(*) FROM analyses WHERE tenant_id = $1"
	args := []any{tenant}
	query, args = applyFilters(query, args, filters)

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Cursor-based pagination (after cursorTime, cursorID)
func (r *AnalysisRepository) Cursor(ctx context.Context, tenant string, cursorTime time.Time, cursorID string, pageSize int) ([]*domain.Analysis, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	q := `SELECT ` + analysisColumns + ` FROM analyses
WHERE tenant_id=$1 AND (triggered_at < $2 OR (triggered_at = $2 AND id < $3))
ORDER BY triggered_at DESC, id DESC LIMIT $4;`
	rows, err := r.db.QueryContext(ctx, q, tenant, cursorTime, cursorID, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// UpdateStatus hanya update kolom status untuk 1 analysis
func (r *AnalysisRepository) UpdateStatus(ctx context.Context, tenant string, id domain.AnalysisID, status domain.Status) error {
	const q = `UPDATE analyses SET status = $1 WHERE tenant_id = $2 AND id = $3;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

// escapeLikePattern escapes special characters in LIKE patterns
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
