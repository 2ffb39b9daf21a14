package analyses

import "context"
import "time"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, tenant string, id AnalysisID) (*Analysis, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Analysis, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (Summary, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]any) (PaginatedResult, error)
	Cursor(ctx context.Context, tenant string, cursorTime time.Time, cursorID string, pageSize int) ([]*Analysis, error)
	UpdateStatus(ctx context.Context, tenant string, id AnalysisID, status Status) error
}

// Summary rekap hasil analyses N hari terakhir
type Summary struct {
	Total     int    `json:"total_analyses"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Companies int    `json:"companies_considered"`
	LastPick  string `json:"last_pick,omitempty"`
}

// Pipeline port (interface untuk eksekusi agent pipeline)
type Pipeline interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// ArtifactStore port (interface untuk penyimpanan artefak)
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
