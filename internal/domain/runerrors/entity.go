package runerrors

import "time"

// RunError represents a persisted pipeline error entry
type RunError struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	AnalysisID  string    `json:"analysis_id"`
	Sector      string    `json:"sector,omitempty"`
	Stage       string    `json:"stage,omitempty"` // finder | researcher | picker | persist
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
