package memory

import "time"

// RecordID identifier type
type RecordID int64

// Record is one long-term memory entry, appended after every completed
// analysis so later runs can learn from earlier decisions.
type Record struct {
	ID         RecordID  `json:"id"`
	TenantID   string    `json:"tenant_id"`
	AnalysisID string    `json:"analysis_id"`
	Sector     string    `json:"sector"`
	Task       string    `json:"task"`
	Chosen     string    `json:"chosen,omitempty"`
	Score      float64   `json:"score"`
	Metadata   string    `json:"metadata,omitempty"` // raw JSON string
	CreatedAt  time.Time `json:"created_at"`
}

// Stats summarizes the persisted memory for the dashboard sidebar.
type Stats struct {
	LTMCount         int     `json:"ltm_count"`
	VectorEmbeddings int     `json:"vector_embeddings"`
	MemorySizeMB     float64 `json:"memory_size_mb"`
}
