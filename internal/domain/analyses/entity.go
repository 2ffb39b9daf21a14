package analyses

import (
	"time"
)

// ID tipe untuk Analysis
type AnalysisID string

// Sector enum (mirrors the selectable sectors in the dashboard)
type Sector string

const (
	SectorTechnology         Sector = "Technology"
	SectorFinance            Sector = "Finance"
	SectorHealthcare         Sector = "Healthcare"
	SectorEnergy             Sector = "Energy"
	SectorConsumerGoods      Sector = "Consumer Goods"
	SectorRealEstate         Sector = "Real Estate"
	SectorTransportation     Sector = "Transportation"
	SectorTelecommunications Sector = "Telecommunications"
	SectorUtilities          Sector = "Utilities"
	SectorMaterials          Sector = "Materials"
)

// Sectors lists every selectable sector in a stable order.
func Sectors() []Sector {
	return []Sector{
		SectorTechnology, SectorFinance, SectorHealthcare, SectorEnergy,
		SectorConsumerGoods, SectorRealEstate, SectorTransportation,
		SectorTelecommunications, SectorUtilities, SectorMaterials,
	}
}

// ValidSector reports whether s is one of the selectable sectors.
func ValidSector(s string) bool {
	for _, v := range Sectors() {
		if string(v) == s {
			return true
		}
	}
	return false
}

// Status enum
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StageCounts value object: how far the pipeline got
type StageCounts struct {
	Companies  int `json:"companies"`
	Researched int `json:"researched"`
	Rejected   int `json:"rejected"`
}

// ArtifactURLs points at the three stored report artifacts
type ArtifactURLs struct {
	Trending string `json:"trending,omitempty"`
	Research string `json:"research,omitempty"`
	Decision string `json:"decision,omitempty"`
}

// Aggregate Root: Analysis
type Analysis struct {
	ID              AnalysisID   `json:"id"`
	TenantID        string       `json:"tenant_id"`
	TriggeredAt     time.Time    `json:"triggered_at"`
	Sector          Sector       `json:"sector"`
	Status          Status       `json:"status"`
	Model           string       `json:"model,omitempty"`
	Counts          StageCounts  `json:"counts"`
	Chosen          string       `json:"chosen,omitempty"`
	DecisionSummary string       `json:"decision_summary,omitempty"`
	Artifacts       ArtifactURLs `json:"artifacts"`
	DurationMS      int64        `json:"duration_ms"`
	Metadata        any          `json:"metadata,omitempty"`
}
