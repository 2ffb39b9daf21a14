package analyses

// RunRequest untuk Pipeline
type RunRequest struct {
	AnalysisID AnalysisID
	TenantID   string
	Sector     Sector
}

// RunResult hasil dari Pipeline
type RunResult struct {
	Trending   TrendingCompanyList
	Research   ResearchReport
	Decision   Decision
	Model      string
	DurationMS int64
}

// Counts derives the stage counters from the structured results.
func (r RunResult) Counts() StageCounts {
	return StageCounts{
		Companies:  len(r.Trending.Companies),
		Researched: len(r.Research.Reports),
		Rejected:   len(r.Decision.Rejected),
	}
}
