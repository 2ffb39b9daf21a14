package analyses

// TrendingCompany is a company that is trending in the news and attracting attention.
type TrendingCompany struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// TrendingCompanyList wraps the finder stage output.
type TrendingCompanyList struct {
	Companies []TrendingCompany `json:"companies"`
}

// CompanyResearch is a research report on a single trending company.
type CompanyResearch struct {
	Name                string `json:"name"`
	MarketPosition      string `json:"market_position"`
	FutureOutlook       string `json:"future_outlook"`
	InvestmentPotential string `json:"investment_potential"`
}

// ResearchReport wraps the researcher stage output.
type ResearchReport struct {
	Reports []CompanyResearch `json:"reports"`
}

// RejectedCompany is a researched company that was not selected, with the reason.
type RejectedCompany struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Decision is the final pick produced by the pipeline.
type Decision struct {
	Chosen    string            `json:"chosen"`
	Rationale string            `json:"rationale"`
	Rejected  []RejectedCompany `json:"rejected"`
	Markdown  string            `json:"markdown,omitempty"`
}

// Summary returns the one-line form used for notifications and list views.
func (d Decision) Summary() string {
	if d.Chosen == "" {
		return ""
	}
	return "The chosen company for investment is " + d.Chosen + "."
}
