package prompt

import (
	"fmt"
	"strings"

	"github.com/finagents/stockpicker/internal/domain/search"
)

// ResearcherSystemPrompt provides strict directions and schema for a single
// company research report.
func ResearcherSystemPrompt() string {
	return `You are a financial researcher. Produce a comprehensive research report for one company. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- market_position covers current market position and competitive analysis.
- future_outlook covers future outlook and growth potential.
- investment_potential covers investment potential and suitability for investment.
- Base your report on the provided search results; be conservative where evidence is thin.

Schema (example with empty values):
{
  "name": "<string>",
  "market_position": "<string>",
  "future_outlook": "<string>",
  "investment_potential": "<string>"
}`
}

// ResearcherUserPrompt builds the user message for one company.
func ResearcherUserPrompt(name, ticker, sector string, results []search.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s), sector: %s\n\n", name, ticker, sector)
	b.WriteString("Search results:\n")
	writeResults(&b, results)
	b.WriteString("\nRespond with the JSON per schema.")
	return b.String()
}
