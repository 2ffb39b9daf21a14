package prompt

import (
	"fmt"
	"strings"

	"github.com/finagents/stockpicker/internal/domain/search"
)

// FinderSystemPrompt provides strict directions and schema for the
// trending-company finder output.
func FinderSystemPrompt() string {
	return `You are a financial news analyst. Find companies that are trending in the latest news for the given sector. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Pick 2 or 3 companies that appear most prominently in the provided news results.
- Never include a company listed under "previously chosen"; always find new companies.
- reason must cite why the company is trending in the news right now.
- ticker is the stock ticker symbol; use the best-known symbol.

Schema (example with empty values):
{
  "companies": [
    {
      "name": "<string>",
      "ticker": "<string>",
      "reason": "<string>"
    }
  ]
}`
}

// FinderUserPrompt builds the user message around the sector, the search
// results, and the companies already chosen in past runs.
func FinderUserPrompt(sector string, results []search.Result, pastPicks []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sector: %s\n\n", sector)
	if len(pastPicks) > 0 {
		fmt.Fprintf(&b, "Previously chosen (do not pick again): %s\n\n", strings.Join(pastPicks, ", "))
	}
	b.WriteString("Latest news results:\n")
	writeResults(&b, results)
	b.WriteString("\nRespond with the JSON per schema.")
	return b.String()
}

func writeResults(b *strings.Builder, results []search.Result) {
	for i, r := range results {
		fmt.Fprintf(b, "%d. %s", i+1, r.Title)
		if r.Source != "" {
			fmt.Fprintf(b, " (%s)", r.Source)
		}
		b.WriteString("\n")
		if r.Snippet != "" {
			fmt.Fprintf(b, "   %s\n", r.Snippet)
		}
	}
}
