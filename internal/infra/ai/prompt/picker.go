package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	domain "github.com/finagents/stockpicker/internal/domain/analyses"
)

// PickerSystemPrompt provides strict directions and schema for the final
// investment decision.
func PickerSystemPrompt() string {
	return `You are a meticulous stock picker. From the research reports provided, choose exactly one company as the best investment. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- chosen is the name of exactly one company from the reports.
- Every company that was not chosen must appear in rejected with a concrete reason.
- markdown is the full decision report in plain text, starting with the line "The chosen company for investment is <name>." followed by the rationale and a section on the companies that were not selected.

Schema (example with empty values):
{
  "chosen": "<string>",
  "rationale": "<string>",
  "rejected": [
    {
      "name": "<string>",
      "reason": "<string>"
    }
  ],
  "markdown": "<string>"
}`
}

// PickerUserPrompt builds the user message around the full research report.
func PickerUserPrompt(sector string, report domain.ResearchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sector: %s\n\nResearch reports:\n", sector)
	bs, _ := json.MarshalIndent(report, "", "  ")
	b.Write(bs)
	b.WriteString("\n\nRespond with the JSON per schema.")
	return b.String()
}
