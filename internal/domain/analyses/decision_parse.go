package analyses

import (
	"strings"
)

// ParseDecisionMarkdown extracts a structured Decision from the free-text
// decision report the picker produces. Used as a fallback when the model
// returns prose instead of the JSON schema.
//
// Expected shape (classic report format):
//
//	The chosen company for investment is <name>.
//	<rationale paragraph>
//	The companies that were not selected are ...
//	<name>: <reason>
//	...
//	Overall, ...
func ParseDecisionMarkdown(text string) Decision {
	d := Decision{Markdown: text}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 {
		return d
	}

	first := strings.TrimSpace(lines[0])
	if strings.Contains(strings.ToLower(first), "chosen company") {
		if _, after, ok := strings.Cut(first, " is "); ok {
			d.Chosen = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(after), "."))
		}
	}

	// rationale: everything up to the rejected section, minus the first line
	var rationale []string
	rejectedAt := -1
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if strings.Contains(strings.ToLower(t), "companies that were not selected") {
			rejectedAt = i
			break
		}
		if i > 0 && t != "" {
			rationale = append(rationale, t)
		}
	}
	d.Rationale = strings.Join(rationale, " ")

	if rejectedAt < 0 {
		return d
	}
	for _, line := range lines[rejectedAt+1:] {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		low := strings.ToLower(t)
		if strings.HasPrefix(low, "overall,") || strings.HasPrefix(low, "in conclusion") {
			break
		}
		name, reason, ok := strings.Cut(t, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(strings.TrimLeft(name, "-* "))
		if name == "" {
			continue
		}
		d.Rejected = append(d.Rejected, RejectedCompany{
			Name:   name,
			Reason: strings.TrimSpace(reason),
		})
	}
	return d
}
