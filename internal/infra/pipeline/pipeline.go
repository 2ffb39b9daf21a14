package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	domai "github.com/finagents/stockpicker/internal/domain/ai"
	domain "github.com/finagents/stockpicker/internal/domain/analyses"
	"github.com/finagents/stockpicker/internal/domain/memory"
	"github.com/finagents/stockpicker/internal/domain/notify"
	"github.com/finagents/stockpicker/internal/domain/search"
	"github.com/finagents/stockpicker/internal/infra/ai/prompt"
)

const (
	maxCompanies   = 3
	newsResults    = 10
	companyResults = 5
	pastPicksLimit = 10
)

// Pipeline runs the three agents in sequence:
// finder -> researcher (per company) -> picker.
type Pipeline struct {
	LLM      domai.Client
	Search   search.Client
	Notifier notify.Notifier
	LongTerm memory.LongTermStore
	Model    string
}

var _ domain.Pipeline = (*Pipeline)(nil)

func New(llm domai.Client, searcher search.Client, notifier notify.Notifier, longTerm memory.LongTermStore, model string) *Pipeline {
	return &Pipeline{LLM: llm, Search: searcher, Notifier: notifier, LongTerm: longTerm, Model: model}
}

func (p *Pipeline) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	start := time.Now()
	var res domain.RunResult
	res.Model = p.Model

	trending, err := p.findTrending(ctx, req)
	if err != nil {
		return res, fmt.Errorf("finder stage: %w", err)
	}
	res.Trending = trending

	report, err := p.research(ctx, req, trending)
	if err != nil {
		return res, fmt.Errorf("researcher stage: %w", err)
	}
	res.Research = report

	decision, err := p.pick(ctx, req, report)
	if err != nil {
		return res, fmt.Errorf("picker stage: %w", err)
	}
	res.Decision = decision

	// notification is best-effort
	if p.Notifier != nil && p.Notifier.Enabled() {
		if err := p.Notifier.Push(ctx, "Stock Picker", decision.Summary()); err != nil {
			log.Printf("push notification failed for analysis=%s: %v", req.AnalysisID, err)
		}
	}

	res.DurationMS = time.Since(start).Milliseconds()
	return res, nil
}

// findTrending: news search + memory of past picks -> TrendingCompanyList
func (p *Pipeline) findTrending(ctx context.Context, req domain.RunRequest) (domain.TrendingCompanyList, error) {
	var out domain.TrendingCompanyList

	query := fmt.Sprintf("trending %s sector companies stock market news", req.Sector)
	results, err := p.Search.News(ctx, query, newsResults)
	if err != nil {
		return out, err
	}

	var pastPicks []string
	if p.LongTerm != nil {
		pastPicks, err = p.LongTerm.PastPicks(ctx, req.TenantID, string(req.Sector), pastPicksLimit)
		if err != nil {
			// memory is advisory for the finder; keep going without it
			log.Printf("past picks lookup failed for analysis=%s: %v", req.AnalysisID, err)
		}
	}

	raw, err := p.LLM.CompleteJSON(ctx, prompt.FinderSystemPrompt(), prompt.FinderUserPrompt(string(req.Sector), results, pastPicks))
	if err != nil {
		return out, err
	}
	if err := decodeJSON(raw, &out); err != nil {
		return out, err
	}
	if len(out.Companies) == 0 {
		return out, fmt.Errorf("no trending companies found for sector %s", req.Sector)
	}
	if len(out.Companies) > maxCompanies {
		out.Companies = out.Companies[:maxCompanies]
	}
	return out, nil
}

// research: per-company search + report
func (p *Pipeline) research(ctx context.Context, req domain.RunRequest, trending domain.TrendingCompanyList) (domain.ResearchReport, error) {
	var report domain.ResearchReport
	for _, c := range trending.Companies {
		query := fmt.Sprintf("%s %s stock financial news", c.Name, c.Ticker)
		results, err := p.Search.Search(ctx, query, companyResults)
		if err != nil {
			return report, fmt.Errorf("search for %s: %w", c.Name, err)
		}
		raw, err := p.LLM.CompleteJSON(ctx, prompt.ResearcherSystemPrompt(), prompt.ResearcherUserPrompt(c.Name, c.Ticker, string(req.Sector), results))
		if err != nil {
			return report, fmt.Errorf("research for %s: %w", c.Name, err)
		}
		var r domain.CompanyResearch
		if err := decodeJSON(raw, &r); err != nil {
			return report, fmt.Errorf("research for %s: %w", c.Name, err)
		}
		if r.Name == "" {
			r.Name = c.Name
		}
		report.Reports = append(report.Reports, r)
	}
	return report, nil
}

// pick: decision over the research report
func (p *Pipeline) pick(ctx context.Context, req domain.RunRequest, report domain.ResearchReport) (domain.Decision, error) {
	var d domain.Decision
	raw, err := p.LLM.CompleteJSON(ctx, prompt.PickerSystemPrompt(), prompt.PickerUserPrompt(string(req.Sector), report))
	if err != nil {
		return d, err
	}
	if err := decodeJSON(raw, &d); err != nil {
		return d, err
	}
	if d.Chosen == "" && d.Markdown != "" {
		d = domain.ParseDecisionMarkdown(d.Markdown)
	}
	if d.Chosen == "" {
		return d, fmt.Errorf("picker produced no chosen company")
	}
	fillRejected(&d, report)
	return d, nil
}

// fillRejected reconciles the model's rejected list with the report:
// rejected holds exactly the researched companies that were not chosen.
func fillRejected(d *domain.Decision, report domain.ResearchReport) {
	researched := make(map[string]bool, len(report.Reports))
	for _, r := range report.Reports {
		researched[strings.ToLower(r.Name)] = true
	}

	// drop the chosen company, unknown names, and duplicates
	seen := make(map[string]bool, len(d.Rejected))
	kept := d.Rejected[:0]
	for _, r := range d.Rejected {
		key := strings.ToLower(r.Name)
		if strings.EqualFold(r.Name, d.Chosen) || !researched[key] || seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, r)
	}
	d.Rejected = kept

	for _, r := range report.Reports {
		if strings.EqualFold(r.Name, d.Chosen) || seen[strings.ToLower(r.Name)] {
			continue
		}
		d.Rejected = append(d.Rejected, domain.RejectedCompany{
			Name:   r.Name,
			Reason: "Not selected in the final decision",
		})
	}
}

// decodeJSON tolerates code fences some models still emit
func decodeJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), v); err != nil {
		return fmt.Errorf("decoding model output: %w", err)
	}
	return nil
}
