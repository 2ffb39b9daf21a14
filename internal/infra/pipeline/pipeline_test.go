package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/finagents/stockpicker/internal/domain/analyses"
	"github.com/finagents/stockpicker/internal/domain/memory"
	"github.com/finagents/stockpicker/internal/domain/search"
)

type llmCall struct {
	system string
	user   string
}

type fakeLLM struct {
	responses []string
	calls     []llmCall
	err       error
}

func (f *fakeLLM) CompleteJSON(_ context.Context, system, user string) (string, error) {
	f.calls = append(f.calls, llmCall{system: system, user: user})
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fakeLLM: no responses left")
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r, nil
}

func (f *fakeLLM) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("not implemented")
}

type fakeSearch struct {
	newsQueries   []string
	searchQueries []string
}

func (f *fakeSearch) Search(_ context.Context, query string, _ int) ([]search.Result, error) {
	f.searchQueries = append(f.searchQueries, query)
	return []search.Result{{Title: "result for " + query, Link: "https://example.com"}}, nil
}

func (f *fakeSearch) News(_ context.Context, query string, _ int) ([]search.Result, error) {
	f.newsQueries = append(f.newsQueries, query)
	return []search.Result{{Title: "news for " + query, Link: "https://example.com", Source: "Example Wire"}}, nil
}

type fakeNotifier struct {
	titles   []string
	messages []string
	err      error
}

func (f *fakeNotifier) Push(_ context.Context, title, message string) error {
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
	return f.err
}

func (f *fakeNotifier) Enabled() bool { return true }

type fakeLongTerm struct {
	picks []string
	err   error
}

func (f *fakeLongTerm) Append(context.Context, *memory.Record) error { return nil }
func (f *fakeLongTerm) Recent(context.Context, string, int) ([]*memory.Record, error) {
	return nil, nil
}
func (f *fakeLongTerm) PastPicks(context.Context, string, string, int) ([]string, error) {
	return f.picks, f.err
}
func (f *fakeLongTerm) Count(context.Context, string) (int, error) { return len(f.picks), nil }
func (f *fakeLongTerm) SizeBytes(context.Context) (int64, error)   { return 0, nil }

func runRequest() domain.RunRequest {
	return domain.RunRequest{
		AnalysisID: "00000000-0000-0000-0000-000000000000-technology",
		TenantID:   "default",
		Sector:     domain.SectorTechnology,
	}
}

func TestPipelineRun(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"companies":[
			{"name":"Vertex Labs","ticker":"VRTL","reason":"AI accelerator demand"},
			{"name":"Orbit Semiconductors","ticker":"ORBT","reason":"new fab announcement"}]}`,
		`{"name":"Vertex Labs","market_position":"leader","future_outlook":"strong","investment_potential":"high"}`,
		`{"name":"Orbit Semiconductors","market_position":"challenger","future_outlook":"mixed","investment_potential":"medium"}`,
		`{"chosen":"Vertex Labs","rationale":"Best growth in the cohort.","rejected":[]}`,
	}}
	searcher := &fakeSearch{}
	notifier := &fakeNotifier{}
	longTerm := &fakeLongTerm{picks: []string{"Nimbus Grid"}}

	p := New(llm, searcher, notifier, longTerm, "gpt-4o-mini")
	res, err := p.Run(context.Background(), runRequest())
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", res.Model)
	assert.Equal(t, "Vertex Labs", res.Decision.Chosen)

	counts := res.Counts()
	assert.Equal(t, 2, counts.Companies)
	assert.Equal(t, 2, counts.Researched)
	// every non-chosen company ends up rejected even when the model omits it
	assert.Equal(t, counts.Companies-1, counts.Rejected)
	require.Len(t, res.Decision.Rejected, 1)
	assert.Equal(t, "Orbit Semiconductors", res.Decision.Rejected[0].Name)

	// finder sees the sector news search and the past picks
	require.Len(t, searcher.newsQueries, 1)
	assert.Contains(t, searcher.newsQueries[0], "Technology")
	require.NotEmpty(t, llm.calls)
	assert.Contains(t, llm.calls[0].user, "Nimbus Grid")

	// one per-company search each
	assert.Len(t, searcher.searchQueries, 2)
	assert.Contains(t, searcher.searchQueries[0], "Vertex Labs")

	// push notification carries the one-line decision
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "The chosen company for investment is Vertex Labs.", notifier.messages[0])
}

func TestPipelineRun_RejectedExcludesChosen(t *testing.T) {
	// the picker sometimes lists the chosen company in rejected too;
	// the final decision must not name a company as both
	llm := &fakeLLM{responses: []string{
		`{"companies":[
			{"name":"Vertex Labs","ticker":"VRTL","reason":"AI accelerator demand"},
			{"name":"Orbit Semiconductors","ticker":"ORBT","reason":"new fab announcement"}]}`,
		`{"name":"Vertex Labs","market_position":"leader","future_outlook":"strong","investment_potential":"high"}`,
		`{"name":"Orbit Semiconductors","market_position":"challenger","future_outlook":"mixed","investment_potential":"medium"}`,
		`{"chosen":"Vertex Labs","rationale":"Best growth in the cohort.","rejected":[
			{"name":"Vertex Labs","reason":"close call"},
			{"name":"Orbit Semiconductors","reason":"cyclical"},
			{"name":"Orbit Semiconductors","reason":"duplicate entry"},
			{"name":"Phantom Corp","reason":"never researched"}]}`,
	}}
	p := New(llm, &fakeSearch{}, &fakeNotifier{}, &fakeLongTerm{}, "gpt-4o-mini")

	res, err := p.Run(context.Background(), runRequest())
	require.NoError(t, err)

	require.Len(t, res.Decision.Rejected, 1)
	assert.Equal(t, "Orbit Semiconductors", res.Decision.Rejected[0].Name)
	assert.Equal(t, "cyclical", res.Decision.Rejected[0].Reason)

	counts := res.Counts()
	assert.Equal(t, 2, counts.Companies)
	assert.Equal(t, counts.Companies-1, counts.Rejected)
}

func TestPipelineRun_CapsCompanies(t *testing.T) {
	companies := `{"companies":[`
	for i := 0; i < 5; i++ {
		if i > 0 {
			companies += ","
		}
		companies += fmt.Sprintf(`{"name":"Company %d","ticker":"C%d","reason":"r"}`, i, i)
	}
	companies += `]}`

	responses := []string{companies}
	for i := 0; i < maxCompanies; i++ {
		responses = append(responses, fmt.Sprintf(`{"name":"Company %d","market_position":"p","future_outlook":"o","investment_potential":"i"}`, i))
	}
	responses = append(responses, `{"chosen":"Company 0","rationale":"r","rejected":[]}`)

	llm := &fakeLLM{responses: responses}
	p := New(llm, &fakeSearch{}, &fakeNotifier{}, &fakeLongTerm{}, "gpt-4o-mini")

	res, err := p.Run(context.Background(), runRequest())
	require.NoError(t, err)
	assert.Equal(t, maxCompanies, len(res.Trending.Companies))
	assert.Equal(t, maxCompanies, len(res.Research.Reports))
}

func TestPipelineRun_MarkdownFallback(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"companies":[{"name":"Solaris Energy","ticker":"SOLR","reason":"grid buildout"}]}`,
		`{"name":"Solaris Energy","market_position":"p","future_outlook":"o","investment_potential":"i"}`,
		// picker ignored the schema and returned prose only
		`{"markdown":"The chosen company for investment is Solaris Energy.\nBest positioned for the grid buildout."}`,
	}}
	p := New(llm, &fakeSearch{}, &fakeNotifier{}, &fakeLongTerm{}, "gpt-4o-mini")

	res, err := p.Run(context.Background(), runRequest())
	require.NoError(t, err)
	assert.Equal(t, "Solaris Energy", res.Decision.Chosen)
	assert.Contains(t, res.Decision.Rationale, "grid buildout")
}

func TestPipelineRun_NoCompanies(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{"companies":[]}`}}
	p := New(llm, &fakeSearch{}, &fakeNotifier{}, &fakeLongTerm{}, "gpt-4o-mini")

	_, err := p.Run(context.Background(), runRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finder stage")
}

func TestPipelineRun_LLMError(t *testing.T) {
	llmErr := errors.New("boom")
	p := New(&fakeLLM{err: llmErr}, &fakeSearch{}, &fakeNotifier{}, &fakeLongTerm{}, "gpt-4o-mini")

	_, err := p.Run(context.Background(), runRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, llmErr)
}

func TestPipelineRun_NotifierFailureIsNonFatal(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"companies":[{"name":"Vertex Labs","ticker":"VRTL","reason":"r"}]}`,
		`{"name":"Vertex Labs","market_position":"p","future_outlook":"o","investment_potential":"i"}`,
		`{"chosen":"Vertex Labs","rationale":"r","rejected":[]}`,
	}}
	notifier := &fakeNotifier{err: errors.New("pushover down")}
	p := New(llm, &fakeSearch{}, notifier, &fakeLongTerm{}, "gpt-4o-mini")

	res, err := p.Run(context.Background(), runRequest())
	require.NoError(t, err)
	assert.Equal(t, "Vertex Labs", res.Decision.Chosen)
}

func TestDecodeJSON_CodeFences(t *testing.T) {
	var out domain.TrendingCompanyList
	raw := "```json\n{\"companies\":[{\"name\":\"A\",\"ticker\":\"A\",\"reason\":\"r\"}]}\n```"
	require.NoError(t, decodeJSON(raw, &out))
	require.Len(t, out.Companies, 1)
	assert.Equal(t, "A", out.Companies[0].Name)
}
