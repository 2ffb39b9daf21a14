package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalyses "github.com/finagents/stockpicker/internal/application/analyses"
	appmemory "github.com/finagents/stockpicker/internal/application/memory"
	domain "github.com/finagents/stockpicker/internal/domain/analyses"
	sqlitedb "github.com/finagents/stockpicker/internal/infra/db/sqlite"
	"github.com/finagents/stockpicker/internal/infra/storage"
)

type stubPipeline struct {
	res domain.RunResult
	err error
}

func (s *stubPipeline) Run(context.Context, domain.RunRequest) (domain.RunResult, error) {
	return s.res, s.err
}

func newTestServer(t *testing.T, pipe domain.Pipeline) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := sqlitedb.Connect(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	memRepo := sqlitedb.NewMemoryRepository(db, path)
	svc := &appanalyses.Service{
		Repo:      sqlitedb.NewAnalysisRepository(db),
		Pipeline:  pipe,
		Artifacts: storage.NewLocal(filepath.Join(dir, "output")),
		LongTerm:  memRepo,
		RunErrors: sqlitedb.NewRunErrorRepository(db),
		Clock:     appanalyses.SystemClock{},
	}
	memSvc := appmemory.NewService(memRepo, nil)

	srv := httptest.NewServer(NewRouter(svc, memSvc))
	t.Cleanup(srv.Close)
	return srv
}

func pickedResult() domain.RunResult {
	return domain.RunResult{
		Trending: domain.TrendingCompanyList{Companies: []domain.TrendingCompany{
			{Name: "Vertex Labs", Ticker: "VRTL", Reason: "AI demand"},
			{Name: "Orbit Semiconductors", Ticker: "ORBT", Reason: "new fab"},
		}},
		Research: domain.ResearchReport{Reports: []domain.CompanyResearch{
			{Name: "Vertex Labs"}, {Name: "Orbit Semiconductors"},
		}},
		Decision: domain.Decision{
			Chosen:    "Vertex Labs",
			Rationale: "Best growth in the cohort.",
			Rejected:  []domain.RejectedCompany{{Name: "Orbit Semiconductors", Reason: "cyclical"}},
		},
		Model: "gpt-4o-mini",
	}
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSectorsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{})

	resp, err := http.Get(srv.URL + "/sectors")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Sectors []string `json:"sectors"`
	}
	decode(t, resp, &body)
	assert.Len(t, body.Sectors, 10)
	assert.Contains(t, body.Sectors, "Technology")
	assert.Contains(t, body.Sectors, "Consumer Goods")
}

func TestTriggerAndFetchAnalysis(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{res: pickedResult()})

	resp := postJSON(t, srv.URL+"/v1/default/analyses", map[string]string{"sector": "Technology"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var started struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, resp, &started)
	require.NotEmpty(t, started.ID)
	assert.Equal(t, "queued", started.Status)

	// the pipeline runs in the background; poll until it lands
	var got domain.Analysis
	require.Eventually(t, func() bool {
		r, err := http.Get(srv.URL + "/v1/default/analyses/" + started.ID)
		if err != nil || r.StatusCode != http.StatusOK {
			return false
		}
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			return false
		}
		return got.Status == domain.StatusSuccess
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, "Vertex Labs", got.Chosen)
	assert.Equal(t, "The chosen company for investment is Vertex Labs.", got.DecisionSummary)
	assert.Equal(t, 2, got.Counts.Companies)
	assert.Equal(t, 1, got.Counts.Rejected)
	assert.NotEmpty(t, got.Artifacts.Decision)
}

func TestTriggerInvalidSector(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{})

	resp := postJSON(t, srv.URL+"/v1/default/analyses", map[string]string{"sector": "Crypto"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTriggerInvalidTenant(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{})

	resp := postJSON(t, srv.URL+"/v1/bad.tenant/analyses", map[string]string{"sector": "Technology"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "tenant")
	assert.NotContains(t, string(b), "invalid sector")
}

func TestGetUnknownAnalysis(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{})

	resp, err := http.Get(srv.URL + "/v1/default/analyses/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLatestAndSummaryAfterRun(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{res: pickedResult()})

	resp := postJSON(t, srv.URL+"/v1/default/analyses", map[string]string{"sector": "Technology"})
	var started struct {
		ID string `json:"id"`
	}
	decode(t, resp, &started)

	require.Eventually(t, func() bool {
		r, err := http.Get(srv.URL + "/v1/default/analyses/" + started.ID)
		if err != nil {
			return false
		}
		defer r.Body.Close()
		var a domain.Analysis
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			return false
		}
		return a.Status == domain.StatusSuccess
	}, 5*time.Second, 20*time.Millisecond)

	r, err := http.Get(srv.URL + "/v1/default/analyses/latest?limit=5")
	require.NoError(t, err)
	var latest []domain.Analysis
	decode(t, r, &latest)
	require.Len(t, latest, 1)
	assert.Equal(t, "Vertex Labs", latest[0].Chosen)

	r, err = http.Get(srv.URL + "/v1/default/summary?days=7")
	require.NoError(t, err)
	var summary domain.Summary
	decode(t, r, &summary)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, "Vertex Labs", summary.LastPick)

	// tenant isolation: another tenant sees nothing
	r, err = http.Get(srv.URL + "/v1/other/analyses/latest")
	require.NoError(t, err)
	var other []domain.Analysis
	decode(t, r, &other)
	assert.Empty(t, other)
}

func TestMemoryStatsGrowAfterRun(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{res: pickedResult()})

	r, err := http.Get(srv.URL + "/v1/default/memory/stats")
	require.NoError(t, err)
	var before struct {
		LTMCount int `json:"ltm_count"`
	}
	decode(t, r, &before)
	assert.Zero(t, before.LTMCount)

	resp := postJSON(t, srv.URL+"/v1/default/analyses", map[string]string{"sector": "Technology"})
	var started struct {
		ID string `json:"id"`
	}
	decode(t, resp, &started)

	require.Eventually(t, func() bool {
		r, err := http.Get(srv.URL + "/v1/default/memory/stats")
		if err != nil {
			return false
		}
		defer r.Body.Close()
		var after struct {
			LTMCount int `json:"ltm_count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&after); err != nil {
			return false
		}
		return after.LTMCount == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestMemoryRecallRequiresQuery(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{})

	resp, err := http.Get(srv.URL + "/v1/default/memory/recall")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIndexServesUI(t *testing.T) {
	srv := newTestServer(t, &stubPipeline{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
