package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/finagents/stockpicker/internal/domain/analyses"
	"github.com/finagents/stockpicker/internal/domain/memory"
	"github.com/finagents/stockpicker/internal/domain/runerrors"
)

// Service implements use-cases untuk Analysis
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo      domain.Repository
	Pipeline  domain.Pipeline
	Artifacts domain.ArtifactStore
	LongTerm  memory.LongTermStore
	Vectors   memory.VectorStore
	RunErrors runerrors.Repository
	Clock     Clock
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

//
// ==== USE CASES ====
//

// Command untuk trigger analysis
type TriggerAnalysisCommand struct {
	TenantID string
	Sector   string
	Metadata any
}

type TriggerAnalysisResult struct {
	ID              string              `json:"id"`
	Status          string              `json:"status"`
	Sector          string              `json:"sector"`
	Chosen          string              `json:"chosen,omitempty"`
	DecisionSummary string              `json:"decision_summary,omitempty"`
	Counts          domain.StageCounts  `json:"counts"`
	Artifacts       domain.ArtifactURLs `json:"artifacts"`
	DurationMS      int64               `json:"duration_ms"`
}

// NewAnalysisID membuat id unik: uuid + sector slug
func NewAnalysisID(sector string) domain.AnalysisID {
	slug := strings.ToLower(strings.ReplaceAll(sector, " ", "-"))
	return domain.AnalysisID(fmt.Sprintf("%s-%s", uuid.New().String(), slug))
}

// Enqueue membuat row queued supaya follow-up GET selalu menemukan analysis,
// lalu caller menjalankan RunToCompletion di goroutine.
func (s *Service) Enqueue(ctx context.Context, cmd TriggerAnalysisCommand) (*domain.Analysis, error) {
	if !domain.ValidSector(cmd.Sector) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSector, cmd.Sector)
	}
	a := &domain.Analysis{
		ID:          NewAnalysisID(cmd.Sector),
		TenantID:    cmd.TenantID,
		TriggeredAt: s.Clock.Now(),
		Sector:      domain.Sector(cmd.Sector),
		Status:      domain.StatusQueued,
		Metadata:    cmd.Metadata,
	}
	if err := s.Repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RunToCompletion jalanin pipeline dengan context.Background()
// cocok dipanggil dari goroutine di router supaya gak kena context canceled
func (s *Service) RunToCompletion(a *domain.Analysis) (TriggerAnalysisResult, error) {
	return s.Run(context.Background(), a)
}

// Run jalankan pipeline → simpan artifacts → update repo → append memory
func (s *Service) Run(ctx context.Context, a *domain.Analysis) (TriggerAnalysisResult, error) {
	id := a.ID
	_ = s.Repo.UpdateStatus(ctx, a.TenantID, id, domain.StatusRunning)

	res, err := s.Pipeline.Run(ctx, domain.RunRequest{
		AnalysisID: id,
		TenantID:   a.TenantID,
		Sector:     a.Sector,
	})
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), a.TenantID, id, domain.StatusFailed)
		s.recordError(a, "pipeline", err)
		return TriggerAnalysisResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}

	urls, err := s.storeArtifacts(ctx, a.TenantID, id, res)
	if err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), a.TenantID, id, domain.StatusFailed)
		s.recordError(a, "persist", err)
		return TriggerAnalysisResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}

	updated := &domain.Analysis{
		ID:              id,
		TenantID:        a.TenantID,
		TriggeredAt:     a.TriggeredAt,
		Sector:          a.Sector,
		Status:          domain.StatusSuccess,
		Model:           res.Model,
		Counts:          res.Counts(),
		Chosen:          res.Decision.Chosen,
		DecisionSummary: res.Decision.Summary(),
		Artifacts:       urls,
		DurationMS:      res.DurationMS,
		Metadata:        a.Metadata,
	}
	if err := s.Repo.Save(ctx, updated); err != nil {
		_ = s.Repo.UpdateStatus(context.Background(), a.TenantID, id, domain.StatusFailed)
		s.recordError(a, "persist", err)
		return TriggerAnalysisResult{ID: string(id), Status: string(domain.StatusFailed)}, err
	}

	// memory writes are best-effort: a failed append must not fail the analysis
	s.remember(ctx, updated, res)

	return TriggerAnalysisResult{
		ID:              string(id),
		Status:          string(updated.Status),
		Sector:          string(updated.Sector),
		Chosen:          updated.Chosen,
		DecisionSummary: updated.DecisionSummary,
		Counts:          updated.Counts,
		Artifacts:       updated.Artifacts,
		DurationMS:      updated.DurationMS,
	}, nil
}

// storeArtifacts tulis 3 report artifacts ke store
func (s *Service) storeArtifacts(ctx context.Context, tenant string, id domain.AnalysisID, res domain.RunResult) (domain.ArtifactURLs, error) {
	var urls domain.ArtifactURLs

	trending, err := json.MarshalIndent(res.Trending, "", "  ")
	if err != nil {
		return urls, fmt.Errorf("marshal trending companies: %w", err)
	}
	research, err := json.MarshalIndent(res.Research, "", "  ")
	if err != nil {
		return urls, fmt.Errorf("marshal research report: %w", err)
	}

	prefix := fmt.Sprintf("%s/%s", tenant, id)
	if urls.Trending, err = s.Artifacts.Put(ctx, prefix+"/trending_companies.json", trending, "application/json"); err != nil {
		return urls, fmt.Errorf("store trending companies: %w", err)
	}
	if urls.Research, err = s.Artifacts.Put(ctx, prefix+"/research_report.json", research, "application/json"); err != nil {
		return urls, fmt.Errorf("store research report: %w", err)
	}
	md := res.Decision.Markdown
	if md == "" {
		md = res.Decision.Summary() + "\n\n" + res.Decision.Rationale
	}
	if urls.Decision, err = s.Artifacts.Put(ctx, prefix+"/decision.md", []byte(md), "text/markdown"); err != nil {
		return urls, fmt.Errorf("store decision: %w", err)
	}
	return urls, nil
}

// remember append long-term record + vector doc untuk analysis yang sukses
func (s *Service) remember(ctx context.Context, a *domain.Analysis, res domain.RunResult) {
	meta, _ := json.Marshal(map[string]any{
		"companies": res.Counts().Companies,
		"model":     res.Model,
	})
	rec := &memory.Record{
		TenantID:   a.TenantID,
		AnalysisID: string(a.ID),
		Sector:     string(a.Sector),
		Task:       fmt.Sprintf("Pick the best stock in the %s sector", a.Sector),
		Chosen:     a.Chosen,
		Score:      1.0,
		Metadata:   string(meta),
		CreatedAt:  a.TriggeredAt,
	}
	if s.LongTerm != nil {
		if err := s.LongTerm.Append(ctx, rec); err != nil {
			log.Printf("memory append failed for analysis=%s: %v", a.ID, err)
		}
	}
	if s.Vectors != nil {
		content := fmt.Sprintf("Sector: %s. Chosen: %s. %s", a.Sector, a.Chosen, res.Decision.Rationale)
		err := s.Vectors.Upsert(ctx, string(a.ID), content, map[string]string{
			"tenant": a.TenantID,
			"sector": string(a.Sector),
			"chosen": a.Chosen,
		})
		if err != nil {
			log.Printf("vector upsert failed for analysis=%s: %v", a.ID, err)
		}
	}
}

func (s *Service) recordError(a *domain.Analysis, stage string, err error) {
	if s.RunErrors == nil {
		return
	}
	e := &runerrors.RunError{
		TenantID:   a.TenantID,
		AnalysisID: string(a.ID),
		Sector:     string(a.Sector),
		Stage:      stage,
		Message:    err.Error(),
		CreatedAt:  s.Clock.Now(),
	}
	if serr := s.RunErrors.Save(context.Background(), e); serr != nil {
		log.Printf("run error save failed for analysis=%s: %v", a.ID, serr)
	}
}

// Latest ambil N analyses terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Paginate list analyses dengan filter sector/status
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]any) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize, filters)
}

// Summary rekap hasil analyses N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return s.Repo.Summary(ctx, tenant, sinceDays)
}

// Errors ambil pipeline error untuk 1 analysis
func (s *Service) Errors(ctx context.Context, tenant string, id domain.AnalysisID, limit int) ([]*runerrors.RunError, error) {
	if s.RunErrors == nil {
		return nil, nil
	}
	return s.RunErrors.ListByAnalysis(ctx, tenant, string(id), limit)
}
