package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appanalyses "github.com/finagents/stockpicker/internal/application/analyses"
	appmemory "github.com/finagents/stockpicker/internal/application/memory"
	domai "github.com/finagents/stockpicker/internal/domain/ai"
	domain "github.com/finagents/stockpicker/internal/domain/analyses"
	"github.com/finagents/stockpicker/internal/middleware"
)

type Router struct {
	analysesSvc *appanalyses.Service
	memorySvc   *appmemory.Service
}

func NewRouter(analysesSvc *appanalyses.Service, memorySvc *appmemory.Service) http.Handler {
	r := &Router{analysesSvc: analysesSvc, memorySvc: memorySvc}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Get("/sectors", r.wrap(r.handleSectors))
	mux.Get("/", r.handleIndex)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/analyses", r.wrap(r.handleTrigger))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses/{id}/errors", r.wrap(r.handleErrors))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Get("/memory/stats", r.wrap(r.handleMemoryStats))
		rt.Get("/memory/recall", r.wrap(r.handleMemoryRecall))
		rt.Get("/memory/recent", r.wrap(r.handleMemoryRecent))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows) || errors.Is(err, domain.ErrNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, domain.ErrInvalidSector) || errors.Is(err, domain.ErrBadRequest):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// GET /sectors
func (r *Router) handleSectors(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, map[string]any{"sectors": domain.Sectors()})
}

// POST /v1/{tenant}/analyses
// Body: {"sector": "Technology"}
// The analysis runs in the background; the response carries the queued id.
func (r *Router) handleTrigger(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}

	var body struct {
		Sector   string `json:"sector"`
		Metadata any    `json:"metadata"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateSector(body.Sector); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSector, body.Sector)
	}

	a, err := r.analysesSvc.Enqueue(req.Context(), appanalyses.TriggerAnalysisCommand{
		TenantID: tenant,
		Sector:   body.Sector,
		Metadata: body.Metadata,
	})
	if err != nil {
		return err
	}

	// 🚀 Jalankan di background, biar jalan sampai selesai
	go func() {
		middleware.IncrementAnalyses()
		middleware.IncrementAnalysesRunning()
		defer middleware.DecrementAnalysesRunning()

		result, err := r.analysesSvc.RunToCompletion(a)
		if err != nil {
			middleware.IncrementAnalysesFailed()
			log.Printf("background analysis error for tenant=%s sector=%s: %v",
				tenant, body.Sector, err)
			return
		}
		log.Printf("analysis finished: tenant=%s sector=%s chosen=%q",
			tenant, body.Sector, result.Chosen)
	}()

	// 🔙 langsung balikin respons ke client
	resp := map[string]any{
		"id":       string(a.ID),
		"status":   string(a.Status),
		"tenant":   tenant,
		"sector":   body.Sector,
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}
	return writeJSON(w, resp)
}

// GET /v1/{tenant}/analyses?page=&page_size=&sector=&status=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	filters := map[string]any{}
	if v := req.URL.Query().Get("sector"); v != "" {
		filters["sector"] = v
	}
	if v := req.URL.Query().Get("status"); v != "" {
		filters["status"] = v
	}

	list, err := r.analysesSvc.Paginate(req.Context(), tenant, page, size, filters)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysesSvc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	a, err := r.analysesSvc.Get(req.Context(), tenant, domain.AnalysisID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, a)
}

// GET /v1/{tenant}/analyses/{id}/errors?limit=20
func (r *Router) handleErrors(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysesSvc.Errors(req.Context(), tenant, domain.AnalysisID(id), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.analysesSvc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}
	return writeJSON(w, summary)
}

// GET /v1/{tenant}/memory/stats
func (r *Router) handleMemoryStats(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	stats, err := r.memorySvc.Stats(req.Context(), tenant)
	if err != nil {
		return err
	}
	return writeJSON(w, stats)
}

// GET /v1/{tenant}/memory/recall?q=&limit=
func (r *Router) handleMemoryRecall(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	q := req.URL.Query().Get("q")
	if q == "" {
		return fmt.Errorf("%w: query parameter q is required", domain.ErrBadRequest)
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	hits, err := r.memorySvc.Recall(req.Context(), tenant, q, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, hits)
}

// GET /v1/{tenant}/memory/recent?limit=
func (r *Router) handleMemoryRecent(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.memorySvc.Recent(req.Context(), tenant, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}
