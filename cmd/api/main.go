package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/finagents/stockpicker/internal/application"
	appanalyses "github.com/finagents/stockpicker/internal/application/analyses"
	appmemory "github.com/finagents/stockpicker/internal/application/memory"
	"github.com/finagents/stockpicker/internal/config"
	domain "github.com/finagents/stockpicker/internal/domain/analyses"
	aiopenai "github.com/finagents/stockpicker/internal/infra/ai/openai"
	mysqldb "github.com/finagents/stockpicker/internal/infra/db/mysql"
	postgresdb "github.com/finagents/stockpicker/internal/infra/db/postgres"
	sqlitedb "github.com/finagents/stockpicker/internal/infra/db/sqlite"
	"github.com/finagents/stockpicker/internal/infra/httpserver"
	"github.com/finagents/stockpicker/internal/infra/notify/pushover"
	"github.com/finagents/stockpicker/internal/infra/pipeline"
	"github.com/finagents/stockpicker/internal/infra/search/serper"
	"github.com/finagents/stockpicker/internal/infra/storage"
	chromemstore "github.com/finagents/stockpicker/internal/infra/vector/chromem"
	"github.com/finagents/stockpicker/internal/middleware"
)

func main() {
	// API keys biasanya di .env
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	// sqlite always runs: long-term memory + run errors live here
	memDB, err := sqlitedb.Connect(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatalf("sqlite connect error: %v", err)
	}
	defer memDB.Close()

	memRepo := sqlitedb.NewMemoryRepository(memDB, cfg.Database.Path)
	errRepo := sqlitedb.NewRunErrorRepository(memDB)

	// analyses repo follows the configured driver
	var repo domain.Repository
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		repo = mysqldb.NewAnalysisRepository(db)
	case "postgres":
		db, err := postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		repo = postgresdb.NewAnalysisRepository(db)
	default:
		repo = sqlitedb.NewAnalysisRepository(memDB)
	}

	// init llm client
	llm := aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.EmbeddingModel)

	// init vector store (persistent, embeds via llm)
	vectors, err := chromemstore.New(cfg.Memory.Dir+"/vectors", llm)
	if err != nil {
		log.Fatalf("vector store init error: %v", err)
	}

	// init search + notifier
	searcher := serper.NewClient(cfg.Serper.APIKey, cfg.Serper.BaseURL)
	notifier := pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.User)
	if !notifier.Enabled() {
		log.Println("pushover not configured, push notifications disabled")
	}

	// init artifact store
	var artifacts domain.ArtifactStore
	switch cfg.Artifacts.Driver {
	case "minio":
		m := cfg.Artifacts.Minio
		store, err := storage.NewMinio(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		artifacts = store
	default:
		artifacts = storage.NewLocal(cfg.Artifacts.Dir)
	}

	// init pipeline + services
	pipe := pipeline.New(llm, searcher, notifier, memRepo, cfg.OpenAI.Model)

	svc := &appanalyses.Service{
		Repo:      repo,
		Pipeline:  pipe,
		Artifacts: artifacts,
		LongTerm:  memRepo,
		Vectors:   vectors,
		RunErrors: errRepo,
		Clock:     application.SystemClock{},
	}
	memSvc := appmemory.NewService(memRepo, vectors)

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(svc, memSvc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
