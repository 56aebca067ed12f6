// Package main is the application entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"docvault-go/internal/chunk"
	"docvault-go/internal/config"
	"docvault-go/internal/handler"
	"docvault-go/internal/indexer"
	"docvault-go/internal/middleware"
	"docvault-go/internal/model"
	"docvault-go/internal/pipeline"
	"docvault-go/internal/rank"
	"docvault-go/internal/repository"
	"docvault-go/internal/service"
	"docvault-go/internal/vectorindex"
	"docvault-go/pkg/database"
	"docvault-go/pkg/embedding"
	"docvault-go/pkg/extract"
	"docvault-go/pkg/kafka"
	"docvault-go/pkg/llm"
	"docvault-go/pkg/log"
	"docvault-go/pkg/storage"
)

func main() {
	// 1. Configuration and logging.
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("Logger initialized")

	// 2. Backing stores.
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	kafka.InitProducer(cfg.Kafka)

	if err := database.DB.AutoMigrate(&model.Document{}); err != nil {
		log.Fatalf("Failed to migrate catalog schema: %v", err)
	}

	// 3. Vector index backend.
	index, err := newVectorIndex(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize vector index: %v", err)
	}
	log.Infof("Vector index ready, backend: %s", cfg.VectorIndex.Backend)

	// 4. Clients.
	embeddingClient := embedding.NewClient(cfg.Embedding)
	if cfg.Embedding.CacheTTLMinutes > 0 {
		ttl := time.Duration(cfg.Embedding.CacheTTLMinutes) * time.Minute
		embeddingClient = embedding.NewCached(embeddingClient, database.RDB, ttl)
	}
	extractor := extract.NewExtractor(cfg.Tika)
	llmClient := llm.NewClient(cfg.LLM)

	// 5. Core components.
	indexTimeout := time.Duration(cfg.VectorIndex.TimeoutSeconds) * time.Second
	if indexTimeout <= 0 {
		indexTimeout = 30 * time.Second
	}
	ix := indexer.New(chunk.DefaultSplitter(), embeddingClient, index, indexTimeout)

	tuning := rank.TuningFromConfig(cfg.Search)
	scorer, err := rank.NewScorer(tuning)
	if err != nil {
		log.Fatalf("Invalid search tuning: %v", err)
	}
	curator, err := rank.NewCurator(tuning)
	if err != nil {
		log.Fatalf("Invalid search tuning: %v", err)
	}

	// 6. Repositories and services.
	documentRepo := repository.NewDocumentRepository(database.DB)
	searchService := service.NewSearchService(embeddingClient, index, scorer, curator, cfg.Search.DefaultTopK)
	askService := service.NewAskService(searchService, llmClient, cfg.LLM.MaxContext)
	documentService := service.NewDocumentService(documentRepo, index, cfg.MinIO.BucketName)

	// 7. Background ingest pipeline.
	processor := pipeline.NewProcessor(documentRepo, extractor, ix, cfg.MinIO.BucketName)
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8. Seed import: files dropped into the seed directory are ingested
	// through the normal pipeline on startup, skipping unchanged ones.
	seedCtx, cancelSeed := context.WithCancel(context.Background())
	defer cancelSeed()
	go importSeedFiles(seedCtx, cfg.Ingest.SeedDir, documentRepo, documentService)

	// 9. Routes.
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/health", handler.Health)
	apiV1 := r.Group("/api/v1")
	{
		searchHandler := handler.NewSearchHandler(searchService, askService)
		apiV1.POST("/search", searchHandler.Search)
		apiV1.POST("/ask", searchHandler.Ask)

		documentHandler := handler.NewDocumentHandler(documentService)
		documents := apiV1.Group("/documents")
		{
			documents.POST("", documentHandler.Upload)
			documents.GET("", documentHandler.List)
			documents.DELETE("/:source", documentHandler.Delete)
		}
	}

	// 10. HTTP server with graceful shutdown.
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}
	log.Info("Server stopped")
}

// newVectorIndex builds the configured vector index backend. The memory
// backend keeps everything in process and is meant for local development.
func newVectorIndex(cfg config.Config) (vectorindex.Index, error) {
	switch cfg.VectorIndex.Backend {
	case "elasticsearch":
		return vectorindex.NewElastic(cfg.VectorIndex.Elasticsearch, cfg.Embedding.Dimensions)
	case "chroma":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return vectorindex.NewChroma(ctx, cfg.VectorIndex.Chroma)
	case "memory", "":
		return vectorindex.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown vector index backend: %s", cfg.VectorIndex.Backend)
	}
}

// importSeedFiles walks the seed directory and ingests every supported file
// through the standard upload path. A file whose catalog row already has
// the same modification time is skipped, so restarts do not reindex
// unchanged documents.
func importSeedFiles(ctx context.Context, dir string, repo repository.DocumentRepository, docs service.DocumentService) {
	if dir == "" {
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Infof("Seed directory '%s' not available, skipping seed import", dir)
		return
	}

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch filepath.Ext(info.Name()) {
		case ".pdf", ".md", ".markdown", ".txt":
		default:
			return nil
		}

		source := info.Name()
		modTime := info.ModTime().UTC().Truncate(time.Second)
		if existing, ferr := repo.FindBySource(source); ferr == nil && existing != nil {
			if existing.Status == model.StatusIndexed && existing.ModTime.Equal(modTime) {
				log.Infof("Seed import: unchanged, skipping: %s", source)
				return nil
			}
		}

		raw, rerr := os.ReadFile(path)
		if rerr != nil {
			log.Warnf("Seed import: failed to read %s: %v", path, rerr)
			return nil
		}
		if ierr := docs.Ingest(ctx, source, modTime, raw); ierr != nil {
			log.Warnf("Seed import: failed to ingest %s: %v", source, ierr)
			return nil
		}
		log.Infof("Seed import: enqueued %s", source)
		return nil
	})
	if walkErr != nil && walkErr != context.Canceled {
		log.Warnf("Seed import: walk failed: %v", walkErr)
	}
}
