package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"

	"enterprise-knowledge-platform/internal/ai"
	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/internal/database"
	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/internal/queue"
	"enterprise-knowledge-platform/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	db, err := config.ConnectPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer db.Close()

	gemini, err := ai.NewGeminiClient(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer gemini.Close()

	store := database.NewVectorStore(db)
	pipeline := services.NewIngestionPipeline(
		services.NewPDFLoader(),
		services.NewChunker(cfg.MaxChunkSize, cfg.ChunkOverlap),
		services.NewClassifier(),
		services.NewIndexer(gemini, store, cfg.IngestDedup),
	)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Ingestion runs are heavy and must not overlap with themselves:
	// concurrent runs may race on collection creation.
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"critical": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	processor := queue.NewTaskProcessor(pipeline, cfg)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestDocuments, processor.HandleIngest)

	logger.Info("Starting ingestion worker", "redis", cfg.RedisURL)

	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
