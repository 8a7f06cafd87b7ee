package main

import (
	"context"
	"fmt"
	"log"

	"enterprise-knowledge-platform/internal/ai"
	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/internal/database"
	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/services"
)

// Offline batch ingestion: reads all PDFs from the configured data folder,
// chunks, classifies, embeds and indexes them, then exits. Runs to
// completion before serving begins; it is not designed to run concurrently
// with itself.
func main() {
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

	fmt.Println("--- Starting ingestion pipeline ---")

	report, err := pipeline.Run(context.Background(), cfg.DataFolder, cfg.CollectionName)
	if err != nil {
		log.Fatal("Ingestion failed:", err)
	}

	if report.Files == 0 && report.Skipped == 0 {
		fmt.Printf("No PDF documents found in %s\n", cfg.DataFolder)
		return
	}

	fmt.Printf("--- Ingestion complete: %d segments indexed from %d files (%d skipped) ---\n",
		report.Segments, report.Files, report.Skipped)
}
