package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"enterprise-knowledge-platform/internal/ai"
	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/internal/database"
	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/internal/telemetry"
	"enterprise-knowledge-platform/middleware"
	"enterprise-knowledge-platform/routes"
	"enterprise-knowledge-platform/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracer("enterprise-knowledge-platform", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to initialize tracer:", err)
		}
		defer shutdownTracer()
	}

	// Connect to Postgres (pgvector)
	db, err := config.ConnectPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Postgres:", err)
	}
	defer db.Close()

	// Redis backs the ingestion queue and the rate limiter
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	// Shared Gemini client: constructed once, passed to the components that
	// need it, closed on shutdown.
	gemini, err := ai.NewGeminiClient(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer gemini.Close()

	store := database.NewVectorStore(db)
	retriever := services.NewRetriever(gemini, store, cfg.RetrievalK)
	synthesizer := services.NewSynthesizer(gemini)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "System Online",
			"modules": []string{"RAG-AI", "Data-Analytics"},
		})
	})

	// Setup routes
	routes.SetupChatRoutes(router, cfg, retriever, synthesizer)
	routes.SetupAnalyticsRoutes(router, cfg, store)
	routes.SetupIngestRoutes(router, cfg, queueClient)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
