package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	DatabaseURL    string
	CollectionName string
	VectorDim      int

	// Ingestion
	DataFolder   string
	MaxChunkSize int
	ChunkOverlap int
	IngestDedup  bool

	// Retrieval / generation
	RetrievalK      int
	GeminiAPIKey    string
	GeminiModel     string
	EmbeddingsModel string
	Temperature     float64
	GeminiRPM       int

	// HTTP server
	Port           string
	GinMode        string
	CORSOrigins    []string
	RequestTimeout int

	// Redis / queue
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CollectionName: getEnv("COLLECTION_NAME", "enterprise_knowledge"),
		VectorDim:      getEnvInt("VECTOR_DIM", 768),

		DataFolder:   getEnv("DATA_FOLDER", "data"),
		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		IngestDedup:  getEnvBool("INGEST_DEDUP", false),

		RetrievalK:      getEnvInt("RETRIEVAL_K", 3),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		Temperature:     getEnvFloat64("GENERATION_TEMPERATURE", 0.1),
		GeminiRPM:       getEnvInt("GEMINI_RPM", 60),

		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		CORSOrigins:    strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		RequestTimeout: getEnvInt("REQUEST_TIMEOUT", 30),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required - set it in .env file")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("MAX_CHUNK_SIZE must be positive")
	}

	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be non-negative and smaller than MAX_CHUNK_SIZE")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
