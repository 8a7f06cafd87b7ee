package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func ConnectPostgres(cfg *Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open Postgres connection: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Create schema
	if err := createSchema(ctx, db, cfg.VectorDim); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}

	return db, nil
}

func createSchema(ctx context.Context, db *sql.DB, vectorDim int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS kb_collections (
			id SERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS kb_embeddings (
			id BIGSERIAL PRIMARY KEY,
			collection_id INTEGER NOT NULL REFERENCES kb_collections(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, vectorDim),
		`CREATE INDEX IF NOT EXISTS idx_kb_embeddings_collection ON kb_embeddings (collection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_kb_embeddings_category ON kb_embeddings ((metadata ->> 'category'))`,
		`CREATE INDEX IF NOT EXISTS idx_kb_embeddings_embedding ON kb_embeddings
			USING hnsw (embedding vector_cosine_ops)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
