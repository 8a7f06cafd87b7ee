package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"enterprise-knowledge-platform/models"
)

// VectorStore persists (content, embedding, metadata) triples under named
// collections and serves cosine similarity search over them. Concurrency
// control is delegated to Postgres; the store itself holds no locks.
type VectorStore struct {
	db *sql.DB
}

func NewVectorStore(db *sql.DB) *VectorStore {
	return &VectorStore{db: db}
}

// EnsureCollection creates the named collection if it does not exist and
// returns its id.
func (s *VectorStore) EnsureCollection(ctx context.Context, name string) (int64, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kb_collections (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		name,
	)
	if err != nil {
		return 0, fmt.Errorf("ensure collection %q: %w", name, err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM kb_collections WHERE name = $1`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("select collection %q: %w", name, err)
	}

	return id, nil
}

// AddEntries inserts a batch of indexed entries into the named collection,
// creating it if needed. The batch is written in a single transaction; a
// failed insert rolls back the whole batch.
func (s *VectorStore) AddEntries(ctx context.Context, collection string, entries []models.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	collectionID, err := s.EnsureCollection(ctx, collection)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO kb_embeddings (collection_id, content, embedding, metadata) VALUES ($1, $2, $3, $4)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, entry := range entries {
		metadata, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for entry %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, collectionID, entry.Content, pgvector.NewVector(entry.Embedding), metadata); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert batch: %w", err)
	}

	return nil
}

// SimilaritySearch returns up to k entries of the named collection ranked by
// cosine similarity to the query embedding. Ties break on insertion order.
// An empty or absent collection yields an empty result, not an error.
func (s *VectorStore) SimilaritySearch(ctx context.Context, collection string, embedding []float32, k int) ([]models.RetrievedSegment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.content, e.metadata, 1 - (e.embedding <=> $1) AS similarity
		 FROM kb_embeddings e
		 JOIN kb_collections c ON c.id = e.collection_id
		 WHERE c.name = $2
		 ORDER BY e.embedding <=> $1, e.id
		 LIMIT $3`,
		pgvector.NewVector(embedding), collection, k,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search in %q: %w", collection, err)
	}
	defer rows.Close()

	var results []models.RetrievedSegment
	for rows.Next() {
		var (
			seg          models.RetrievedSegment
			metadataJSON []byte
		)
		if err := rows.Scan(&seg.Content, &metadataJSON, &seg.Similarity); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		if err := json.Unmarshal(metadataJSON, &seg.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		results = append(results, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}

	return results, nil
}

// ExistingContentHashes reports which of the given content hashes are already
// present in the collection. Used by the opt-in ingestion dedup path.
func (s *VectorStore) ExistingContentHashes(ctx context.Context, collection string, hashes []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(hashes) == 0 {
		return existing, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT e.metadata ->> 'content_hash'
		 FROM kb_embeddings e
		 JOIN kb_collections c ON c.id = e.collection_id
		 WHERE c.name = $1 AND e.metadata ->> 'content_hash' = ANY($2)`,
		collection, pq.Array(hashes),
	)
	if err != nil {
		return nil, fmt.Errorf("select content hashes in %q: %w", collection, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scan content hash: %w", err)
		}
		existing[hash] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("content hash rows: %w", err)
	}

	return existing, nil
}
