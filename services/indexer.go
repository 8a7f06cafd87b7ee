package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/models"
)

// Embedder converts text into a fixed-dimensional vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EntryStore is the write side of the vector index.
type EntryStore interface {
	EnsureCollection(ctx context.Context, name string) (int64, error)
	AddEntries(ctx context.Context, collection string, entries []models.IndexedEntry) error
	ExistingContentHashes(ctx context.Context, collection string, hashes []string) (map[string]bool, error)
}

// Indexer embeds classified segments and persists them into a named
// collection. Indexing is not idempotent by default: re-ingesting the same
// document produces duplicate entries. The opt-in dedup mode skips segments
// whose content hash is already present in the collection.
type Indexer struct {
	embedder Embedder
	store    EntryStore
	dedup    bool
}

func NewIndexer(embedder Embedder, store EntryStore, dedup bool) *Indexer {
	return &Indexer{embedder: embedder, store: store, dedup: dedup}
}

// Index embeds and persists the segments. An embedding failure fails the
// whole batch; nothing of a failed batch is silently kept.
func (ix *Indexer) Index(ctx context.Context, collection string, segments []models.Segment) (int, error) {
	if _, err := ix.store.EnsureCollection(ctx, collection); err != nil {
		return 0, err
	}
	if len(segments) == 0 {
		return 0, nil
	}

	if ix.dedup {
		var err error
		segments, err = ix.filterDuplicates(ctx, collection, segments)
		if err != nil {
			return 0, err
		}
		if len(segments) == 0 {
			return 0, nil
		}
	}

	entries := make([]models.IndexedEntry, 0, len(segments))
	for _, segment := range segments {
		embedding, err := ix.embedder.Embed(ctx, segment.Text)
		if err != nil {
			return 0, fmt.Errorf("embed segment %d of %s: %w", segment.ChunkIndex, segment.Source, err)
		}

		metadata := segment.Metadata()
		if ix.dedup {
			metadata["content_hash"] = contentHash(segment.Text)
		}

		entries = append(entries, models.IndexedEntry{
			Content:   segment.Text,
			Embedding: embedding,
			Metadata:  metadata,
		})
	}

	if err := ix.store.AddEntries(ctx, collection, entries); err != nil {
		return 0, err
	}

	return len(entries), nil
}

func (ix *Indexer) filterDuplicates(ctx context.Context, collection string, segments []models.Segment) ([]models.Segment, error) {
	hashes := make([]string, len(segments))
	for i, segment := range segments {
		hashes[i] = contentHash(segment.Text)
	}

	existing, err := ix.store.ExistingContentHashes(ctx, collection, hashes)
	if err != nil {
		return nil, err
	}

	kept := segments[:0]
	seen := make(map[string]bool)
	for i, segment := range segments {
		hash := hashes[i]
		if existing[hash] || seen[hash] {
			logger.Debug("Skipping duplicate segment", "source", segment.Source, "chunk_index", segment.ChunkIndex)
			continue
		}
		seen[hash] = true
		kept = append(kept, segment)
	}
	return kept, nil
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
