package services

import (
	"context"
	"fmt"

	"enterprise-knowledge-platform/models"
)

// SimilaritySearcher is the read side of the vector index.
type SimilaritySearcher interface {
	SimilaritySearch(ctx context.Context, collection string, embedding []float32, k int) ([]models.RetrievedSegment, error)
}

// Retriever embeds a query and returns the top-k most similar indexed
// segments from a collection, most similar first.
type Retriever struct {
	embedder Embedder
	store    SimilaritySearcher
	defaultK int
}

func NewRetriever(embedder Embedder, store SimilaritySearcher, defaultK int) *Retriever {
	if defaultK <= 0 {
		defaultK = 3
	}
	return &Retriever{embedder: embedder, store: store, defaultK: defaultK}
}

// Retrieve returns up to k ranked hits. k <= 0 selects the configured
// default. An empty or absent collection yields zero results, not an error.
func (r *Retriever) Retrieve(ctx context.Context, collection, query string, k int) ([]models.RetrievedSegment, error) {
	if k <= 0 {
		k = r.defaultK
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.store.SimilaritySearch(ctx, collection, embedding, k)
	if err != nil {
		return nil, err
	}
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}
