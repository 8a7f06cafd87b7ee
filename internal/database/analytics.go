package database

import (
	"context"
	"fmt"

	"enterprise-knowledge-platform/models"
)

// CategoryStats groups the persisted segment metadata of a collection by
// category and computes per-category chunk counts and average word counts.
// This is the read-only reporting query behind the analytics dashboard; it
// shares storage with the retrieval path but not control flow.
func (s *VectorStore) CategoryStats(ctx context.Context, collection string) ([]models.CategoryStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT
			e.metadata ->> 'category' AS category,
			COUNT(*) AS chunk_count,
			AVG((e.metadata ->> 'word_count')::int) AS avg_word_count
		 FROM kb_embeddings e
		 JOIN kb_collections c ON c.id = e.collection_id
		 WHERE c.name = $1
		 GROUP BY e.metadata ->> 'category'
		 ORDER BY category`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories in %q: %w", collection, err)
	}
	defer rows.Close()

	var stats []models.CategoryStat
	for rows.Next() {
		var stat models.CategoryStat
		if err := rows.Scan(&stat.Category, &stat.ChunkCount, &stat.AvgWordCount); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category rows: %w", err)
	}

	return stats, nil
}
