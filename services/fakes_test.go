package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"enterprise-knowledge-platform/models"
)

// letterFreqEmbedder is a deterministic embedder for tests: a normalized
// letter-frequency vector, so identical text always yields cosine 1.
type letterFreqEmbedder struct {
	calls int
	fail  bool
}

func (e *letterFreqEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	if e.fail {
		return nil, fmt.Errorf("embedding backend unavailable")
	}

	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec, nil
}

// memoryStore is an in-memory stand-in for the pgvector-backed store. It
// preserves insertion order and ranks by cosine similarity with
// insertion-order tie-break, like the SQL path.
type memoryStore struct {
	collections map[string][]models.IndexedEntry
	addErr      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{collections: make(map[string][]models.IndexedEntry)}
}

func (s *memoryStore) EnsureCollection(_ context.Context, name string) (int64, error) {
	if _, ok := s.collections[name]; !ok {
		s.collections[name] = nil
	}
	return int64(len(s.collections)), nil
}

func (s *memoryStore) AddEntries(_ context.Context, collection string, entries []models.IndexedEntry) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.collections[collection] = append(s.collections[collection], entries...)
	return nil
}

func (s *memoryStore) ExistingContentHashes(_ context.Context, collection string, hashes []string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(hashes))
	for _, h := range hashes {
		wanted[h] = true
	}

	existing := make(map[string]bool)
	for _, entry := range s.collections[collection] {
		if hash, ok := entry.Metadata["content_hash"].(string); ok && wanted[hash] {
			existing[hash] = true
		}
	}
	return existing, nil
}

func (s *memoryStore) SimilaritySearch(_ context.Context, collection string, embedding []float32, k int) ([]models.RetrievedSegment, error) {
	entries := s.collections[collection]

	results := make([]models.RetrievedSegment, 0, len(entries))
	for _, entry := range entries {
		results = append(results, models.RetrievedSegment{
			Content:    entry.Content,
			Metadata:   entry.Metadata,
			Similarity: cosine(entry.Embedding, embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *memoryStore) CategoryStats(_ context.Context, collection string) ([]models.CategoryStat, error) {
	counts := make(map[string]int)
	wordTotals := make(map[string]int)
	for _, entry := range s.collections[collection] {
		category, _ := entry.Metadata["category"].(string)
		counts[category]++
		if wc, ok := entry.Metadata["word_count"].(int); ok {
			wordTotals[category] += wc
		}
	}

	var stats []models.CategoryStat
	for category, count := range counts {
		stats = append(stats, models.CategoryStat{
			Category:     category,
			ChunkCount:   count,
			AvgWordCount: float64(wordTotals[category]) / float64(count),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Category < stats[j].Category })
	return stats, nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// scriptedLLM returns a canned answer and records the prompts it saw.
type scriptedLLM struct {
	answer  string
	err     error
	prompts []string
}

func (l *scriptedLLM) Generate(_ context.Context, prompt string) (string, error) {
	l.prompts = append(l.prompts, prompt)
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

// staticLoader serves in-memory documents instead of reading PDFs from disk.
type staticLoader struct {
	docs    map[string]models.Document
	loadErr map[string]error
}

func (l *staticLoader) ListPDFs(string) ([]string, error) {
	paths := make([]string, 0, len(l.docs))
	for path := range l.docs {
		paths = append(paths, path)
	}
	for path := range l.loadErr {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *staticLoader) Load(path string) (models.Document, error) {
	if err, ok := l.loadErr[path]; ok {
		return models.Document{Source: path}, err
	}
	return l.docs[path], nil
}
