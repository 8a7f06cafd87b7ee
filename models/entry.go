package models

// IndexedEntry is the persisted (text, embedding, metadata) triple written to
// a collection by the vector indexer.
type IndexedEntry struct {
	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata"`
}

// RetrievedSegment is one similarity-search hit, ranked by the store.
type RetrievedSegment struct {
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Similarity float64        `json:"similarity"`
}

// Source returns the provenance identifier persisted with the segment, or
// "unknown" when none was recorded.
func (r RetrievedSegment) Source() string {
	if src, ok := r.Metadata["source"].(string); ok && src != "" {
		return src
	}
	return "unknown"
}
