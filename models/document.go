package models

// Document is one ingested file, reduced to page-level text plus provenance.
// Documents are never persisted directly; only their segments are.
type Document struct {
	Source string   `json:"source"`
	Pages  []string `json:"pages"`
}

// Category is the closed set of metadata tags assigned during ingestion.
type Category string

const (
	CategoryHRPolicy      Category = "HR_Policy"
	CategoryTechnicalDocs Category = "Technical_Docs"
	CategoryGeneralInfo   Category = "General_Info"
)

// Segment is a bounded span of document text produced by chunking. It is the
// unit of indexing and retrieval. Category and WordCount are attached by the
// classifier after chunking and before indexing.
type Segment struct {
	SegmentID  string   `json:"segment_id"`
	Text       string   `json:"text"`
	Source     string   `json:"source"`
	Page       int      `json:"page"`
	ChunkIndex int      `json:"chunk_index"`
	Category   Category `json:"category"`
	WordCount  int      `json:"word_count"`
}

// Metadata returns the structured tags persisted alongside the segment's
// embedding. The key set mirrors what the analytics aggregation reads.
func (s Segment) Metadata() map[string]any {
	return map[string]any{
		"source":      s.Source,
		"page":        s.Page,
		"chunk_id":    s.SegmentID,
		"chunk_index": s.ChunkIndex,
		"category":    string(s.Category),
		"word_count":  s.WordCount,
	}
}
