package services

import (
	"strings"

	"github.com/google/uuid"

	"enterprise-knowledge-platform/models"
)

// RecursiveSplitter splits text by trying an ordered list of separators,
// from paragraph breaks down to the character level, recursively subdividing
// only pieces that exceed the chunk size. Adjacent chunks carry a trailing
// slice of the previous chunk as overlap.
type RecursiveSplitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewRecursiveSplitter(chunkSize, overlap int) *RecursiveSplitter {
	return &RecursiveSplitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: []string{"\n\n", "\n", " ", ""},
	}
}

// Split returns the fit-to-size chunks of text. Empty or whitespace-only
// input yields no chunks.
func (rs *RecursiveSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return rs.split(text, rs.separators)
}

func (rs *RecursiveSplitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	if separator == "" {
		return rs.sliceOversized(text)
	}

	var chunks []string
	var fitting []string
	for _, piece := range splitAndFilter(text, separator) {
		if len(piece) < rs.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		// flush accumulated small pieces before descending into the big one
		if len(fitting) > 0 {
			chunks = append(chunks, rs.merge(fitting, separator)...)
			fitting = nil
		}
		chunks = append(chunks, rs.split(piece, remaining)...)
	}
	if len(fitting) > 0 {
		chunks = append(chunks, rs.merge(fitting, separator)...)
	}

	return chunks
}

// merge recombines small pieces into chunks up to the size bound. When a
// chunk is emitted, pieces are dropped from the front until the retained
// tail fits the overlap budget; the tail seeds the next chunk.
func (rs *RecursiveSplitter) merge(pieces []string, separator string) []string {
	sepLen := len(separator)

	var chunks []string
	var current []string
	total := 0

	for _, piece := range pieces {
		pieceLen := len(piece)
		if len(current) > 0 && total+pieceLen+sepLen > rs.chunkSize {
			if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for len(current) > 0 && (total > rs.overlap || total+pieceLen+sepLen > rs.chunkSize) {
				total -= len(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += pieceLen
		if len(current) > 1 {
			total += sepLen
		}
	}

	if len(current) > 0 {
		if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}

// sliceOversized hard-splits separator-free text into chunk-size windows
// stepping by chunkSize-overlap, on rune boundaries.
func (rs *RecursiveSplitter) sliceOversized(text string) []string {
	runes := []rune(text)
	if len(runes) <= rs.chunkSize {
		return []string{text}
	}

	step := rs.chunkSize - rs.overlap
	if step <= 0 {
		step = rs.chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + rs.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func splitAndFilter(text, separator string) []string {
	parts := strings.Split(text, separator)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Chunker turns page-level document text into ordered, provenance-tagged
// segments. Chunks never span page boundaries.
type Chunker struct {
	splitter *RecursiveSplitter
}

func NewChunker(chunkSize, overlap int) *Chunker {
	return &Chunker{splitter: NewRecursiveSplitter(chunkSize, overlap)}
}

// ChunkDocument splits every page of the document. A document with no
// extractable text yields zero segments, not an error.
func (c *Chunker) ChunkDocument(doc models.Document) []models.Segment {
	var segments []models.Segment
	index := 0
	for pageNum, page := range doc.Pages {
		for _, text := range c.splitter.Split(page) {
			segments = append(segments, models.Segment{
				SegmentID:  uuid.NewString(),
				Text:       text,
				Source:     doc.Source,
				Page:       pageNum + 1,
				ChunkIndex: index,
			})
			index++
		}
	}
	return segments
}
