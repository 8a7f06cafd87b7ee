package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enterprise-knowledge-platform/models"
)

func newTestPipeline(loader DocumentLoader, store *memoryStore) *IngestionPipeline {
	return NewIngestionPipeline(
		loader,
		NewChunker(1000, 200),
		NewClassifier(),
		NewIndexer(&letterFreqEmbedder{}, store, false),
	)
}

func TestPipelineIngestsSingleSentence(t *testing.T) {
	loader := &staticLoader{docs: map[string]models.Document{
		"data/handbook.pdf": {
			Source: "handbook.pdf",
			Pages:  []string{"Employees get 20 days of paid leave."},
		},
	}}
	store := newMemoryStore()

	report, err := newTestPipeline(loader, store).Run(context.Background(), "data", "kb")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Files)
	assert.Zero(t, report.Skipped)
	assert.Equal(t, 1, report.Segments)

	entries := store.collections["kb"]
	require.Len(t, entries, 1)
	assert.Equal(t, "Employees get 20 days of paid leave.", entries[0].Content)
	assert.Equal(t, "handbook.pdf", entries[0].Metadata["source"])
	assert.Equal(t, 1, entries[0].Metadata["page"])
	assert.Equal(t, string(models.CategoryHRPolicy), entries[0].Metadata["category"])
	assert.Equal(t, 7, entries[0].Metadata["word_count"])
}

func TestPipelineEmptyFolder(t *testing.T) {
	store := newMemoryStore()

	report, err := newTestPipeline(&staticLoader{}, store).Run(context.Background(), "data", "kb")
	require.NoError(t, err)
	assert.Equal(t, &IngestReport{}, report)
}

func TestPipelineSkipsUnreadableFile(t *testing.T) {
	loader := &staticLoader{
		docs: map[string]models.Document{
			"data/good.pdf": {Source: "good.pdf", Pages: []string{"Deploy the api service."}},
		},
		loadErr: map[string]error{
			"data/bad.pdf": fmt.Errorf("malformed xref table"),
		},
	}
	store := newMemoryStore()

	report, err := newTestPipeline(loader, store).Run(context.Background(), "data", "kb")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Segments)
}

func TestPipelineIndexFailureAbortsRun(t *testing.T) {
	loader := &staticLoader{docs: map[string]models.Document{
		"data/doc.pdf": {Source: "doc.pdf", Pages: []string{"Some content here."}},
	}}
	store := newMemoryStore()
	store.addErr = fmt.Errorf("disk full")

	_, err := newTestPipeline(loader, store).Run(context.Background(), "data", "kb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPipelineEndToEndQuery(t *testing.T) {
	loader := &staticLoader{docs: map[string]models.Document{
		"data/handbook.pdf": {
			Source: "handbook.pdf",
			Pages: []string{
				"Employees get 20 days of paid leave.\n\nSalary reviews happen in April.",
				"Health benefits cover dependents and spouses fully.",
			},
		},
		"data/runbook.pdf": {
			Source: "runbook.pdf",
			Pages:  []string{"Deploy the api gateway with the release script."},
		},
	}}
	store := newMemoryStore()

	_, err := newTestPipeline(loader, store).Run(context.Background(), "data", "kb")
	require.NoError(t, err)

	retriever := NewRetriever(&letterFreqEmbedder{}, store, 3)
	llm := &scriptedLLM{answer: "Employees get 20 days of paid leave."}
	synthesizer := NewSynthesizer(llm)

	retrieved, err := retriever.Retrieve(context.Background(), "kb", "How many days of paid leave do employees get?", 3)
	require.NoError(t, err)
	require.NotEmpty(t, retrieved)

	resp, err := synthesizer.Synthesize(context.Background(), "How many days of paid leave do employees get?", retrieved)
	require.NoError(t, err)
	assert.Equal(t, "Employees get 20 days of paid leave.", resp.Answer)
	assert.Contains(t, resp.Sources, "handbook.pdf")

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "paid leave")
}

func TestPipelineEmptyKnowledgeBaseRefuses(t *testing.T) {
	store := newMemoryStore()
	retriever := NewRetriever(&letterFreqEmbedder{}, store, 3)
	llm := &scriptedLLM{answer: "should not run"}
	synthesizer := NewSynthesizer(llm)

	retrieved, err := retriever.Retrieve(context.Background(), "kb", "Anything at all?", 3)
	require.NoError(t, err)
	require.Empty(t, retrieved)

	resp, err := synthesizer.Synthesize(context.Background(), "Anything at all?", retrieved)
	require.NoError(t, err)
	assert.Equal(t, RefusalMessage, resp.Answer)
	assert.Empty(t, llm.prompts)
}

func TestPipelineAnalyticsStats(t *testing.T) {
	store := newMemoryStore()
	indexer := NewIndexer(&letterFreqEmbedder{}, store, false)

	segments := []models.Segment{
		{Text: "a", Source: "h.pdf", Category: models.CategoryHRPolicy, WordCount: 10},
		{Text: "b", Source: "h.pdf", Category: models.CategoryHRPolicy, WordCount: 20},
		{Text: "c", Source: "h.pdf", Category: models.CategoryHRPolicy, WordCount: 30},
		{Text: "d", Source: "r.pdf", Category: models.CategoryTechnicalDocs, WordCount: 5},
		{Text: "e", Source: "r.pdf", Category: models.CategoryTechnicalDocs, WordCount: 15},
	}
	_, err := indexer.Index(context.Background(), "kb", segments)
	require.NoError(t, err)

	stats, err := store.CategoryStats(context.Background(), "kb")
	require.NoError(t, err)

	assert.Equal(t, []models.CategoryStat{
		{Category: "HR_Policy", ChunkCount: 3, AvgWordCount: 20},
		{Category: "Technical_Docs", ChunkCount: 2, AvgWordCount: 10},
	}, stats)
}
