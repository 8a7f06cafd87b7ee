package services

import (
	"context"

	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/models"
)

// DocumentLoader lists and loads ingestible documents from a folder.
type DocumentLoader interface {
	ListPDFs(folder string) ([]string, error)
	Load(path string) (models.Document, error)
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Files    int `json:"files"`
	Skipped  int `json:"skipped"`
	Segments int `json:"segments"`
}

// IngestionPipeline runs the batch ingestion flow: load PDFs, chunk, tag
// with metadata, embed and index. Ingestion is at-least-once and
// non-transactional: a failure mid-run may leave the collection partially
// populated.
type IngestionPipeline struct {
	loader     DocumentLoader
	chunker    *Chunker
	classifier *Classifier
	indexer    *Indexer
}

func NewIngestionPipeline(loader DocumentLoader, chunker *Chunker, classifier *Classifier, indexer *Indexer) *IngestionPipeline {
	return &IngestionPipeline{
		loader:     loader,
		chunker:    chunker,
		classifier: classifier,
		indexer:    indexer,
	}
}

// Run processes every PDF in folder into the named collection. A folder
// without PDFs yields an empty report, not an error. A file that cannot be
// parsed is skipped and the run continues; embedding or storage failures
// abort the run.
func (p *IngestionPipeline) Run(ctx context.Context, folder, collection string) (*IngestReport, error) {
	paths, err := p.loader.ListPDFs(folder)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{}
	if len(paths) == 0 {
		logger.Warn("No PDF documents found", "folder", folder)
		return report, nil
	}

	var segments []models.Segment
	for _, path := range paths {
		doc, err := p.loader.Load(path)
		if err != nil {
			logger.Warn("Skipping unreadable PDF", "path", path, "error", err)
			report.Skipped++
			continue
		}
		report.Files++

		docSegments := p.chunker.ChunkDocument(doc)
		logger.Info("Processed document", "path", path, "pages", len(doc.Pages), "segments", len(docSegments))
		segments = append(segments, docSegments...)
	}

	p.classifier.Annotate(segments)

	indexed, err := p.indexer.Index(ctx, collection, segments)
	if err != nil {
		return nil, err
	}
	report.Segments = indexed

	logger.Info("Ingestion complete", "files", report.Files, "skipped", report.Skipped, "segments", report.Segments)
	return report, nil
}
