package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/services"
)

const TaskIngestDocuments = "ingest:run"

type IngestPayload struct {
	Folder     string `json:"folder"`
	Collection string `json:"collection"`
}

// NewIngestTask creates the queued form of an ingestion run. The task is not
// retried: ingestion is non-idempotent by default and a retry after partial
// progress would duplicate entries.
func NewIngestTask(folder, collection string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestPayload{Folder: folder, Collection: collection})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestDocuments,
		payload,
		asynq.MaxRetry(0),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// TaskProcessor executes queued ingestion runs on the worker.
type TaskProcessor struct {
	pipeline *services.IngestionPipeline
	cfg      *config.Config
}

func NewTaskProcessor(pipeline *services.IngestionPipeline, cfg *config.Config) *TaskProcessor {
	return &TaskProcessor{pipeline: pipeline, cfg: cfg}
}

func (p *TaskProcessor) HandleIngest(ctx context.Context, t *asynq.Task) error {
	var payload IngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	if payload.Folder == "" {
		payload.Folder = p.cfg.DataFolder
	}
	if payload.Collection == "" {
		payload.Collection = p.cfg.CollectionName
	}

	logger.Info("Running queued ingestion", "folder", payload.Folder, "collection", payload.Collection)

	report, err := p.pipeline.Run(ctx, payload.Folder, payload.Collection)
	if err != nil {
		return err
	}

	logger.Info("Queued ingestion finished",
		"files", report.Files, "skipped", report.Skipped, "segments", report.Segments)
	return nil
}
