package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/internal/queue"
	"enterprise-knowledge-platform/utils"
)

// TaskEnqueuer submits background tasks; satisfied by *asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type ingestRunRequest struct {
	Folder     string `json:"folder"`
	Collection string `json:"collection"`
}

// SetupIngestRoutes wires the asynchronous ingestion trigger. The actual
// pipeline runs on the worker; the endpoint only enqueues.
func SetupIngestRoutes(router *gin.Engine, cfg *config.Config, queueClient TaskEnqueuer) {
	router.POST("/ingest/run", func(c *gin.Context) {
		var req ingestRunRequest
		// Body is optional; defaults come from configuration.
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
				return
			}
		}
		if req.Folder == "" {
			req.Folder = cfg.DataFolder
		}
		if req.Collection == "" {
			req.Collection = cfg.CollectionName
		}

		task, err := queue.NewIngestTask(req.Folder, req.Collection)
		if err != nil {
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		info, err := queueClient.Enqueue(task)
		if err != nil {
			logger.Error("Failed to enqueue ingestion", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		logger.Info("Ingestion enqueued", "task_id", info.ID, "folder", req.Folder, "collection", req.Collection)
		c.JSON(http.StatusAccepted, gin.H{
			"task_id":    info.ID,
			"queue":      info.Queue,
			"folder":     req.Folder,
			"collection": req.Collection,
		})
	})
}
