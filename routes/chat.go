package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/models"
	"enterprise-knowledge-platform/services"
	"enterprise-knowledge-platform/utils"
)

// SetupChatRoutes wires the question-answering endpoint. Each request is
// independent and stateless: retrieve top-k context, synthesize one grounded
// answer, return it with mechanical citations.
func SetupChatRoutes(router *gin.Engine, cfg *config.Config, retriever *services.Retriever, synthesizer *services.Synthesizer) {
	router.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(cfg.RequestTimeout)*time.Second)
		defer cancel()

		retrieved, err := retriever.Retrieve(ctx, cfg.CollectionName, req.Query, cfg.RetrievalK)
		if err != nil {
			logger.Error("Retrieval failed", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		answer, err := synthesizer.Synthesize(ctx, req.Query, retrieved)
		if err != nil {
			logger.Error("Synthesis failed", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{
			Response:      answer.Answer,
			RetrievedDocs: answer.Sources,
		})
	})
}
