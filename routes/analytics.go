package routes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/internal/logger"
	"enterprise-knowledge-platform/models"
	"enterprise-knowledge-platform/utils"
)

const dashboardTitle = "Knowledge Base Metadata Analytics"

// AnalyticsSource aggregates the persisted segment metadata by category.
type AnalyticsSource interface {
	CategoryStats(ctx context.Context, collection string) ([]models.CategoryStat, error)
}

// SetupAnalyticsRoutes wires the metadata aggregation endpoints. Analytics
// reads the same storage the indexer writes but shares no control flow with
// the retrieval path.
func SetupAnalyticsRoutes(router *gin.Engine, cfg *config.Config, source AnalyticsSource) {
	analytics := router.Group("/analytics")

	analytics.GET("/dashboard", func(c *gin.Context) {
		stats, err := fetchStats(c, cfg, source)
		if err != nil {
			logger.Error("Analytics query failed", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		c.JSON(http.StatusOK, models.AnalyticsResponse{
			DashboardTitle: dashboardTitle,
			Data:           stats,
		})
	})

	analytics.GET("/export", func(c *gin.Context) {
		stats, err := fetchStats(c, cfg, source)
		if err != nil {
			logger.Error("Analytics export failed", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		workbook, err := buildAnalyticsWorkbook(stats)
		if err != nil {
			logger.Error("Workbook build failed", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}
		defer workbook.Close()

		filename := fmt.Sprintf("knowledge_base_analytics_%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := workbook.Write(c.Writer); err != nil {
			logger.Error("Workbook write failed", "error", err)
		}
	})
}

func fetchStats(c *gin.Context, cfg *config.Config, source AnalyticsSource) ([]models.CategoryStat, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(cfg.RequestTimeout)*time.Second)
	defer cancel()

	stats, err := source.CategoryStats(ctx, cfg.CollectionName)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.CategoryStat{}
	}
	return stats, nil
}

func buildAnalyticsWorkbook(stats []models.CategoryStat) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := "Categories"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Category", "Chunk Count", "Avg Word Count"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for row, stat := range stats {
		values := []interface{}{stat.Category, stat.ChunkCount, stat.AvgWordCount}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
