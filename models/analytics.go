package models

// CategoryStat is one aggregation row of the analytics dashboard, grouped by
// the category tag persisted during ingestion.
type CategoryStat struct {
	Category     string  `json:"category"`
	ChunkCount   int     `json:"chunk_count"`
	AvgWordCount float64 `json:"avg_word_count"`
}

// AnalyticsResponse is the payload of GET /analytics/dashboard.
type AnalyticsResponse struct {
	DashboardTitle string         `json:"dashboard_title"`
	Data           []CategoryStat `json:"data"`
}
