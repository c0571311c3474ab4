package models

// Requests for the analytics HTTP endpoints.

type ForecastRequest struct {
	Category string `param:"category" validate:"required"`
	Days     int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=365"`
}

type RefreshCommand struct {
	Action   string `json:"action" validate:"required,oneof=reload recluster"`
	Category string `json:"category" validate:"required_if=Action reload"`
}

// AnalyticsStats is a snapshot of the state built at initialization.
type AnalyticsStats struct {
	Models          int                     `json:"models"`
	HistoryPoints   int                     `json:"history_points"`
	Clusters        int                     `json:"clusters"`
	ClusterVersion  int64                   `json:"cluster_version"`
	Initialized     bool                    `json:"initialized"`
	CategorySources map[string]SeriesSource `json:"category_sources"`
}

// CategoryInfo describes a configured credit category.
type CategoryInfo struct {
	Key         string `json:"key"`
	SeriesID    int    `json:"series_id"`
	Description string `json:"description"`
}
