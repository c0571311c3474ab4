package repository

import (
	"context"
	"time"

	"CrediTech/internal/domain/models"
)

// SeriesSource fetches a numbered economic series for a date range.
type SeriesSource interface {
	FetchSeries(ctx context.Context, seriesID int, r models.DateRange) ([]models.SeriesPoint, error)
}

// HistoryArchive keeps an append-only record of loaded histories and training runs.
type HistoryArchive interface {
	SaveHistory(ctx context.Context, h models.CategoryHistory) error
	SaveTrainingRun(ctx context.Context, run TrainingRun) error
	Health(ctx context.Context) error
}

// TrainingRun describes one completed model fit.
type TrainingRun struct {
	Category       string
	Samples        int
	Epochs         int
	TrainLoss      float64
	ValidationLoss float64
	Duration       time.Duration
	TrainedAt      time.Time
}

// EventPublisher ships analytics lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Event is a lifecycle notification such as series.loaded or model.trained.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Key        string         `json:"key"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

const (
	EventSeriesLoaded      = "series.loaded"
	EventModelTrained      = "model.trained"
	EventClustersPublished = "clusters.published"
)

type Metrics interface {
	RecordSeriesLoad(category string, source models.SeriesSource, points int)
	RecordTraining(category string, seconds, validationLoss float64)
	RecordAssessment(classification string, degraded bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
