package repository

import (
	"context"

	"CrediTech/internal/domain/models"
)

// NoopArchive discards everything. Used when ClickHouse is disabled.
type NoopArchive struct{}

func (NoopArchive) SaveHistory(context.Context, models.CategoryHistory) error { return nil }
func (NoopArchive) SaveTrainingRun(context.Context, TrainingRun) error        { return nil }
func (NoopArchive) Health(context.Context) error                              { return nil }

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }

// NoopMetrics ignores all observations.
type NoopMetrics struct{}

func (NoopMetrics) RecordSeriesLoad(string, models.SeriesSource, int) {}
func (NoopMetrics) RecordTraining(string, float64, float64)           {}
func (NoopMetrics) RecordAssessment(string, bool)                     {}
func (NoopMetrics) RecordError(string)                                {}
func (NoopMetrics) RecordLatency(string, float64)                     {}
