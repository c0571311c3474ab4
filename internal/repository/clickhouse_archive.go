package repository

import (
	"context"
	"fmt"
	"time"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	applogger "CrediTech/pkg/logger"
)

// Schema creates the archive tables. Both are append-only MergeTrees keyed by category.
func Schema(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.series_history (
            category    LowCardinality(String),
            date        Date,
            rate        Float64,
            policy_rate Float64,
            price_index Float64,
            source      LowCardinality(String),
            loaded_at   DateTime64(3)
        ) ENGINE = MergeTree
        ORDER BY (category, loaded_at, date)`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.training_runs (
            category        LowCardinality(String),
            samples         UInt32,
            epochs          UInt16,
            train_loss      Float64,
            validation_loss Float64,
            duration_ms     UInt64,
            trained_at      DateTime64(3)
        ) ENGINE = MergeTree
        ORDER BY (category, trained_at)`, database),
	}
}

// BatchInserter is the slice of pkg/clickhouse.Client the archive needs.
type BatchInserter interface {
	InsertBatch(ctx context.Context, query string, rows [][]any) error
	Health(ctx context.Context) error
}

// CHHistoryArchive implements HistoryArchive backed by ClickHouse.
type CHHistoryArchive struct {
	db       BatchInserter
	database string
	l        *applogger.Logger
}

var _ domrepo.HistoryArchive = (*CHHistoryArchive)(nil)

func NewCHHistoryArchive(db BatchInserter, database string, l *applogger.Logger) *CHHistoryArchive {
	return &CHHistoryArchive{db: db, database: database, l: applogger.OrNop(l).Component("history-archive")}
}

func (a *CHHistoryArchive) SaveHistory(ctx context.Context, h models.CategoryHistory) error {
	if h.Len() == 0 {
		return nil
	}
	start := time.Now()
	q := fmt.Sprintf(`INSERT INTO %s.series_history
        (category, date, rate, policy_rate, price_index, source, loaded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`, a.database)

	rows := make([][]any, 0, h.Len())
	for _, o := range h.Observations {
		rows = append(rows, []any{h.Category, o.Date, o.Rate, o.PolicyRate, o.PriceIndex, string(h.Source), h.LoadedAt})
	}
	if err := a.db.InsertBatch(ctx, q, rows); err != nil {
		a.l.Error("archive history failed",
			applogger.String("category", h.Category),
			applogger.Int("rows", len(rows)),
			applogger.Error(err))
		return fmt.Errorf("save history %s: %w", h.Category, err)
	}
	a.l.Debug("history archived",
		applogger.String("category", h.Category),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration", time.Since(start)))
	return nil
}

func (a *CHHistoryArchive) SaveTrainingRun(ctx context.Context, run domrepo.TrainingRun) error {
	q := fmt.Sprintf(`INSERT INTO %s.training_runs
        (category, samples, epochs, train_loss, validation_loss, duration_ms, trained_at) VALUES (?, ?, ?, ?, ?, ?, ?)`, a.database)
	row := []any{
		run.Category,
		uint32(run.Samples),
		uint16(run.Epochs),
		run.TrainLoss,
		run.ValidationLoss,
		uint64(run.Duration.Milliseconds()),
		run.TrainedAt,
	}
	if err := a.db.InsertBatch(ctx, q, [][]any{row}); err != nil {
		a.l.Error("archive training run failed", applogger.String("category", run.Category), applogger.Error(err))
		return fmt.Errorf("save training run %s: %w", run.Category, err)
	}
	return nil
}

func (a *CHHistoryArchive) Health(ctx context.Context) error {
	return a.db.Health(ctx)
}
