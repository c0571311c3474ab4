package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	"CrediTech/internal/domain/service"
	"CrediTech/internal/services/features"
	"CrediTech/internal/services/model"
	"CrediTech/pkg/util"
)

var ErrInvalidHorizon = errors.New("forecast: horizon must be at least one day")

const (
	indicatorJitter = 0.1 // total width, centred on the last known value
	confidenceFloor = 0.7
	confidenceSpan  = 0.3
)

// Engine predicts future rates from the registry's trained models. It reads
// models and never writes to the store or the registry.
type Engine struct {
	models  *model.Registry
	rng     *util.Rand
	now     func() time.Time
	metrics domrepo.Metrics
}

var _ service.Forecaster = (*Engine)(nil)

func NewEngine(reg *model.Registry, rng *util.Rand, now func() time.Time, m domrepo.Metrics) *Engine {
	if rng == nil {
		rng = util.NewRand(0)
	}
	if now == nil {
		now = time.Now
	}
	if m == nil {
		m = domrepo.NoopMetrics{}
	}
	return &Engine{models: reg, rng: rng, now: now, metrics: m}
}

// Predict returns one point per day for today+1 .. today+horizonDays.
func (e *Engine) Predict(category string, horizonDays int) (models.Forecast, error) {
	if horizonDays < 1 {
		return models.Forecast{}, fmt.Errorf("%w: got %d", ErrInvalidHorizon, horizonDays)
	}
	entry, err := e.models.Get(category)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("forecast %s: %w", category, err)
	}

	start := time.Now()
	now := e.now()
	today := util.Day(now)
	last := entry.Last

	points := make([]models.ForecastPoint, 0, horizonDays)
	for i := 1; i <= horizonDays; i++ {
		date := today.AddDate(0, 0, i)
		policy := last.PolicyRate + (e.rng.Float64()-0.5)*indicatorJitter
		price := last.PriceIndex + (e.rng.Float64()-0.5)*indicatorJitter

		rate := entry.Network.Predict(features.ForDate(policy, price, date))
		if math.IsNaN(rate) {
			rate = 0
		}
		points = append(points, models.ForecastPoint{
			Date:          date,
			PredictedRate: math.Max(0, rate),
			Confidence:    e.rng.Span(confidenceFloor, confidenceSpan),
		})
	}

	e.metrics.RecordLatency("forecast", time.Since(start).Seconds())
	return models.Forecast{
		Category:    category,
		Days:        horizonDays,
		Points:      points,
		GeneratedAt: now,
	}, nil
}
