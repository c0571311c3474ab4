package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	"CrediTech/pkg/config"
	"CrediTech/pkg/logger"
	"CrediTech/pkg/util"
)

var (
	// ErrUpstreamUnavailable marks a fetch that failed, timed out or returned nothing.
	// Load never returns it; the category falls back to synthetic data instead.
	ErrUpstreamUnavailable = errors.New("history: upstream unavailable")
	ErrEmptySeries         = errors.New("history: empty series")
)

// Pacer spaces consecutive upstream calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context) error

func (f PacerFunc) Wait(ctx context.Context) error { return f(ctx) }

// SleepPacer waits a fixed delay or until ctx is done.
type SleepPacer struct {
	Delay time.Duration
}

func (p SleepPacer) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// LoadResult reports which path produced a category history.
type LoadResult struct {
	Category string
	Source   models.SeriesSource
	History  models.CategoryHistory
	Cause    error // why the fetch was abandoned; nil when fetched
}

type LoaderConfig struct {
	PolicySeriesID int
	PriceSeriesID  int
	FetchTimeout   time.Duration
	HistoryYears   int
}

// Loader turns upstream series into category histories and publishes them to a Store.
type Loader struct {
	source  domrepo.SeriesSource // nil runs offline
	gen     *Generator
	store   *Store
	cfg     LoaderConfig
	pacer   Pacer
	l       *logger.Logger
	metrics domrepo.Metrics
	now     func() time.Time
}

type LoaderOption func(*Loader)

func WithPacer(p Pacer) LoaderOption { return func(l *Loader) { l.pacer = p } }

func WithLoaderLogger(lg *logger.Logger) LoaderOption {
	return func(l *Loader) { l.l = lg }
}

func WithLoaderMetrics(m domrepo.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

func WithClock(now func() time.Time) LoaderOption { return func(l *Loader) { l.now = now } }

func NewLoader(source domrepo.SeriesSource, gen *Generator, store *Store, cfg LoaderConfig, opts ...LoaderOption) *Loader {
	if cfg.PolicySeriesID == 0 {
		cfg.PolicySeriesID = 11
	}
	if cfg.PriceSeriesID == 0 {
		cfg.PriceSeriesID = 433
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.HistoryYears <= 0 {
		cfg.HistoryYears = 5
	}
	ld := &Loader{
		source:  source,
		gen:     gen,
		store:   store,
		cfg:     cfg,
		pacer:   SleepPacer{Delay: 500 * time.Millisecond},
		metrics: domrepo.NoopMetrics{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(ld)
	}
	ld.l = logger.OrNop(ld.l).Component("history_loader")
	return ld
}

func (ld *Loader) Store() *Store { return ld.store }

// Fetch pulls the category series and both indicator series and joins them.
// Every failure is wrapped in ErrUpstreamUnavailable.
func (ld *Loader) Fetch(ctx context.Context, cat config.Category, r models.DateRange) ([]models.Observation, error) {
	if ld.source == nil {
		return nil, fmt.Errorf("%w: offline", ErrUpstreamUnavailable)
	}

	rates, err := ld.fetchOne(ctx, cat.SeriesID, r)
	if err != nil {
		return nil, fmt.Errorf("%w: series %d: %w", ErrUpstreamUnavailable, cat.SeriesID, err)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: series %d: %w", ErrUpstreamUnavailable, cat.SeriesID, ErrEmptySeries)
	}
	policy, err := ld.fetchOne(ctx, ld.cfg.PolicySeriesID, r)
	if err != nil {
		return nil, fmt.Errorf("%w: policy series: %w", ErrUpstreamUnavailable, err)
	}
	price, err := ld.fetchOne(ctx, ld.cfg.PriceSeriesID, r)
	if err != nil {
		return nil, fmt.Errorf("%w: price series: %w", ErrUpstreamUnavailable, err)
	}

	obs := Join(cat.Key, rates, policy, price)
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: series %d: %w", ErrUpstreamUnavailable, cat.SeriesID, ErrEmptySeries)
	}
	return obs, nil
}

func (ld *Loader) fetchOne(ctx context.Context, id int, r models.DateRange) ([]models.SeriesPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, ld.cfg.FetchTimeout)
	defer cancel()
	return ld.source.FetchSeries(ctx, id, r)
}

// Join correlates each rate sample with the nearest policy and price samples.
// The result is sorted by date, keeping input order on equal dates.
func Join(category string, rates, policy, price []models.SeriesPoint) []models.Observation {
	obs := make([]models.Observation, 0, len(rates))
	for _, p := range rates {
		if p.Value < 0 {
			continue
		}
		date := util.Day(p.Date)
		obs = append(obs, observation(category, date, p.Value,
			Nearest(policy, date, DefaultPolicyRate),
			Nearest(price, date, DefaultPriceIndex)))
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs
}

// Nearest returns the value of the sample closest to date in whole days.
// The first sample wins on ties; fallback is returned when samples is empty.
func Nearest(samples []models.SeriesPoint, date time.Time, fallback float64) float64 {
	if len(samples) == 0 {
		return fallback
	}
	best := samples[0].Value
	bestDist := util.DaysBetween(samples[0].Date, date)
	for _, s := range samples[1:] {
		if d := util.DaysBetween(s.Date, date); d < bestDist {
			best, bestDist = s.Value, d
		}
	}
	return best
}

// Load fetches one category, synthesizing on failure, and replaces its store entry.
func (ld *Loader) Load(ctx context.Context, cat config.Category) LoadResult {
	start := ld.now()
	res := LoadResult{Category: cat.Key}

	obs, err := ld.Fetch(ctx, cat, models.LastYears(start, ld.cfg.HistoryYears))
	if err != nil {
		res.Cause = err
		res.Source = models.SourceSynthesized
		res.History = ld.gen.Generate(cat)
		ld.l.Warn("falling back to synthetic series",
			logger.String("category", cat.Key),
			logger.Int("series_id", cat.SeriesID),
			logger.Error(err))
		ld.metrics.RecordError("upstream_unavailable")
	} else {
		res.Source = models.SourceFetched
		res.History = models.CategoryHistory{
			Category:     cat.Key,
			Source:       models.SourceFetched,
			LoadedAt:     ld.now(),
			Observations: obs,
		}
	}

	version := ld.store.Put(res.History)
	ld.metrics.RecordSeriesLoad(cat.Key, res.Source, res.History.Len())
	ld.l.Info("category history loaded",
		logger.String("category", cat.Key),
		logger.String("source", string(res.Source)),
		logger.Int("points", res.History.Len()),
		logger.Int64("version", version),
		logger.Duration("took_ms", ld.now().Sub(start)))
	return res
}

// LoadAll loads categories one after another, pacing between upstream calls.
// A cancelled ctx stops pacing but the remaining categories are still synthesized.
func (ld *Loader) LoadAll(ctx context.Context, cats []config.Category) []LoadResult {
	out := make([]LoadResult, 0, len(cats))
	for i, cat := range cats {
		if i > 0 && ld.source != nil {
			if err := ld.pacer.Wait(ctx); err != nil {
				ld.l.Debug("pacing interrupted", logger.Error(err))
			}
		}
		out = append(out, ld.Load(ctx, cat))
	}
	return out
}
