package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	"CrediTech/internal/services/cluster"
	"CrediTech/internal/services/history"
	"CrediTech/internal/services/model"
	"CrediTech/pkg/config"
	"CrediTech/pkg/logger"
)

var ErrUnknownCategory = errors.New("usecase: unknown category")

// Pipeline owns the build sequence: load every category, train every model,
// then cluster. Reads never wait on it; each stage publishes by atomic swap.
type Pipeline struct {
	cats     []config.Category
	loader   *history.Loader
	store    *history.Store
	registry *model.Registry
	clusters *cluster.Clusterer
	archive  domrepo.HistoryArchive
	events   domrepo.EventPublisher
	l        *logger.Logger

	mu          sync.Mutex // one build step at a time
	initialized atomic.Bool
}

func NewPipeline(
	cats []config.Category,
	loader *history.Loader,
	registry *model.Registry,
	clusters *cluster.Clusterer,
	archive domrepo.HistoryArchive,
	events domrepo.EventPublisher,
	l *logger.Logger,
) *Pipeline {
	if archive == nil {
		archive = domrepo.NoopArchive{}
	}
	if events == nil {
		events = domrepo.NoopPublisher{}
	}
	return &Pipeline{
		cats:     cats,
		loader:   loader,
		store:    loader.Store(),
		registry: registry,
		clusters: clusters,
		archive:  archive,
		events:   events,
		l:        logger.OrNop(l).Component("pipeline"),
	}
}

// Initialize runs the full build. Training failures are logged per category and
// do not abort the run; only a cluster build error is returned.
func (p *Pipeline) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	results := p.loader.LoadAll(ctx, p.cats)
	for _, res := range results {
		p.afterLoad(ctx, res)
	}

	keys := make([]string, 0, len(p.cats))
	for _, c := range p.cats {
		keys = append(keys, c.Key)
	}
	failed := p.registry.TrainAll(ctx, keys)
	for _, key := range keys {
		if _, bad := failed[key]; bad {
			continue
		}
		if e, err := p.registry.Get(key); err == nil {
			p.afterTrain(ctx, e)
		}
	}

	set, err := p.clusters.Build(ctx)
	if err != nil {
		return fmt.Errorf("build clusters: %w", err)
	}
	p.publish(ctx, clustersEvent(set))

	p.initialized.Store(true)
	p.l.Info("analytics initialized",
		logger.Int("categories", len(p.cats)),
		logger.Int("models", p.registry.Count()),
		logger.Int("training_failures", len(failed)),
		logger.Int("clusters", len(set.Clusters)),
		logger.Duration("took_ms", time.Since(start)))
	return nil
}

// Initialized reports whether Initialize has completed once.
func (p *Pipeline) Initialized() bool { return p.initialized.Load() }

// Reload reloads and retrains one category.
func (p *Pipeline) Reload(ctx context.Context, category string) (*model.Entry, error) {
	cat, ok := p.category(category)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.afterLoad(ctx, p.loader.Load(ctx, cat))
	e, err := p.registry.Train(ctx, cat.Key)
	if err != nil {
		return nil, err
	}
	p.afterTrain(ctx, e)
	return e, nil
}

// Recluster rebuilds and republishes the cluster set.
func (p *Pipeline) Recluster(ctx context.Context) (models.ClusterSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, err := p.clusters.Build(ctx)
	if err != nil {
		return models.ClusterSet{}, err
	}
	p.publish(ctx, clustersEvent(set))
	return set, nil
}

// ClearModels drops every trained model.
func (p *Pipeline) ClearModels() int {
	return p.registry.Clear()
}

// Stats is a point-in-time snapshot; fields may come from different builds.
func (p *Pipeline) Stats() models.AnalyticsStats {
	st := models.AnalyticsStats{
		Models:          p.registry.Count(),
		HistoryPoints:   p.store.TotalPoints(),
		Initialized:     p.Initialized(),
		CategorySources: p.store.Sources(),
	}
	if set, ok := p.clusters.Current(); ok {
		st.Clusters = len(set.Clusters)
		st.ClusterVersion = set.Version
	}
	return st
}

// Categories lists the configured categories in configuration order.
func (p *Pipeline) Categories() []models.CategoryInfo {
	out := make([]models.CategoryInfo, 0, len(p.cats))
	for _, c := range p.cats {
		out = append(out, models.CategoryInfo{Key: c.Key, SeriesID: c.SeriesID, Description: c.Description})
	}
	return out
}

// Indicators returns the latest macro indicators across loaded histories.
func (p *Pipeline) Indicators() (models.Indicators, bool) {
	return p.store.LatestIndicators()
}

func (p *Pipeline) category(key string) (config.Category, bool) {
	for _, c := range p.cats {
		if c.Key == key {
			return c, true
		}
	}
	return config.Category{}, false
}

func (p *Pipeline) afterLoad(ctx context.Context, res history.LoadResult) {
	if err := p.archive.SaveHistory(ctx, res.History); err != nil {
		p.l.Warn("history not archived", logger.String("category", res.Category), logger.Error(err))
	}
	payload := map[string]any{
		"source": string(res.Source),
		"points": res.History.Len(),
	}
	if res.Cause != nil {
		payload["cause"] = res.Cause.Error()
	}
	p.publish(ctx, domrepo.Event{Type: domrepo.EventSeriesLoaded, Key: res.Category, Payload: payload})
}

func (p *Pipeline) afterTrain(ctx context.Context, e *model.Entry) {
	run := domrepo.TrainingRun{
		Category:       e.Category,
		Samples:        e.Stats.Samples,
		Epochs:         e.Stats.Epochs,
		TrainLoss:      e.Stats.TrainLoss,
		ValidationLoss: e.Stats.ValidationLoss,
		Duration:       e.Duration,
		TrainedAt:      e.TrainedAt,
	}
	if err := p.archive.SaveTrainingRun(ctx, run); err != nil {
		p.l.Warn("training run not archived", logger.String("category", e.Category), logger.Error(err))
	}
	p.publish(ctx, domrepo.Event{
		Type: domrepo.EventModelTrained,
		Key:  e.Category,
		Payload: map[string]any{
			"samples":         e.Stats.Samples,
			"epochs":          e.Stats.Epochs,
			"validation_loss": e.Stats.ValidationLoss,
			"duration_ms":     e.Duration.Milliseconds(),
		},
	})
}

func (p *Pipeline) publish(ctx context.Context, ev domrepo.Event) {
	if err := p.events.Publish(ctx, ev); err != nil {
		p.l.Warn("event not published", logger.String("type", ev.Type), logger.Error(err))
	}
}

func clustersEvent(set models.ClusterSet) domrepo.Event {
	return domrepo.Event{
		Type: domrepo.EventClustersPublished,
		Key:  "clusters",
		Payload: map[string]any{
			"version":    set.Version,
			"clusters":   len(set.Clusters),
			"iterations": set.Iterations,
		},
	}
}
