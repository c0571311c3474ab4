package model

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	"CrediTech/internal/services/features"
	"CrediTech/internal/services/history"
	"CrediTech/pkg/logger"
	"CrediTech/pkg/util"
)

var ErrModelNotFound = errors.New("model: no trained model for category")

// Entry is a trained network plus the context it was trained on. Immutable.
type Entry struct {
	Category  string
	Network   *Network
	Stats     TrainStats
	Last      models.Observation // most recent observation in the training history
	TrainedAt time.Time
	Duration  time.Duration
}

// Registry keeps at most one trained model per category. Reads go through an
// atomically swapped map, so Predict never waits on training.
type Registry struct {
	store   *history.Store
	cfg     TrainConfig
	rng     *util.Rand
	l       *logger.Logger
	metrics domrepo.Metrics

	mu      sync.Mutex // serializes writers
	entries atomic.Pointer[map[string]*Entry]
}

func NewRegistry(store *history.Store, cfg TrainConfig, rng *util.Rand, l *logger.Logger, m domrepo.Metrics) *Registry {
	if rng == nil {
		rng = util.NewRand(0)
	}
	if m == nil {
		m = domrepo.NoopMetrics{}
	}
	r := &Registry{
		store:   store,
		cfg:     cfg.withDefaults(),
		rng:     rng,
		l:       logger.OrNop(l).Component("model_registry"),
		metrics: m,
	}
	empty := map[string]*Entry{}
	r.entries.Store(&empty)
	return r
}

// Train fits a fresh model on the category's full history and replaces the
// previous one.
func (r *Registry) Train(ctx context.Context, category string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := r.store.Get(category)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", category, err)
	}
	last, ok := h.Last()
	if !ok || h.Len() < 2 {
		return nil, fmt.Errorf("train %s: %w", category, ErrInsufficientData)
	}

	start := time.Now()
	x, y := features.Matrix(h.Observations)
	net, stats, err := Fit(x, y, r.cfg, r.rng)
	if err != nil {
		r.metrics.RecordError("training")
		return nil, fmt.Errorf("train %s: %w", category, err)
	}

	e := &Entry{
		Category:  category,
		Network:   net,
		Stats:     stats,
		Last:      last,
		TrainedAt: time.Now(),
		Duration:  time.Since(start),
	}
	r.put(e)

	r.metrics.RecordTraining(category, e.Duration.Seconds(), stats.ValidationLoss)
	r.l.Info("model trained",
		logger.String("category", category),
		logger.Int("samples", stats.Samples),
		logger.Float64("train_loss", stats.TrainLoss),
		logger.Float64("val_loss", stats.ValidationLoss),
		logger.Duration("took_ms", e.Duration))
	return e, nil
}

// TrainAll trains categories one after another. Failures are logged and
// collected; the remaining categories still train.
func (r *Registry) TrainAll(ctx context.Context, categories []string) map[string]error {
	failed := map[string]error{}
	for _, c := range categories {
		if _, err := r.Train(ctx, c); err != nil {
			r.l.Error("training failed", logger.String("category", c), logger.Error(err))
			failed[c] = err
		}
	}
	return failed
}

func (r *Registry) put(e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := *r.entries.Load()
	next := make(map[string]*Entry, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[e.Category] = e
	r.entries.Store(&next)
}

// Get returns the current entry for a category.
func (r *Registry) Get(category string) (*Entry, error) {
	e, ok := (*r.entries.Load())[category]
	if !ok {
		return nil, ErrModelNotFound
	}
	return e, nil
}

func (r *Registry) Count() int { return len(*r.entries.Load()) }

// Categories lists categories with a trained model.
func (r *Registry) Categories() []string {
	m := *r.entries.Load()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clear drops every trained model.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(*r.entries.Load())
	empty := map[string]*Entry{}
	r.entries.Store(&empty)
	r.l.Info("models cleared", logger.Int("count", n))
	return n
}
