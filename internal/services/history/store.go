package history

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"CrediTech/internal/domain/models"
)

var ErrHistoryNotFound = errors.New("history: category not loaded")

// snapshot is one immutable version of every category history.
type snapshot struct {
	version   int64
	histories map[string]models.CategoryHistory
}

// Store holds per-category histories. Readers take a fixed snapshot; writers
// copy the map and swap it atomically so a reader never sees a partial update.
type Store struct {
	mu  sync.Mutex // serializes writers
	cur atomic.Pointer[snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.cur.Store(&snapshot{histories: map[string]models.CategoryHistory{}})
	return s
}

// Put replaces the category's history wholesale and returns the new store version.
func (s *Store) Put(h models.CategoryHistory) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.cur.Load()
	next := &snapshot{
		version:   old.version + 1,
		histories: make(map[string]models.CategoryHistory, len(old.histories)+1),
	}
	for k, v := range old.histories {
		next.histories[k] = v
	}
	next.histories[h.Category] = h
	s.cur.Store(next)
	return next.version
}

// Get returns the category's history as of the current version.
func (s *Store) Get(category string) (models.CategoryHistory, error) {
	h, ok := s.cur.Load().histories[category]
	if !ok {
		return models.CategoryHistory{}, ErrHistoryNotFound
	}
	return h, nil
}

func (s *Store) Version() int64 { return s.cur.Load().version }

// Categories lists loaded categories in lexical order.
func (s *Store) Categories() []string {
	snap := s.cur.Load()
	out := make([]string, 0, len(snap.histories))
	for k := range snap.histories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TotalPoints sums the observations of every category.
func (s *Store) TotalPoints() int {
	n := 0
	for _, h := range s.cur.Load().histories {
		n += h.Len()
	}
	return n
}

// Sources reports where each category's history came from.
func (s *Store) Sources() map[string]models.SeriesSource {
	snap := s.cur.Load()
	out := make(map[string]models.SeriesSource, len(snap.histories))
	for k, h := range snap.histories {
		out[k] = h.Source
	}
	return out
}

// LatestIndicators returns the indicators of the most recent observation across
// categories, preferring fetched histories over synthesized ones.
func (s *Store) LatestIndicators() (models.Indicators, bool) {
	var (
		best    models.Observation
		bestSrc models.SeriesSource
		found   bool
	)
	snap := s.cur.Load()
	for _, cat := range sortedKeys(snap.histories) {
		h := snap.histories[cat]
		last, ok := h.Last()
		if !ok {
			continue
		}
		better := !found ||
			(h.Source == models.SourceFetched && bestSrc != models.SourceFetched) ||
			(h.Source == bestSrc && last.Date.After(best.Date))
		if better {
			best, bestSrc, found = last, h.Source, true
		}
	}
	if !found {
		return models.Indicators{}, false
	}
	return models.Indicators{PolicyRate: best.PolicyRate, PriceIndex: best.PriceIndex, AsOf: best.Date}, true
}

func sortedKeys(m map[string]models.CategoryHistory) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

