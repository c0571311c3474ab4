package history

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/domain/models"
)

func hist(cat string, src models.SeriesSource, n int) models.CategoryHistory {
	obs := make([]models.Observation, n)
	for i := range obs {
		obs[i] = observation(cat, day(i-n), float64(i), 10+float64(i), 4)
	}
	return models.CategoryHistory{Category: cat, Source: src, Observations: obs}
}

func TestStore_PutReplacesWholesale(t *testing.T) {
	s := NewStore()
	v1 := s.Put(hist("a", models.SourceFetched, 3))
	v2 := s.Put(hist("a", models.SourceSynthesized, 5))

	assert.Greater(t, v2, v1)
	h, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 5, h.Len())
	assert.Equal(t, 5, s.TotalPoints())
}

func TestStore_GetMissing(t *testing.T) {
	_, err := NewStore().Get("missing")
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestStore_CategoriesAndSources(t *testing.T) {
	s := NewStore()
	s.Put(hist("b", models.SourceFetched, 1))
	s.Put(hist("a", models.SourceSynthesized, 1))

	assert.Equal(t, []string{"a", "b"}, s.Categories())
	assert.Equal(t, map[string]models.SeriesSource{"a": models.SourceSynthesized, "b": models.SourceFetched}, s.Sources())
}

func TestStore_LatestIndicatorsPrefersFetched(t *testing.T) {
	s := NewStore()
	_, ok := s.LatestIndicators()
	assert.False(t, ok)

	s.Put(hist("synthetic", models.SourceSynthesized, 10))
	s.Put(hist("real", models.SourceFetched, 2))

	ind, ok := s.LatestIndicators()
	require.True(t, ok)
	assert.Equal(t, 11.0, ind.PolicyRate)
}

func TestStore_ConcurrentReadersSeeWholeHistories(t *testing.T) {
	s := NewStore()
	s.Put(hist("a", models.SourceFetched, 4))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Put(hist("a", models.SourceFetched, 4+(i%2)*4))
			}
		}(w)
	}
	for r := 0; r < 200; r++ {
		h, err := s.Get("a")
		require.NoError(t, err)
		assert.Contains(t, []int{4, 8}, h.Len())
	}
	wg.Wait()
}
