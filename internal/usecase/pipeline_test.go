package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	"CrediTech/internal/services/cluster"
	"CrediTech/internal/services/history"
	"CrediTech/internal/services/model"
	"CrediTech/pkg/config"
	"CrediTech/pkg/util"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

var testCats = []config.Category{
	{Key: "pessoa-fisica-credito-pessoal", SeriesID: 25497, Description: "Crédito pessoal", BaseMin: 25, BaseWidth: 15},
	{Key: "veiculo-financiamento", SeriesID: 25503, Description: "Veículos", BaseMin: 15, BaseWidth: 10},
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domrepo.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev domrepo.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) count(typ string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

type failingArchive struct{ calls int }

func (f *failingArchive) SaveHistory(context.Context, models.CategoryHistory) error {
	f.calls++
	return errors.New("clickhouse down")
}

func (f *failingArchive) SaveTrainingRun(context.Context, domrepo.TrainingRun) error {
	f.calls++
	return errors.New("clickhouse down")
}

func (f *failingArchive) Health(context.Context) error { return nil }

func newPipeline(t *testing.T, archive domrepo.HistoryArchive, events domrepo.EventPublisher) *Pipeline {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	gen := history.NewGenerator(util.NewRand(11), 40, clock)
	loader := history.NewLoader(nil, gen, history.NewStore(), history.LoaderConfig{}, history.WithClock(clock))
	reg := model.NewRegistry(loader.Store(), model.TrainConfig{Epochs: 2}, util.NewRand(11), nil, nil)
	cl := cluster.NewClusterer(cluster.Config{K: 3, Population: 150, MaxIterations: 20}, util.NewRand(11), nil)
	return NewPipeline(testCats, loader, reg, cl, archive, events, nil)
}

func TestInitialize_BuildsEverything(t *testing.T) {
	pub := &recordingPublisher{}
	p := newPipeline(t, nil, pub)
	assert.False(t, p.Initialized())

	require.NoError(t, p.Initialize(context.Background()))

	st := p.Stats()
	assert.True(t, st.Initialized)
	assert.Equal(t, 2, st.Models)
	assert.NotZero(t, st.Clusters)
	assert.LessOrEqual(t, st.Clusters, 3)
	assert.Equal(t, int64(1), st.ClusterVersion)
	assert.Equal(t, 2*41, st.HistoryPoints)
	assert.Equal(t, models.SourceSynthesized, st.CategorySources["veiculo-financiamento"])

	assert.Equal(t, 2, pub.count(domrepo.EventSeriesLoaded))
	assert.Equal(t, 2, pub.count(domrepo.EventModelTrained))
	assert.Equal(t, 1, pub.count(domrepo.EventClustersPublished))
}

func TestInitialize_ArchiveFailuresAreNotFatal(t *testing.T) {
	arch := &failingArchive{}
	p := newPipeline(t, arch, nil)
	require.NoError(t, p.Initialize(context.Background()))
	assert.Equal(t, 4, arch.calls)
	assert.True(t, p.Initialized())
}

func TestReload(t *testing.T) {
	p := newPipeline(t, nil, nil)
	require.NoError(t, p.Initialize(context.Background()))

	e, err := p.Reload(context.Background(), "veiculo-financiamento")
	require.NoError(t, err)
	assert.Equal(t, "veiculo-financiamento", e.Category)

	_, err = p.Reload(context.Background(), "consignado")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRecluster_BumpsVersion(t *testing.T) {
	p := newPipeline(t, nil, nil)
	require.NoError(t, p.Initialize(context.Background()))

	set, err := p.Recluster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), set.Version)
	assert.Equal(t, int64(2), p.Stats().ClusterVersion)
}

func TestClearModelsAndCategories(t *testing.T) {
	p := newPipeline(t, nil, nil)
	require.NoError(t, p.Initialize(context.Background()))

	assert.Equal(t, 2, p.ClearModels())
	assert.Zero(t, p.Stats().Models)

	cats := p.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, "pessoa-fisica-credito-pessoal", cats[0].Key)
	assert.Equal(t, 25497, cats[0].SeriesID)

	_, ok := p.Indicators()
	assert.True(t, ok)
}
