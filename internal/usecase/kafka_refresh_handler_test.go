package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	reloaded   []string
	reclusters int
	err        error
}

func (f *fakeRefresher) Reload(_ context.Context, category string) error {
	f.reloaded = append(f.reloaded, category)
	return f.err
}

func (f *fakeRefresher) Recluster(context.Context) error {
	f.reclusters++
	return f.err
}

func TestRefreshHandler_Dispatch(t *testing.T) {
	f := &fakeRefresher{}
	h := NewKafkaRefreshHandler("commands", f, nil, nil)
	assert.Equal(t, "commands", h.Topic())

	require.NoError(t, h.Handle(context.Background(), []byte(`{"action":"reload","category":"veiculo-financiamento"}`)))
	require.NoError(t, h.Handle(context.Background(), []byte(`{"action":"recluster"}`)))

	assert.Equal(t, []string{"veiculo-financiamento"}, f.reloaded)
	assert.Equal(t, 1, f.reclusters)
}

func TestRefreshHandler_InvalidCommandsAreDropped(t *testing.T) {
	f := &fakeRefresher{}
	h := NewKafkaRefreshHandler("commands", f, nil, nil)

	assert.NoError(t, h.Handle(context.Background(), []byte(`{"action":"reload"}`)))
	assert.NoError(t, h.Handle(context.Background(), []byte(`{"action":"explode"}`)))
	assert.Empty(t, f.reloaded)
	assert.Zero(t, f.reclusters)
}

func TestRefreshHandler_Errors(t *testing.T) {
	h := NewKafkaRefreshHandler("commands", &fakeRefresher{err: errors.New("busy")}, nil, nil)
	assert.Error(t, h.Handle(context.Background(), []byte(`not json`)))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"action":"recluster"}`)))
}

func TestPipelineRefresher_IgnoresUnknownCategory(t *testing.T) {
	p := newPipeline(t, nil, nil)
	r := PipelineRefresher{P: p}
	assert.NoError(t, r.Reload(context.Background(), "consignado"))
	assert.NoError(t, r.Recluster(context.Background()))
}
