package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	"CrediTech/pkg/kafka"
	"CrediTech/pkg/logger"
)

var _ logger.Publisher = (*KafkaPublisher)(nil)

type fakeInserter struct {
	queries []string
	rows    [][][]any
	err     error
}

func (f *fakeInserter) InsertBatch(_ context.Context, q string, rows [][]any) error {
	f.queries = append(f.queries, q)
	f.rows = append(f.rows, rows)
	return f.err
}

func (f *fakeInserter) Health(context.Context) error { return f.err }

type sent struct {
	topic string
	key   []byte
	value []byte
}

type fakeProducer struct {
	msgs   []sent
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	if f.err != nil {
		return f.err
	}
	b, err := kafka.Encode(value)
	if err != nil {
		return err
	}
	f.msgs = append(f.msgs, sent{topic: topic, key: key, value: b})
	return nil
}

func (f *fakeProducer) Close() error { f.closed = true; return nil }

func TestSaveHistoryInsertsOneRowPerObservation(t *testing.T) {
	db := &fakeInserter{}
	a := NewCHHistoryArchive(db, "creditech", nil)
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	h := models.CategoryHistory{
		Category: "pessoal",
		Source:   models.SourceFetched,
		LoadedAt: day,
		Observations: []models.Observation{
			{Date: day.AddDate(0, 0, -1), Rate: 40.1, PolicyRate: 10.5, PriceIndex: 4.2},
			{Date: day, Rate: 40.3, PolicyRate: 10.5, PriceIndex: 4.2},
		},
	}

	require.NoError(t, a.SaveHistory(context.Background(), h))
	require.Len(t, db.rows, 1)
	assert.Len(t, db.rows[0], 2)
	assert.Contains(t, db.queries[0], "creditech.series_history")
	assert.Equal(t, "fetched", db.rows[0][1][5])
}

func TestSaveHistorySkipsEmpty(t *testing.T) {
	db := &fakeInserter{}
	a := NewCHHistoryArchive(db, "creditech", nil)
	require.NoError(t, a.SaveHistory(context.Background(), models.CategoryHistory{Category: "x"}))
	assert.Empty(t, db.queries)
}

func TestSaveTrainingRunWrapsErrors(t *testing.T) {
	boom := errors.New("down")
	a := NewCHHistoryArchive(&fakeInserter{err: boom}, "creditech", nil)
	err := a.SaveTrainingRun(context.Background(), domrepo.TrainingRun{Category: "pessoal", Duration: time.Second})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, a.Health(context.Background()), boom)
}

func TestSchemaNamesDatabase(t *testing.T) {
	stmts := Schema("analytics")
	require.Len(t, stmts, 3)
	for _, s := range stmts {
		assert.Contains(t, s, "analytics")
	}
}

func TestKafkaPublisherFillsIDAndTime(t *testing.T) {
	p := &fakeProducer{}
	pub := NewKafkaPublisher(p, "events")
	fixed := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	err := pub.Publish(context.Background(), domrepo.Event{
		Type:    domrepo.EventModelTrained,
		Key:     "pessoal",
		Payload: map[string]any{"epochs": 50},
	})
	require.NoError(t, err)
	require.Len(t, p.msgs, 1)
	assert.Equal(t, "events", p.msgs[0].topic)
	assert.Equal(t, "pessoal", string(p.msgs[0].key))

	var ev domrepo.Event
	require.NoError(t, json.Unmarshal(p.msgs[0].value, &ev))
	assert.NotEmpty(t, ev.ID)
	assert.True(t, ev.OccurredAt.Equal(fixed))
	assert.Equal(t, domrepo.EventModelTrained, ev.Type)

	require.NoError(t, pub.Close())
	assert.True(t, p.closed)
}

func TestLoggingPublisherSwallowsErrors(t *testing.T) {
	p := &fakeProducer{err: errors.New("broker down")}
	pub := NewLoggingPublisher(NewKafkaPublisher(p, "events"), logger.Nop())
	assert.NoError(t, pub.Publish(context.Background(), domrepo.Event{Type: domrepo.EventSeriesLoaded}))
}
