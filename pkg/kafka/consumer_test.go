package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	failures int
	calls    int
	panics   bool
}

func (h *stubHandler) Topic() string { return "creditech.analytics.commands" }

func (h *stubHandler) Handle(_ context.Context, _ []byte) error {
	h.calls++
	if h.panics {
		panic("boom")
	}
	if h.calls <= h.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestConsumer(t *testing.T, retry int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retry, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer()
	assert.Error(t, err)
}

func TestStartWithoutHandlers(t *testing.T) {
	c := newTestConsumer(t, 0)
	assert.Error(t, c.Start())
}

func TestHandleRetriesUntilSuccess(t *testing.T) {
	c := newTestConsumer(t, 3)
	h := &stubHandler{failures: 2}

	attempts, err := c.handle(h, []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestHandleGivesUpAfterRetryMax(t *testing.T) {
	c := newTestConsumer(t, 1)
	h := &stubHandler{failures: 10}

	attempts, err := c.handle(h, nil)
	assert.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestHandleRecoversPanics(t *testing.T) {
	c := newTestConsumer(t, 0)
	_, err := c.handle(&stubHandler{panics: true}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
}

func TestRegisterHandlerKeepsFirst(t *testing.T) {
	c := newTestConsumer(t, 0)
	first := &stubHandler{}
	c.RegisterHandler(first)
	c.RegisterHandler(&stubHandler{})
	assert.Same(t, first, c.handlers[first.Topic()])
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max)
	}
	d := backoffWithJitter(min, max, 1)
	assert.GreaterOrEqual(t, d, min/2)
	assert.LessOrEqual(t, d, min)
}

func TestEncode(t *testing.T) {
	b, err := Encode([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = Encode(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	_, err = Encode(make(chan int))
	assert.Error(t, err)
}
