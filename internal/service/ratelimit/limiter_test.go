package ratelimit

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestAllowBurstThenRefill(t *testing.T) {
    clock := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
    l := New(2, 1)
    l.now = func() time.Time { return clock }

    assert.True(t, l.Allow("1.2.3.4"))
    assert.True(t, l.Allow("1.2.3.4"))
    assert.False(t, l.Allow("1.2.3.4"))
    assert.True(t, l.Allow("5.6.7.8"), "buckets are per key")

    clock = clock.Add(time.Second)
    assert.True(t, l.Allow("1.2.3.4"))
    assert.False(t, l.Allow("1.2.3.4"))
}

func TestSweep(t *testing.T) {
    clock := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
    l := New(5, 1)
    l.now = func() time.Time { return clock }
    l.Allow("a")
    clock = clock.Add(time.Minute)
    l.Allow("b")

    assert.Equal(t, 1, l.Sweep(30*time.Second))
    assert.Len(t, l.m, 1)
}
