package util

import "testing"

func TestSpanStaysWithinWidth(t *testing.T) {
    r := NewRand(7)
    for i := 0; i < 1000; i++ {
        v := r.Span(18, 60)
        if v < 18 || v >= 78 {
            t.Fatalf("Span(18, 60) = %v, want [18, 78)", v)
        }
    }
}
