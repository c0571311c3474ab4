package util

import (
    "testing"
    "time"
)

func TestParseSGSDate(t *testing.T) {
    got, ok := ParseSGSDate("05/03/2024")
    if !ok {
        t.Fatalf("expected ok")
    }
    want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
    if !got.Equal(want) {
        t.Fatalf("unexpected time %v", got)
    }
    if FormatSGSDate(got) != "05/03/2024" {
        t.Fatalf("unexpected format %s", FormatSGSDate(got))
    }
}

func TestParseSGSDateInvalid(t *testing.T) {
    for _, s := range []string{"", "2024-03-05", "31/02/2024", "abc"} {
        if _, ok := ParseSGSDate(s); ok {
            t.Fatalf("expected %q to be rejected", s)
        }
    }
}

func TestDaysBetween(t *testing.T) {
    a := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
    b := time.Date(2024, 1, 7, 1, 0, 0, 0, time.UTC)
    if d := DaysBetween(a, b); d != 3 {
        t.Fatalf("expected 3, got %d", d)
    }
    if d := DaysBetween(b, a); d != 3 {
        t.Fatalf("expected symmetric 3, got %d", d)
    }
}
