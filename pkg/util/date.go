package util

import (
    "strings"
    "time"
)

// SGSDateLayout is the dd/MM/yyyy layout used by the central bank series API.
const SGSDateLayout = "02/01/2006"

// ParseSGSDate parses a dd/MM/yyyy date at UTC midnight. Returns (t, true) on success.
func ParseSGSDate(s string) (time.Time, bool) {
    s = strings.TrimSpace(s)
    if s == "" {
        return time.Time{}, false
    }
    t, err := time.ParseInLocation(SGSDateLayout, s, time.UTC)
    if err != nil {
        return time.Time{}, false
    }
    return t, true
}

// FormatSGSDate formats t as dd/MM/yyyy.
func FormatSGSDate(t time.Time) string {
    return t.Format(SGSDateLayout)
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of whole calendar days between a and b.
func DaysBetween(a, b time.Time) int {
    diff := int(Day(a).Sub(Day(b)).Hours() / 24)
    if diff < 0 {
        return -diff
    }
    return diff
}
