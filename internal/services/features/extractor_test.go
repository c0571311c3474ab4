package features

import (
    "math"
    "testing"
    "time"

    "CrediTech/internal/domain/models"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestBuildOrdering(t *testing.T) {
    v := Build(models.Observation{PolicyRate: 10.5, PriceIndex: 4.2, DayOfYear: 365, Weekday: 0})
    assert.Equal(t, 10.5, v[0])
    assert.Equal(t, 4.2, v[1])
    assert.InDelta(t, 0, v[2], 1e-9)
    assert.InDelta(t, 1, v[3], 1e-9)
    assert.Equal(t, 0.0, v[4])
}

func TestSeasonalEncodingContinuousAcrossYearEnd(t *testing.T) {
    dec31 := ForDate(0, 0, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
    jan1 := ForDate(0, 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
    dist := math.Hypot(dec31[2]-jan1[2], dec31[3]-jan1[3])
    assert.Less(t, dist, 0.05)
}

func TestForDateMatchesBuild(t *testing.T) {
    d := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC) // Friday
    o := models.Observation{PolicyRate: 1, PriceIndex: 2, DayOfYear: d.YearDay(), Weekday: int(d.Weekday())}
    assert.Equal(t, Build(o), ForDate(1, 2, d))
    assert.InDelta(t, 5.0/7, ForDate(1, 2, d)[4], 1e-12)
}

func TestMatrix(t *testing.T) {
    obs := []models.Observation{
        {Rate: 3, PolicyRate: 1, PriceIndex: 2, DayOfYear: 10, Weekday: 1},
        {Rate: 4, PolicyRate: 5, PriceIndex: 6, DayOfYear: 11, Weekday: 2},
    }
    x, y := Matrix(obs)
    require.Len(t, x, 2*Size)
    assert.Equal(t, []float64{3, 4}, y)
    assert.Equal(t, 5.0, x[Size])
}
