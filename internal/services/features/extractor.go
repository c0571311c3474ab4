package features

import (
    "math"
    "time"

    "CrediTech/internal/domain/models"
)

// Size is the length of every feature vector.
const Size = 5

// Vector is [policy rate, price index, sin(2π·doy/365), cos(2π·doy/365), weekday/7].
// Trained networks depend on this ordering and scaling.
type Vector [Size]float64

// Build maps an observation to its feature vector.
func Build(o models.Observation) Vector {
    return encode(o.PolicyRate, o.PriceIndex, o.DayOfYear, o.Weekday)
}

// ForDate builds the vector for an arbitrary calendar date, used when forecasting.
func ForDate(policyRate, priceIndex float64, date time.Time) Vector {
    return encode(policyRate, priceIndex, date.YearDay(), int(date.Weekday()))
}

func encode(policy, price float64, dayOfYear, weekday int) Vector {
    angle := 2 * math.Pi * float64(dayOfYear) / 365
    return Vector{
        policy,
        price,
        math.Sin(angle),
        math.Cos(angle),
        float64(weekday) / 7,
    }
}

// Matrix flattens observations into a row-major design matrix with the matching
// target rates.
func Matrix(obs []models.Observation) (x []float64, y []float64) {
    x = make([]float64, 0, len(obs)*Size)
    y = make([]float64, 0, len(obs))
    for _, o := range obs {
        v := Build(o)
        x = append(x, v[:]...)
        y = append(y, o.Rate)
    }
    return x, y
}
