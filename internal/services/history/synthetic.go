package history

import (
	"math"
	"time"

	"CrediTech/internal/domain/models"
	"CrediTech/pkg/config"
	"CrediTech/pkg/util"
)

const (
	DefaultPolicyRate = 10.0
	DefaultPriceIndex = 4.0

	defaultBaseMin   = 20.0
	defaultBaseWidth = 20.0
)

// Generator builds plausible daily histories when the upstream series cannot be used.
type Generator struct {
	rng  *util.Rand
	days int
	now  func() time.Time
}

func NewGenerator(rng *util.Rand, days int, now func() time.Time) *Generator {
	if rng == nil {
		rng = util.NewRand(0)
	}
	if days <= 0 {
		days = 1825
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, days: days, now: now}
}

// Generate returns days+1 observations ending today, oldest first.
func (g *Generator) Generate(cat config.Category) models.CategoryHistory {
	baseMin, baseWidth := cat.BaseMin, cat.BaseWidth
	if baseMin == 0 && baseWidth == 0 {
		baseMin, baseWidth = defaultBaseMin, defaultBaseWidth
	}

	today := util.Day(g.now())
	obs := make([]models.Observation, 0, g.days+1)
	for i := g.days; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		base := g.rng.Span(baseMin, baseWidth)
		policy := DefaultPolicyRate + math.Sin(float64(i)/50)*3
		price := g.rng.Span(DefaultPriceIndex, 2)
		rate := base + (policy-DefaultPolicyRate)*0.8 + (price-DefaultPriceIndex)*0.5

		obs = append(obs, observation(cat.Key, date, math.Max(0, rate), policy, price))
	}

	return models.CategoryHistory{
		Category:     cat.Key,
		Source:       models.SourceSynthesized,
		LoadedAt:     g.now(),
		Observations: obs,
	}
}

func observation(category string, date time.Time, rate, policy, price float64) models.Observation {
	return models.Observation{
		Category:   category,
		Date:       date,
		Rate:       rate,
		PolicyRate: policy,
		PriceIndex: price,
		Weekday:    int(date.Weekday()),
		DayOfYear:  date.YearDay(),
	}
}
