package cluster

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"CrediTech/internal/domain/models"
	"CrediTech/pkg/logger"
	"CrediTech/pkg/util"
)

type Config struct {
	K             int
	Population    int
	MaxIterations int
}

func (c Config) withDefaults() Config {
	if c.K <= 0 {
		c.K = 5
	}
	if c.Population <= 0 {
		c.Population = 1000
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 100
	}
	return c
}

// Clusterer segments a synthetic borrower population and publishes the
// resulting ClusterSet. Readers always see a complete set.
type Clusterer struct {
	cfg Config
	rng *util.Rand
	l   *logger.Logger
	now func() time.Time

	mu      sync.Mutex // one build at a time
	version int64
	current atomic.Pointer[models.ClusterSet]
}

func NewClusterer(cfg Config, rng *util.Rand, l *logger.Logger) *Clusterer {
	if rng == nil {
		rng = util.NewRand(0)
	}
	return &Clusterer{
		cfg: cfg.withDefaults(),
		rng: rng,
		l:   logger.OrNop(l).Component("clusterer"),
		now: time.Now,
	}
}

// Build draws a population, runs k-means and publishes the descriptors sorted
// by descending size.
func (c *Clusterer) Build(ctx context.Context) (models.ClusterSet, error) {
	if err := ctx.Err(); err != nil {
		return models.ClusterSet{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	pop := Population(c.rng, c.cfg.Population)
	points := make([][]float64, len(pop))
	for i, p := range pop {
		points[i] = normalize(p)
	}
	res := KMeans(points, c.cfg.K, c.cfg.MaxIterations, c.rng)

	set := models.ClusterSet{
		BuiltAt:        c.now(),
		PopulationSize: len(pop),
		Iterations:     res.Iterations,
		Clusters:       Describe(pop, res.Assignments, len(res.Centroids)),
	}
	c.version++
	set.Version = c.version
	c.current.Store(&set)

	c.l.Info("cluster set published",
		logger.Int64("version", set.Version),
		logger.Int("clusters", len(set.Clusters)),
		logger.Int("iterations", res.Iterations),
		logger.Duration("took_ms", time.Since(start)))
	return set, nil
}

// Current returns the latest published set.
func (c *Clusterer) Current() (models.ClusterSet, bool) {
	set := c.current.Load()
	if set == nil {
		return models.ClusterSet{}, false
	}
	return *set, true
}

// Describe summarizes every non-empty cluster, largest first.
func Describe(pop []models.BorrowerProfile, assign []int, k int) []models.ClusterDescriptor {
	members := make([][]models.BorrowerProfile, k)
	for i, p := range pop {
		members[assign[i]] = append(members[assign[i]], p)
	}

	out := make([]models.ClusterDescriptor, 0, k)
	for id, ms := range members {
		if len(ms) == 0 {
			continue
		}
		var age, income, score, amount float64
		for _, p := range ms {
			age += p.Age
			income += p.Income
			score += p.CreditScore
			amount += p.RequestedAmount
		}
		n := float64(len(ms))
		age, income, score, amount = age/n, income/n, score/n, amount/n

		out = append(out, models.ClusterDescriptor{
			ID:                  id,
			Size:                len(ms),
			SizeShare:           round(n/float64(len(pop))*100, 1),
			MeanAge:             round(age, 1),
			MeanIncome:          round(income, 0),
			MeanScore:           round(score, 0),
			MeanRequestedAmount: round(amount, 0),
			Label:               label(age, income, score),
			SuggestedRate:       suggestedRate(income, score),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	return out
}

func label(age, income, score float64) string {
	switch {
	case income > 10000 && score > 700:
		return "Perfil Premium: Alta renda, score excelente"
	case income > 5000 && score > 600:
		return "Perfil Padrão: Renda média, bom score"
	case score < 400:
		return "Perfil Alto Risco: Score baixo, necessita atenção"
	case age > 50:
		return "Perfil Maduro: Maior estabilidade"
	default:
		return "Perfil Jovem: Início de vida financeira"
	}
}

func suggestedRate(income, score float64) float64 {
	rate := 30.0
	switch {
	case score > 700:
		rate -= 10
	case score > 600:
		rate -= 5
	case score < 400:
		rate += 15
	}
	switch {
	case income > 10000:
		rate -= 5
	case income < 3000:
		rate += 8
	}
	if rate < 5 {
		return 5
	}
	return rate
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
