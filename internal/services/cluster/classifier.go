package cluster

import (
	"fmt"
	"math"

	"CrediTech/internal/domain/models"
	"CrediTech/internal/domain/service"
)

const unavailableMessage = "Clustering não disponível"

// SetSource exposes the latest published cluster set.
type SetSource interface {
	Current() (models.ClusterSet, bool)
}

// Classifier assigns profiles to the nearest segment of the current set.
type Classifier struct {
	sets SetSource
}

var _ service.ProfileClassifier = (*Classifier)(nil)

func NewClassifier(sets SetSource) *Classifier {
	return &Classifier{sets: sets}
}

func (c *Classifier) Current() (models.ClusterSet, bool) { return c.sets.Current() }

// Classify finds the segment whose published means are closest to the profile.
// Fields left at zero do not contribute to the distance.
func (c *Classifier) Classify(p models.BorrowerProfile) models.Classification {
	set, ok := c.sets.Current()
	if !ok || len(set.Clusters) == 0 {
		return models.Classification{Available: false, Message: unavailableMessage}
	}

	bestIdx, bestDist := -1, math.Inf(1)
	for i, cl := range set.Clusters {
		if d := Distance(p, cl); d < bestDist {
			bestIdx, bestDist = i, d
		}
	}
	if bestIdx < 0 {
		return models.Classification{Available: false, Message: unavailableMessage}
	}

	best := set.Clusters[bestIdx]
	sim := math.Max(0, math.Min(100, round(100-bestDist*10, 1)))
	return models.Classification{
		Available:       true,
		Cluster:         &best,
		Distance:        bestDist,
		Similarity:      sim,
		SimilarityLabel: fmt.Sprintf("%.1f%%", sim),
		Recommendations: recommendations(best),
	}
}

// Distance is the scaled euclidean distance over age, income and score.
func Distance(p models.BorrowerProfile, c models.ClusterDescriptor) float64 {
	var dAge, dIncome, dScore float64
	if p.Age > 0 {
		dAge = math.Abs(p.Age-c.MeanAge) / 60
	}
	if p.Income > 0 {
		dIncome = math.Abs(p.Income-c.MeanIncome) / 20000
	}
	if p.CreditScore > 0 {
		dScore = math.Abs(p.CreditScore-c.MeanScore) / 700
	}
	return math.Sqrt(dAge*dAge + dIncome*dIncome + dScore*dScore)
}

func recommendations(c models.ClusterDescriptor) []string {
	var out []string
	if c.MeanScore > 700 {
		out = append(out,
			"Você tem perfil para as melhores taxas do mercado",
			"Negocie desconto nas taxas apresentadas")
	}
	if c.MeanIncome > 10000 {
		out = append(out, "Considere conta premium para condições especiais")
	}
	if c.MeanScore < 500 {
		out = append(out,
			"Melhore seu score antes de solicitar crédito",
			"Considere modalidades com garantia")
	}
	return append(out, fmt.Sprintf("Taxa estimada para seu perfil: %.2f%% a.m.", c.SuggestedRate))
}
