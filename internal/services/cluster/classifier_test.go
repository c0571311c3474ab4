package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/domain/models"
)

type staticSets struct {
	set models.ClusterSet
	ok  bool
}

func (s staticSets) Current() (models.ClusterSet, bool) { return s.set, s.ok }

func fixedSet() models.ClusterSet {
	return models.ClusterSet{Version: 1, Clusters: []models.ClusterDescriptor{
		{ID: 0, Size: 300, MeanAge: 30, MeanIncome: 4000, MeanScore: 450, SuggestedRate: 45, Label: "young"},
		{ID: 1, Size: 200, MeanAge: 45, MeanIncome: 15000, MeanScore: 800, SuggestedRate: 15, Label: "premium"},
	}}
}

func TestClassify_Unavailable(t *testing.T) {
	res := NewClassifier(staticSets{}).Classify(models.BorrowerProfile{Age: 30})
	assert.False(t, res.Available)
	assert.Equal(t, "Clustering não disponível", res.Message)
	assert.Nil(t, res.Cluster)
}

func TestClassify_PicksNearest(t *testing.T) {
	c := NewClassifier(staticSets{set: fixedSet(), ok: true})
	res := c.Classify(models.BorrowerProfile{Age: 45, Income: 15000, CreditScore: 800})

	require.True(t, res.Available)
	assert.Equal(t, 1, res.Cluster.ID)
	assert.Equal(t, 0.0, res.Distance)
	assert.Equal(t, 100.0, res.Similarity)
	assert.Equal(t, "100.0%", res.SimilarityLabel)
	assert.Equal(t, []string{
		"Você tem perfil para as melhores taxas do mercado",
		"Negocie desconto nas taxas apresentadas",
		"Considere conta premium para condições especiais",
		"Taxa estimada para seu perfil: 15.00% a.m.",
	}, res.Recommendations)
}

func TestClassify_LowScoreRecommendations(t *testing.T) {
	res := NewClassifier(staticSets{set: fixedSet(), ok: true}).
		Classify(models.BorrowerProfile{Age: 31, Income: 4200, CreditScore: 460})

	require.True(t, res.Available)
	assert.Equal(t, 0, res.Cluster.ID)
	assert.Contains(t, res.Recommendations, "Melhore seu score antes de solicitar crédito")
	assert.Less(t, res.Similarity, 100.0)
}

func TestClassify_TieKeepsFirst(t *testing.T) {
	set := models.ClusterSet{Clusters: []models.ClusterDescriptor{
		{ID: 7, MeanAge: 40}, {ID: 8, MeanAge: 40},
	}}
	res := NewClassifier(staticSets{set: set, ok: true}).Classify(models.BorrowerProfile{Age: 40})
	assert.Equal(t, 7, res.Cluster.ID)
}

func TestClassify_SimilarityClampedAtZero(t *testing.T) {
	res := NewClassifier(staticSets{set: fixedSet(), ok: true}).
		Classify(models.BorrowerProfile{Age: 45, Income: 500000, CreditScore: 800})
	assert.Equal(t, 0.0, res.Similarity)
}
