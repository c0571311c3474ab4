package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/pkg/util"
)

func TestKMeans_SeparatesObviousGroups(t *testing.T) {
	var points [][]float64
	for i := 0; i < 20; i++ {
		d := float64(i%5) * 0.01
		points = append(points, []float64{0 + d, 0 + d}, []float64{10 + d, 10 + d})
	}

	res := KMeans(points, 2, 100, util.NewRand(1))
	require.Len(t, res.Centroids, 2)
	for i := 0; i < len(points); i += 2 {
		assert.Equal(t, res.Assignments[0], res.Assignments[i])
		assert.NotEqual(t, res.Assignments[i], res.Assignments[i+1])
	}
	assert.LessOrEqual(t, res.Iterations, 100)
}

func TestKMeans_KLargerThanPoints(t *testing.T) {
	res := KMeans([][]float64{{1}, {2}}, 5, 10, util.NewRand(1))
	assert.Len(t, res.Centroids, 2)
}

func TestKMeans_Empty(t *testing.T) {
	assert.Empty(t, KMeans(nil, 3, 10, util.NewRand(1)).Assignments)
}

func TestKMeans_RespectsIterationCap(t *testing.T) {
	points := make([][]float64, 200)
	rng := util.NewRand(3)
	for i := range points {
		points[i] = []float64{rng.Float64(), rng.Float64()}
	}
	res := KMeans(points, 5, 1, util.NewRand(3))
	assert.Equal(t, 1, res.Iterations)
}
