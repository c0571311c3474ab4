package cluster

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"CrediTech/pkg/util"
)

// KMeansResult holds the final assignment of every point.
type KMeansResult struct {
	Assignments []int
	Centroids   [][]float64
	Iterations  int
}

// KMeans runs Lloyd's algorithm with k-means++ seeding. It stops when no
// assignment changes or after maxIter rounds.
func KMeans(points [][]float64, k, maxIter int, rng *util.Rand) KMeansResult {
	if len(points) == 0 || k <= 0 {
		return KMeansResult{}
	}
	if k > len(points) {
		k = len(points)
	}

	centroids := seedPlusPlus(points, k, rng)
	assign := make([]int, len(points))
	for i := range assign {
		assign[i] = -1
	}

	iter := 0
	for iter < maxIter {
		iter++
		changed := false
		for i, p := range points {
			c := nearest(centroids, p)
			if c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
		recompute(points, assign, centroids)
	}

	return KMeansResult{Assignments: assign, Centroids: centroids, Iterations: iter}
}

func seedPlusPlus(points [][]float64, k int, rng *util.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(len(points))]))

	dist := make([]float64, len(points))
	for len(centroids) < k {
		for i, p := range points {
			d := floats.Distance(p, centroids[nearest(centroids, p)], 2)
			dist[i] = d * d
		}
		total := floats.Sum(dist)
		if total == 0 {
			centroids = append(centroids, clone(points[rng.Intn(len(points))]))
			continue
		}
		target := rng.Float64() * total
		idx := len(points) - 1
		for i, d := range dist {
			target -= d
			if target <= 0 {
				idx = i
				break
			}
		}
		centroids = append(centroids, clone(points[idx]))
	}
	return centroids
}

// nearest returns the index of the closest centroid, the first on ties.
func nearest(centroids [][]float64, p []float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centroids {
		if d := floats.Distance(p, c, 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// recompute moves every centroid to the mean of its members. Centroids with
// no members stay where they are.
func recompute(points [][]float64, assign []int, centroids [][]float64) {
	dim := len(points[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for i, p := range points {
		floats.Add(sums[assign[i]], p)
		counts[assign[i]]++
	}
	for i := range centroids {
		if counts[i] == 0 {
			continue
		}
		floats.Scale(1/float64(counts[i]), sums[i])
		copy(centroids[i], sums[i])
	}
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
