package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrediTech/internal/services/features"
	"CrediTech/pkg/util"
)

// linearData builds targets that depend linearly on the first two features.
func linearData(n int) (x, y []float64) {
	for i := 0; i < n; i++ {
		policy := 8 + float64(i%7)
		price := 3 + float64(i%5)*0.5
		v := features.Vector{policy, price, math.Sin(float64(i)), math.Cos(float64(i)), float64(i%7) / 7}
		x = append(x, v[:]...)
		y = append(y, 20+2*policy-price)
	}
	return x, y
}

func TestFit_RejectsTooFewSamples(t *testing.T) {
	_, _, err := Fit([]float64{1, 2, 3, 4, 5}, []float64{1}, DefaultTrainConfig(), util.NewRand(1))
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, _, err = Fit([]float64{1}, []float64{1, 2}, DefaultTrainConfig(), util.NewRand(1))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFit_SplitsValidationTail(t *testing.T) {
	x, y := linearData(100)
	_, stats, err := Fit(x, y, TrainConfig{Epochs: 2}, util.NewRand(1))
	require.NoError(t, err)
	assert.Equal(t, 80, stats.TrainSamples)
	assert.Equal(t, 20, stats.ValidationSamples)
	assert.Equal(t, 2, stats.Epochs)
}

func TestFit_LearnsSimpleRelation(t *testing.T) {
	x, y := linearData(400)
	cfg := TrainConfig{Epochs: 150, BatchSize: 16, LearningRate: 0.01, ValidationSplit: 0.2, Dropout: 0.01}
	net, stats, err := Fit(x, y, cfg, util.NewRand(3))
	require.NoError(t, err)

	// A constant predictor scores 1.0 on the standardized target.
	assert.Less(t, stats.ValidationLoss, 0.5)
	assert.False(t, math.IsNaN(net.Predict(features.Vector{9, 4, 0, 1, 0})))
}

func TestFit_Deterministic(t *testing.T) {
	x, y := linearData(60)
	a, _, err := Fit(x, y, TrainConfig{Epochs: 3}, util.NewRand(11))
	require.NoError(t, err)
	b, _, err := Fit(x, y, TrainConfig{Epochs: 3}, util.NewRand(11))
	require.NoError(t, err)

	v := features.Vector{10, 4, 0.5, 0.5, 0.3}
	assert.Equal(t, a.Predict(v), b.Predict(v))
}

func TestFit_ConstantTarget(t *testing.T) {
	x, _ := linearData(20)
	y := make([]float64, 20)
	for i := range y {
		y[i] = 12
	}
	net, _, err := Fit(x, y, TrainConfig{Epochs: 2}, util.NewRand(1))
	require.NoError(t, err)
	assert.InDelta(t, 12, net.Predict(features.Vector{9, 4, 0, 1, 0}), 5)
}
