package model

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"CrediTech/internal/services/features"
	"CrediTech/pkg/util"
)

var ErrInsufficientData = errors.New("model: at least two samples are required")

const (
	hidden1Units = 16
	hidden2Units = 8

	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7
)

// TrainConfig controls a single fit.
type TrainConfig struct {
	Epochs          int
	BatchSize       int
	LearningRate    float64
	ValidationSplit float64
	Dropout         float64
}

func DefaultTrainConfig() TrainConfig {
	return TrainConfig{Epochs: 50, BatchSize: 32, LearningRate: 0.001, ValidationSplit: 0.2, Dropout: 0.2}
}

func (c TrainConfig) withDefaults() TrainConfig {
	d := DefaultTrainConfig()
	if c.Epochs <= 0 {
		c.Epochs = d.Epochs
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.ValidationSplit < 0 || c.ValidationSplit >= 1 {
		c.ValidationSplit = d.ValidationSplit
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		c.Dropout = d.Dropout
	}
	return c
}

// TrainStats summarizes a completed fit. Losses are MSE on the standardized target.
type TrainStats struct {
	Samples           int     `json:"samples"`
	TrainSamples      int     `json:"train_samples"`
	ValidationSamples int     `json:"validation_samples"`
	Epochs            int     `json:"epochs"`
	TrainLoss         float64 `json:"train_loss"`
	ValidationLoss    float64 `json:"validation_loss"`
}

type layer struct {
	w      *mat.Dense
	b      []float64
	mw, vw []float64
	mb, vb []float64
}

// newLayer uses Xavier uniform initialization.
func newLayer(in, out int, rng *util.Rand) *layer {
	scale := math.Sqrt(6.0 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * scale
	}
	return &layer{
		w:  mat.NewDense(in, out, data),
		b:  make([]float64, out),
		mw: make([]float64, in*out),
		vw: make([]float64, in*out),
		mb: make([]float64, out),
		vb: make([]float64, out),
	}
}

// forward returns a·W + b.
func (l *layer) forward(a mat.Matrix) *mat.Dense {
	var z mat.Dense
	z.Mul(a, l.w)
	rows, _ := z.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(z.RawRowView(i), l.b)
	}
	return &z
}

func (l *layer) update(gw *mat.Dense, gb []float64, lr float64, t int) {
	adamStep(l.w.RawMatrix().Data, gw.RawMatrix().Data, l.mw, l.vw, lr, t)
	adamStep(l.b, gb, l.mb, l.vb, lr, t)
}

func adamStep(p, g, m, v []float64, lr float64, t int) {
	c1 := 1 - math.Pow(adamBeta1, float64(t))
	c2 := 1 - math.Pow(adamBeta2, float64(t))
	for i := range p {
		m[i] = adamBeta1*m[i] + (1-adamBeta1)*g[i]
		v[i] = adamBeta2*v[i] + (1-adamBeta2)*g[i]*g[i]
		p[i] -= lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + adamEpsilon)
	}
}

// Network is a 5 → 16 → 8 → 1 regression MLP with ReLU hidden layers and
// dropout after the first hidden layer. It is read-only once Fit returns.
type Network struct {
	h1, h2, out *layer
	dropout     float64

	xMean, xStd [features.Size]float64
	yMean, yStd float64
}

// Fit trains a new network on row-major inputs x (len(y) rows of features.Size)
// and targets y. The trailing ValidationSplit share of rows is held out.
func Fit(x, y []float64, cfg TrainConfig, rng *util.Rand) (*Network, TrainStats, error) {
	n := len(y)
	if n < 2 || len(x) != n*features.Size {
		return nil, TrainStats{}, ErrInsufficientData
	}
	cfg = cfg.withDefaults()
	if rng == nil {
		rng = util.NewRand(0)
	}

	nVal := int(float64(n) * cfg.ValidationSplit)
	nTrain := n - nVal

	net := &Network{
		h1:      newLayer(features.Size, hidden1Units, rng),
		h2:      newLayer(hidden1Units, hidden2Units, rng),
		out:     newLayer(hidden2Units, 1, rng),
		dropout: cfg.Dropout,
	}
	net.fitScaler(x[:nTrain*features.Size], y[:nTrain])

	xs := net.scaleInputs(x)
	ys := net.scaleTargets(y)

	stats := TrainStats{Samples: n, TrainSamples: nTrain, ValidationSamples: nVal, Epochs: cfg.Epochs}
	step := 0
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		order := rng.Perm(nTrain)
		var sum float64
		for start := 0; start < nTrain; start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > nTrain {
				end = nTrain
			}
			bx, by := batch(xs, ys, order[start:end])
			step++
			sum += net.step(bx, by, cfg.LearningRate, step, rng) * float64(end-start)
		}
		stats.TrainLoss = sum / float64(nTrain)
	}
	if nVal > 0 {
		stats.ValidationLoss = net.loss(mat.NewDense(nVal, features.Size, xs[nTrain*features.Size:]), ys[nTrain:])
	}
	return net, stats, nil
}

func batch(xs, ys []float64, idx []int) (*mat.Dense, []float64) {
	bx := mat.NewDense(len(idx), features.Size, nil)
	by := make([]float64, len(idx))
	for r, i := range idx {
		bx.SetRow(r, xs[i*features.Size:(i+1)*features.Size])
		by[r] = ys[i]
	}
	return bx, by
}

func (n *Network) fitScaler(x, y []float64) {
	rows := len(y)
	col := make([]float64, rows)
	for j := 0; j < features.Size; j++ {
		for i := 0; i < rows; i++ {
			col[i] = x[i*features.Size+j]
		}
		n.xMean[j], n.xStd[j] = meanStd(col)
	}
	n.yMean, n.yStd = meanStd(y)
}

func meanStd(v []float64) (float64, float64) {
	mean, std := stat.MeanStdDev(v, nil)
	if !(std > 1e-12) {
		std = 1
	}
	return mean, std
}

func (n *Network) scaleInputs(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		j := i % features.Size
		out[i] = (v - n.xMean[j]) / n.xStd[j]
	}
	return out
}

func (n *Network) scaleTargets(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = (v - n.yMean) / n.yStd
	}
	return out
}

// step runs one forward/backward pass on a batch and applies Adam updates.
// Returns the batch MSE before the update.
func (n *Network) step(x *mat.Dense, y []float64, lr float64, t int, rng *util.Rand) float64 {
	rows, _ := x.Dims()

	a1 := n.h1.forward(x)
	relu(a1)
	mask := dropoutMask(rows, hidden1Units, n.dropout, rng)
	d1 := mat.DenseCopyOf(a1)
	d1.MulElem(d1, mask)

	a2 := n.h2.forward(d1)
	relu(a2)
	pred := n.out.forward(a2)

	dOut := mat.NewDense(rows, 1, nil)
	var loss float64
	for i := 0; i < rows; i++ {
		e := pred.At(i, 0) - y[i]
		loss += e * e
		dOut.Set(i, 0, 2*e/float64(rows))
	}

	g3w, g3b := gradients(a2, dOut)

	var dA2 mat.Dense
	dA2.Mul(dOut, n.out.w.T())
	reluBackward(&dA2, a2)
	g2w, g2b := gradients(d1, &dA2)

	var dA1 mat.Dense
	dA1.Mul(&dA2, n.h2.w.T())
	dA1.MulElem(&dA1, mask)
	reluBackward(&dA1, a1)
	g1w, g1b := gradients(x, &dA1)

	n.out.update(g3w, g3b, lr, t)
	n.h2.update(g2w, g2b, lr, t)
	n.h1.update(g1w, g1b, lr, t)

	return loss / float64(rows)
}

func (n *Network) infer(x mat.Matrix) *mat.Dense {
	a1 := n.h1.forward(x)
	relu(a1)
	a2 := n.h2.forward(a1)
	relu(a2)
	return n.out.forward(a2)
}

func (n *Network) loss(x *mat.Dense, y []float64) float64 {
	pred := n.infer(x)
	var sum float64
	for i, target := range y {
		e := pred.At(i, 0) - target
		sum += e * e
	}
	return sum / float64(len(y))
}

// Predict returns the rate predicted for one feature vector, in original units.
func (n *Network) Predict(v features.Vector) float64 {
	in := make([]float64, features.Size)
	for j := range v {
		in[j] = (v[j] - n.xMean[j]) / n.xStd[j]
	}
	out := n.infer(mat.NewDense(1, features.Size, in))
	return out.At(0, 0)*n.yStd + n.yMean
}

// gradients returns aᵀ·d and the column sums of d.
func gradients(a mat.Matrix, d *mat.Dense) (*mat.Dense, []float64) {
	var gw mat.Dense
	gw.Mul(a.T(), d)
	_, cols := d.Dims()
	gb := make([]float64, cols)
	for j := range gb {
		gb[j] = floats.Sum(mat.Col(nil, j, d))
	}
	return &gw, gb
}

func relu(m *mat.Dense) {
	m.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, m)
}

func reluBackward(grad, act *mat.Dense) {
	grad.Apply(func(i, j int, v float64) float64 {
		if act.At(i, j) <= 0 {
			return 0
		}
		return v
	}, grad)
}

// dropoutMask is an inverted-dropout mask: kept units are scaled by 1/(1-p).
func dropoutMask(rows, cols int, p float64, rng *util.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	keep := 1 / (1 - p)
	for i := range data {
		if p == 0 || rng.Float64() >= p {
			data[i] = keep
		}
	}
	return mat.NewDense(rows, cols, data)
}
