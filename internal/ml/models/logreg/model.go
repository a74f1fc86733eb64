package logreg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type TrainOptions struct {
	LearningRate float64
	Epochs       int
	L2           float64
}

// Model is a standardised L2-regularised logistic regression used as a
// linear baseline next to the forest.
type Model struct {
	weights []float64
	bias    float64
	means   []float64
	stds    []float64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		LearningRate: 0.05,
		Epochs:       600,
		L2:           0.0001,
	}
}

// Train fits the model by full-batch gradient descent on labels in {0, 1}.
func Train(samples [][]float64, labels []int, opts TrainOptions) (*Model, error) {
	if len(samples) == 0 || len(samples) != len(labels) {
		return nil, errors.New("invalid training dataset")
	}
	width := len(samples[0])
	if width == 0 {
		return nil, errors.New("empty feature vectors")
	}
	for _, s := range samples {
		if len(s) != width {
			return nil, errors.New("ragged feature vectors")
		}
	}
	def := DefaultTrainOptions()
	if opts.LearningRate <= 0 {
		opts.LearningRate = def.LearningRate
	}
	if opts.Epochs <= 0 {
		opts.Epochs = def.Epochs
	}
	if opts.L2 < 0 {
		opts.L2 = def.L2
	}

	m := &Model{
		weights: make([]float64, width),
		means:   make([]float64, width),
		stds:    make([]float64, width),
	}
	column := make([]float64, len(samples))
	for j := 0; j < width; j++ {
		for i := range samples {
			column[i] = samples[i][j]
		}
		mean, variance := stat.PopMeanVariance(column, nil)
		m.means[j] = mean
		m.stds[j] = math.Sqrt(variance)
		if m.stds[j] == 0 {
			m.stds[j] = 1
		}
	}

	xs := make([][]float64, len(samples))
	for i := range samples {
		xs[i] = m.standardize(samples[i])
	}

	n := float64(len(samples))
	grads := make([]float64, width)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for j := range grads {
			grads[j] = 0
		}
		gradBias := 0.0
		for i, x := range xs {
			residual := sigmoid(floats.Dot(m.weights, x)+m.bias) - float64(labels[i])
			floats.AddScaled(grads, residual, x)
			gradBias += residual
		}
		floats.Scale(1/n, grads)
		floats.AddScaled(grads, opts.L2, m.weights)
		floats.AddScaled(m.weights, -opts.LearningRate, grads)
		m.bias -= opts.LearningRate * gradBias / n
	}
	return m, nil
}

func (m *Model) PredictProb(sample []float64) float64 {
	if m == nil || len(sample) != len(m.weights) {
		return 0.5
	}
	return sigmoid(floats.Dot(m.weights, m.standardize(sample)) + m.bias)
}

// PredictBatch returns hard labels at a 0.5 cut and positive-class probabilities.
func (m *Model) PredictBatch(samples [][]float64) ([]int, []float64) {
	preds := make([]int, len(samples))
	probs := make([]float64, len(samples))
	for i := range samples {
		probs[i] = m.PredictProb(samples[i])
		if probs[i] >= 0.5 {
			preds[i] = 1
		}
	}
	return preds, probs
}

// Weights returns the coefficients on the standardised features.
func (m *Model) Weights() []float64 {
	if m == nil {
		return nil
	}
	return append([]float64(nil), m.weights...)
}

func (m *Model) standardize(in []float64) []float64 {
	out := make([]float64, len(in))
	floats.SubTo(out, in, m.means)
	floats.Div(out, m.stds)
	return out
}

func sigmoid(x float64) float64 {
	if x > 35 {
		return 1
	}
	if x < -35 {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}
