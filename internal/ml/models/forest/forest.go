package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

type TrainOptions struct {
	Trees    int
	MaxDepth int
	Seed     uint64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Trees:    200,
		MaxDepth: 6,
		Seed:     42,
	}
}

// Model is a bagged ensemble of CART trees. Class probabilities are the mean of
// the per-tree leaf distributions.
type Model struct {
	Trees        []*Tree
	NClasses     int
	featureNames []string
}

func Train(samples [][]float64, labels []int, featureNames []string, opts TrainOptions) (*Model, error) {
	if len(samples) == 0 || len(samples) != len(labels) {
		return nil, errors.New("invalid training dataset")
	}
	if len(samples[0]) == 0 {
		return nil, errors.New("empty feature vectors")
	}
	nFeatures := len(samples[0])
	for i := range samples {
		if len(samples[i]) != nFeatures {
			return nil, errors.New("ragged feature vectors")
		}
	}
	nClasses := 0
	for _, l := range labels {
		if l < 0 {
			return nil, errors.New("labels must be non-negative")
		}
		if l+1 > nClasses {
			nClasses = l + 1
		}
	}
	if nClasses < 2 {
		nClasses = 2
	}
	if opts.Trees <= 0 {
		opts.Trees = DefaultTrainOptions().Trees
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultTrainOptions().MaxDepth
	}
	if len(featureNames) != nFeatures {
		featureNames = make([]string, nFeatures)
		for i := range featureNames {
			featureNames[i] = fmt.Sprintf("f%d", i)
		}
	}

	maxFeatures := int(math.Sqrt(float64(nFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	m := &Model{
		Trees:        make([]*Tree, 0, opts.Trees),
		NClasses:     nClasses,
		featureNames: append([]string(nil), featureNames...),
	}
	n := len(samples)
	for t := 0; t < opts.Trees; t++ {
		rng := rand.New(rand.NewPCG(opts.Seed, uint64(t)))
		bootstrap := make([]int, n)
		for i := range bootstrap {
			bootstrap[i] = rng.IntN(n)
		}
		b := &builder{
			x:           samples,
			y:           labels,
			nClasses:    nClasses,
			maxDepth:    opts.MaxDepth,
			maxFeatures: maxFeatures,
			rng:         rng,
			tree:        &Tree{},
		}
		b.grow(bootstrap, 0)
		m.Trees = append(m.Trees, b.tree)
	}
	return m, nil
}

func (m *Model) PredictProba(sample []float64) []float64 {
	if m == nil || len(m.Trees) == 0 {
		return []float64{0.5, 0.5}
	}
	out := make([]float64, m.NClasses)
	for _, t := range m.Trees {
		for c, p := range t.PredictProba(sample) {
			out[c] += p
		}
	}
	for c := range out {
		out[c] /= float64(len(m.Trees))
	}
	return out
}

// PredictProb returns the probability of the positive (high risk) class.
func (m *Model) PredictProb(sample []float64) float64 {
	return m.PredictProba(sample)[1]
}

// Predict returns the most probable class; ties go to the lower class.
func (m *Model) Predict(sample []float64) int {
	return argmax(m.PredictProba(sample))
}

func (m *Model) PredictBatch(samples [][]float64) ([]int, []float64) {
	labels := make([]int, len(samples))
	probs := make([]float64, len(samples))
	for i := range samples {
		p := m.PredictProba(samples[i])
		labels[i] = argmax(p)
		probs[i] = p[1]
	}
	return labels, probs
}

// FeatureNames returns the column names the model was trained on. Unnamed
// columns read f0, f1 and so on.
func (m *Model) FeatureNames() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

func argmax(p []float64) int {
	best := 0
	for c := 1; c < len(p); c++ {
		if p[c] > p[best] {
			best = c
		}
	}
	return best
}
