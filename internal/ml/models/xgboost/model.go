package xgboost

import (
	"errors"
	"fmt"

	"credtech/internal/ml/common"

	"github.com/rmera/boo"
	"github.com/rmera/boo/utils"
)

const riskLabel = 1

var (
	ErrEmptyDataset = errors.New("xgboost: empty training dataset")
	ErrSingleClass  = errors.New("xgboost: training labels hold a single risk level")
)

// TrainOptions tunes the booster. Zero values take the defaults.
type TrainOptions struct {
	Rounds       int
	LearningRate float64
	MaxDepth     int

	// Cut is the high-risk probability at or above which a row is labeled high risk.
	Cut float64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Rounds:       50,
		LearningRate: 0.1,
		MaxDepth:     3,
		Cut:          0.5,
	}
}

func (o TrainOptions) withDefaults() TrainOptions {
	def := DefaultTrainOptions()
	if o.Rounds <= 0 {
		o.Rounds = def.Rounds
	}
	if o.LearningRate <= 0 {
		o.LearningRate = def.LearningRate
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = def.MaxDepth
	}
	if o.Cut <= 0 || o.Cut >= 1 {
		o.Cut = def.Cut
	}
	return o
}

// Model is a gradient-boosted risk scorer over the fixed credit feature vector.
type Model struct {
	boost   *boo.MultiClass
	riskCol int
	cut     float64
}

// Train boosts trees on rows laid out as common.FeatureNames with labels in {0, 1}.
func Train(samples [][]float64, labels []int, opts TrainOptions) (*Model, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(samples) != len(labels) {
		return nil, fmt.Errorf("xgboost: %d rows but %d labels", len(samples), len(labels))
	}
	width := len(common.FeatureNames)
	var high int
	for i, row := range samples {
		if len(row) != width {
			return nil, fmt.Errorf("xgboost: row %d has %d features, want %d", i, len(row), width)
		}
		switch labels[i] {
		case riskLabel:
			high++
		case 0:
		default:
			return nil, fmt.Errorf("xgboost: row %d has label %d", i, labels[i])
		}
	}
	if high == 0 || high == len(labels) {
		return nil, ErrSingleClass
	}
	opts = opts.withDefaults()

	xo := boo.DefaultXOptions()
	xo.Rounds = opts.Rounds
	xo.LearningRate = opts.LearningRate
	xo.MaxDepth = opts.MaxDepth
	xo.Verbose = false
	xo.EarlyStop = 0

	boost := boo.NewMultiClass(&utils.DataBunch{
		Data:   samples,
		Labels: append([]int(nil), labels...),
		Keys:   append([]string(nil), common.FeatureNames...),
	}, xo)
	if boost == nil {
		return nil, errors.New("xgboost: booster did not train")
	}

	m := &Model{boost: boost, riskCol: -1, cut: opts.Cut}
	for col, label := range boost.ClassLabels() {
		if label == riskLabel {
			m.riskCol = col
		}
	}
	if m.riskCol < 0 {
		return nil, errors.New("xgboost: booster has no high-risk output")
	}
	return m, nil
}

// PredictBatch labels each row and returns its high-risk probability.
func (m *Model) PredictBatch(samples [][]float64) ([]int, []float64) {
	labels := make([]int, len(samples))
	probs := make([]float64, len(samples))
	for i, row := range samples {
		probs[i] = m.riskProb(row)
		if probs[i] >= m.cut {
			labels[i] = riskLabel
		}
	}
	return labels, probs
}

func (m *Model) riskProb(row []float64) float64 {
	out := m.boost.PredictSingle(row)
	if m.riskCol >= len(out) {
		return 0.5
	}
	return common.Clamp01(out[m.riskCol])
}
