package training

import (
	"fmt"

	"credtech/internal/ml/common"
	"credtech/internal/ml/models/logreg"
	"credtech/internal/ml/models/xgboost"

	"github.com/rs/zerolog/log"
)

// Classifier labels rows and scores their high-risk probability.
type Classifier interface {
	PredictBatch(samples [][]float64) ([]int, []float64)
}

// Challenger trains a comparison model on the forest's training split.
type Challenger struct {
	Name  string
	Train func(x [][]float64, y []int) (Classifier, error)
}

// DefaultChallengers is the linear baseline followed by the boosted trees.
func DefaultChallengers() []Challenger {
	return []Challenger{
		{Name: "logreg", Train: trainLogreg},
		{Name: "xgboost", Train: trainXGBoost},
	}
}

func trainLogreg(x [][]float64, y []int) (Classifier, error) {
	m, err := logreg.Train(x, y, logreg.DefaultTrainOptions())
	if err != nil {
		return nil, fmt.Errorf("train logistic regression: %w", err)
	}
	log.Debug().
		Strs("features", common.FeatureNames).
		Floats64("weights", m.Weights()).
		Msg("logistic regression coefficients")
	return m, nil
}

func trainXGBoost(x [][]float64, y []int) (Classifier, error) {
	m, err := xgboost.Train(x, y, xgboost.DefaultTrainOptions())
	if err != nil {
		return nil, fmt.Errorf("train xgboost: %w", err)
	}
	return m, nil
}
