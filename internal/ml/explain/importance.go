package explain

import (
	"math"
	"sort"

	"credtech/internal/domain"
	"credtech/internal/ml/models/forest"
)

// Attribution holds per-sample SHAP values for one class of a model.
type Attribution struct {
	Base   float64
	Values [][]float64
}

// ForestSHAP averages tree SHAP values across the ensemble, matching the
// forest's mean-of-trees probability.
func ForestSHAP(model *forest.Model, samples [][]float64, class int) Attribution {
	out := Attribution{Values: make([][]float64, len(samples))}
	if model == nil || len(model.Trees) == 0 {
		return out
	}
	nTrees := float64(len(model.Trees))
	for _, tree := range model.Trees {
		out.Base += ExpectedValue(tree, class) / nTrees
	}
	for i, x := range samples {
		phi := make([]float64, len(x))
		for _, tree := range model.Trees {
			treePhi := TreeSHAP(tree, x, class)
			for j := range phi {
				phi[j] += treePhi[j] / nTrees
			}
		}
		out.Values[i] = phi
	}
	return out
}

// GlobalImportance ranks features by mean absolute SHAP value, most important first.
func GlobalImportance(attr Attribution, names []string) []domain.FeatureImportance {
	out := make([]domain.FeatureImportance, len(names))
	for j, name := range names {
		out[j].Feature = name
	}
	if len(attr.Values) == 0 {
		return out
	}
	for _, phi := range attr.Values {
		for j := range out {
			if j < len(phi) {
				out[j].MeanAbs += math.Abs(phi[j])
			}
		}
	}
	n := float64(len(attr.Values))
	for j := range out {
		out[j].MeanAbs /= n
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].MeanAbs > out[b].MeanAbs })
	return out
}
