package explain

import (
	"credtech/internal/ml/models/forest"
)

// pathElement tracks one feature on the current root-to-node path: the fraction
// of cover flowing down the path when the feature is unknown (zero) or known
// (one), and the permutation weight of the subset sizes seen so far.
type pathElement struct {
	feature int
	zero    float64
	one     float64
	pweight float64
}

// TreeSHAP computes exact path-dependent SHAP values of the tree's output for
// the given class. The returned slice has one entry per feature and satisfies
// ExpectedValue(tree, class) + sum(phi) == tree.PredictProba(x)[class].
func TreeSHAP(tree *forest.Tree, x []float64, class int) []float64 {
	phi := make([]float64, len(x))
	recurse(tree, x, class, phi, 0, nil, 1, 1, -1)
	return phi
}

// ExpectedValue is the cover-weighted mean leaf output of the tree.
func ExpectedValue(tree *forest.Tree, class int) float64 {
	var sum float64
	for n := range tree.Left {
		if tree.IsLeaf(n) {
			sum += tree.Cover[n] * tree.Value[n][class]
		}
	}
	return sum / tree.Cover[0]
}

func recurse(tree *forest.Tree, x []float64, class int, phi []float64, node int, parent []pathElement, zero, one float64, feature int) {
	depth := len(parent)
	path := make([]pathElement, depth+1)
	copy(path, parent)
	extendPath(path, depth, zero, one, feature)

	if tree.IsLeaf(node) {
		value := tree.Value[node][class]
		for i := 1; i <= depth; i++ {
			w := unwoundPathSum(path, depth, i)
			el := path[i]
			phi[el.feature] += w * (el.one - el.zero) * value
		}
		return
	}

	split := tree.Feature[node]
	hot, cold := tree.Left[node], tree.Right[node]
	if x[split] > tree.Threshold[node] {
		hot, cold = cold, hot
	}
	hotZero := tree.Cover[hot] / tree.Cover[node]
	coldZero := tree.Cover[cold] / tree.Cover[node]

	incomingZero, incomingOne := 1.0, 1.0
	idx := 0
	for ; idx <= depth; idx++ {
		if path[idx].feature == split {
			break
		}
	}
	if idx <= depth {
		incomingZero = path[idx].zero
		incomingOne = path[idx].one
		unwindPath(path, depth, idx)
		depth--
	}
	path = path[:depth+1]

	recurse(tree, x, class, phi, hot, path, hotZero*incomingZero, incomingOne, split)
	recurse(tree, x, class, phi, cold, path, coldZero*incomingZero, 0, split)
}

func extendPath(path []pathElement, depth int, zero, one float64, feature int) {
	path[depth] = pathElement{feature: feature, zero: zero, one: one}
	if depth == 0 {
		path[depth].pweight = 1
	}
	d := float64(depth + 1)
	for i := depth - 1; i >= 0; i-- {
		path[i+1].pweight += one * path[i].pweight * float64(i+1) / d
		path[i].pweight = zero * path[i].pweight * float64(depth-i) / d
	}
}

func unwindPath(path []pathElement, depth, idx int) {
	one := path[idx].one
	zero := path[idx].zero
	next := path[depth].pweight
	d := float64(depth + 1)
	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := path[i].pweight
			path[i].pweight = next * d / (float64(i+1) * one)
			next = tmp - path[i].pweight*zero*float64(depth-i)/d
		} else {
			path[i].pweight = path[i].pweight * d / (zero * float64(depth-i))
		}
	}
	for i := idx; i < depth; i++ {
		path[i].feature = path[i+1].feature
		path[i].zero = path[i+1].zero
		path[i].one = path[i+1].one
	}
}

func unwoundPathSum(path []pathElement, depth, idx int) float64 {
	one := path[idx].one
	zero := path[idx].zero
	next := path[depth].pweight
	total := 0.0
	if one != 0 {
		for i := depth - 1; i >= 0; i-- {
			tmp := next / (float64(i+1) * one)
			total += tmp
			next = path[i].pweight - tmp*zero*float64(depth-i)
		}
	} else if zero != 0 {
		for i := depth - 1; i >= 0; i-- {
			total += path[i].pweight / (zero * float64(depth-i))
		}
	}
	return total * float64(depth+1)
}
