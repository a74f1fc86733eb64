package forest

import (
	"math/rand/v2"
	"sort"
)

const leaf = -1

// Tree is a fitted CART classifier stored as parallel node arrays. Node 0 is the
// root; a node is a leaf when Left[n] == -1. Cover is the bootstrap-weighted
// number of training samples that reached the node.
type Tree struct {
	Feature   []int
	Threshold []float64
	Left      []int
	Right     []int
	Cover     []float64
	Value     [][]float64
}

func (t *Tree) IsLeaf(node int) bool {
	return t.Left[node] == leaf
}

// Leaf returns the index of the leaf that sample x falls into.
func (t *Tree) Leaf(x []float64) int {
	node := 0
	for !t.IsLeaf(node) {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return node
}

func (t *Tree) PredictProba(x []float64) []float64 {
	return t.Value[t.Leaf(x)]
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(node int) int
	walk = func(node int) int {
		if t.IsLeaf(node) {
			return 0
		}
		return 1 + max(walk(t.Left[node]), walk(t.Right[node]))
	}
	return walk(0)
}

type builder struct {
	x           [][]float64
	y           []int
	nClasses    int
	maxDepth    int
	maxFeatures int
	rng         *rand.Rand
	tree        *Tree
}

func (b *builder) addNode(samples []int) int {
	counts := b.classCounts(samples)
	value := make([]float64, b.nClasses)
	for c, n := range counts {
		value[c] = n / float64(len(samples))
	}
	b.tree.Feature = append(b.tree.Feature, leaf)
	b.tree.Threshold = append(b.tree.Threshold, 0)
	b.tree.Left = append(b.tree.Left, leaf)
	b.tree.Right = append(b.tree.Right, leaf)
	b.tree.Cover = append(b.tree.Cover, float64(len(samples)))
	b.tree.Value = append(b.tree.Value, value)
	return len(b.tree.Left) - 1
}

func (b *builder) grow(samples []int, depth int) int {
	node := b.addNode(samples)
	if depth >= b.maxDepth || len(samples) < 2 || gini(b.classCounts(samples), float64(len(samples))) == 0 {
		return node
	}
	feature, threshold, ok := b.bestSplit(samples)
	if !ok {
		return node
	}

	var left, right []int
	for _, s := range samples {
		if b.x[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	b.tree.Feature[node] = feature
	b.tree.Threshold[node] = threshold
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.tree.Left[node] = l
	b.tree.Right[node] = r
	return node
}

// bestSplit draws features in random order and keeps searching past maxFeatures
// until at least one valid partition has been found.
func (b *builder) bestSplit(samples []int) (int, float64, bool) {
	nFeatures := len(b.x[0])
	order := b.rng.Perm(nFeatures)

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := 0.0
	for visited, f := range order {
		if visited >= b.maxFeatures && bestFeature >= 0 {
			break
		}
		threshold, impurity, ok := b.scanFeature(samples, f)
		if !ok {
			continue
		}
		if bestFeature < 0 || impurity < bestImpurity {
			bestFeature, bestThreshold, bestImpurity = f, threshold, impurity
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

// scanFeature returns the midpoint threshold minimising the weighted Gini
// impurity of the two children.
func (b *builder) scanFeature(samples []int, f int) (float64, float64, bool) {
	sorted := append([]int(nil), samples...)
	sort.SliceStable(sorted, func(i, j int) bool { return b.x[sorted[i]][f] < b.x[sorted[j]][f] })

	total := b.classCounts(sorted)
	left := make([]float64, b.nClasses)
	right := append([]float64(nil), total...)
	n := float64(len(sorted))

	found := false
	bestThreshold, bestImpurity := 0.0, 0.0
	for i := 0; i < len(sorted)-1; i++ {
		c := b.y[sorted[i]]
		left[c]++
		right[c]--
		cur, next := b.x[sorted[i]][f], b.x[sorted[i+1]][f]
		if next <= cur {
			continue
		}
		nl := float64(i + 1)
		nr := n - nl
		impurity := (nl*gini(left, nl) + nr*gini(right, nr)) / n
		if !found || impurity < bestImpurity {
			found = true
			bestImpurity = impurity
			bestThreshold = cur + (next-cur)/2
			if bestThreshold == next {
				bestThreshold = cur
			}
		}
	}
	return bestThreshold, bestImpurity, found
}

func (b *builder) classCounts(samples []int) []float64 {
	counts := make([]float64, b.nClasses)
	for _, s := range samples {
		counts[b.y[s]]++
	}
	return counts
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}
