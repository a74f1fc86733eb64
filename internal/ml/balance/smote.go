package balance

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const DefaultNeighbors = 5

var (
	ErrSingleClass          = errors.New("balance: target needs at least two classes")
	ErrInsufficientMinority = errors.New("balance: not enough minority samples for the neighbour count")
	ErrShape                = errors.New("balance: feature matrix and labels do not line up")
)

// SMOTE oversamples every non-majority class up to the majority count by
// interpolating between a sample and one of its K nearest same-class neighbours.
type SMOTE struct {
	K    int
	Seed uint64
}

func New(k int, seed uint64) *SMOTE {
	if k <= 0 {
		k = DefaultNeighbors
	}
	return &SMOTE{K: k, Seed: seed}
}

// Resample returns the input rows followed by the synthetic rows. The input is
// not modified.
func (s *SMOTE) Resample(x [][]float64, y []int) ([][]float64, []int, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, nil, ErrShape
	}
	dim := len(x[0])
	for i := range x {
		if len(x[i]) != dim {
			return nil, nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(x[i]), dim)
		}
	}
	k := s.K
	if k <= 0 {
		k = DefaultNeighbors
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	if len(byClass) < 2 {
		return nil, nil, ErrSingleClass
	}

	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	majority := classes[0]
	for _, c := range classes[1:] {
		if len(byClass[c]) > len(byClass[majority]) {
			majority = c
		}
	}
	target := len(byClass[majority])

	for _, c := range classes {
		if c == majority || len(byClass[c]) >= target {
			continue
		}
		if len(byClass[c]) < k+1 {
			return nil, nil, fmt.Errorf("%w: class %d has %d samples, need at least %d", ErrInsufficientMinority, c, len(byClass[c]), k+1)
		}
	}

	outX := make([][]float64, 0, target*len(classes))
	outY := make([]int, 0, target*len(classes))
	for i := range x {
		outX = append(outX, append([]float64(nil), x[i]...))
		outY = append(outY, y[i])
	}

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	for _, c := range classes {
		members := byClass[c]
		need := target - len(members)
		if c == majority || need <= 0 {
			continue
		}
		points := make([][]float64, len(members))
		for i, idx := range members {
			points[i] = x[idx]
		}
		neighbors := nearestNeighbors(points, k)
		for n := 0; n < need; n++ {
			pick := rng.IntN(len(points) * k)
			row, col := pick/k, pick%k
			base := points[row]
			other := points[neighbors[row][col]]
			gap := rng.Float64()

			synth := make([]float64, dim)
			floats.SubTo(synth, other, base)
			floats.Scale(gap, synth)
			floats.Add(synth, base)
			outX = append(outX, synth)
			outY = append(outY, c)
		}
	}
	return outX, outY, nil
}

// nearestNeighbors returns, for each point, the indices of its k closest other
// points by Euclidean distance. Ties resolve to the lower index.
func nearestNeighbors(points [][]float64, k int) [][]int {
	out := make([][]int, len(points))
	type cand struct {
		idx  int
		dist float64
	}
	for i := range points {
		cands := make([]cand, 0, len(points)-1)
		for j := range points {
			if i == j {
				continue
			}
			cands = append(cands, cand{idx: j, dist: floats.Distance(points[i], points[j], 2)})
		}
		sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })
		nn := make([]int, k)
		for n := 0; n < k; n++ {
			nn[n] = cands[n].idx
		}
		out[i] = nn
	}
	return out
}
