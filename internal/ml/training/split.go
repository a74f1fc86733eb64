package training

import (
	"errors"
	"math"
	"math/rand/v2"
)

// Split is a train/held-out partition of a labeled matrix.
type Split struct {
	TrainX [][]float64
	TrainY []int
	TestX  [][]float64
	TestY  []int
}

// TrainTestSplit shuffles rows with a seeded permutation and holds out
// ceil(testFraction*n) of them. The split is i.i.d.; temporal order is not kept.
func TrainTestSplit(x [][]float64, y []int, testFraction float64, seed uint64) (Split, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return Split{}, errors.New("invalid dataset for split")
	}
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, errors.New("test fraction must be in (0, 1)")
	}
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest >= n {
		return Split{}, errors.New("dataset split produced empty partitions")
	}

	rng := rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
	perm := rng.Perm(n)

	s := Split{
		TrainX: make([][]float64, 0, n-nTest),
		TrainY: make([]int, 0, n-nTest),
		TestX:  make([][]float64, 0, nTest),
		TestY:  make([]int, 0, nTest),
	}
	for i, idx := range perm {
		if i < nTest {
			s.TestX = append(s.TestX, x[idx])
			s.TestY = append(s.TestY, y[idx])
			continue
		}
		s.TrainX = append(s.TrainX, x[idx])
		s.TrainY = append(s.TrainY, y[idx])
	}
	return s, nil
}
