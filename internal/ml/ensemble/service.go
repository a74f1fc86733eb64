package ensemble

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Member is one model's positive-class probabilities over a shared sample set.
type Member struct {
	Name   string
	Weight float64
	Probs  []float64
}

// Service blends member probabilities into a single score per sample.
type Service struct {
	cut float64
}

func NewService() *Service { return &Service{cut: 0.5} }

// Blend returns the weight-normalised mean probability per sample.
func (s *Service) Blend(members ...Member) ([]float64, error) {
	if len(members) == 0 {
		return nil, errors.New("no ensemble members")
	}
	n := len(members[0].Probs)
	total := 0.0
	out := make([]float64, n)
	for _, m := range members {
		if len(m.Probs) != n {
			return nil, fmt.Errorf("member %s has %d probabilities, want %d", m.Name, len(m.Probs), n)
		}
		if m.Weight < 0 {
			return nil, fmt.Errorf("member %s has negative weight", m.Name)
		}
		floats.AddScaled(out, m.Weight, m.Probs)
		total += m.Weight
	}
	if total == 0 {
		return nil, errors.New("ensemble weights sum to zero")
	}
	floats.Scale(1/total, out)
	return out, nil
}

// Decide maps blended probabilities to labels at the service cut.
func (s *Service) Decide(probs []float64) []int {
	out := make([]int, len(probs))
	for i, p := range probs {
		if p >= s.cut {
			out[i] = 1
		}
	}
	return out
}
