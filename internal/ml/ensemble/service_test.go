package ensemble

import (
	"math"
	"testing"
)

func TestBlendWeightsMembers(t *testing.T) {
	s := NewService()
	probs, err := s.Blend(
		Member{Name: "forest", Weight: 0.4, Probs: []float64{0.9, 0.2}},
		Member{Name: "logreg", Weight: 0.3, Probs: []float64{0.6, 0.4}},
		Member{Name: "xgboost", Weight: 0.3, Probs: []float64{0.8, 0.1}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.4*0.9 + 0.3*0.6 + 0.3*0.8, 0.4*0.2 + 0.3*0.4 + 0.3*0.1}
	for i := range want {
		if math.Abs(probs[i]-want[i]) > 1e-12 {
			t.Fatalf("sample %d: expected %.4f, got %.4f", i, want[i], probs[i])
		}
	}
	if got := s.Decide(probs); got[0] != 1 || got[1] != 0 {
		t.Fatalf("unexpected decisions %v", got)
	}
}

func TestBlendNormalisesWeights(t *testing.T) {
	probs, err := NewService().Blend(
		Member{Name: "a", Weight: 2, Probs: []float64{1}},
		Member{Name: "b", Weight: 2, Probs: []float64{0}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probs[0] != 0.5 {
		t.Fatalf("expected 0.5, got %v", probs[0])
	}
}

func TestBlendRejectsBadMembers(t *testing.T) {
	s := NewService()
	if _, err := s.Blend(); err == nil {
		t.Fatal("expected error without members")
	}
	if _, err := s.Blend(Member{Name: "a", Weight: 1, Probs: []float64{1}}, Member{Name: "b", Weight: 1, Probs: []float64{1, 0}}); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if _, err := s.Blend(Member{Name: "a", Weight: 0, Probs: []float64{1}}); err == nil {
		t.Fatal("expected zero-weight error")
	}
}
