package balance

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResampleBalancesClasses(t *testing.T) {
	x, y := imbalanced(40, 8)
	s := New(DefaultNeighbors, 42)

	outX, outY, err := s.Resample(x, y)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if len(outX) != 80 || len(outY) != 80 {
		t.Fatalf("expected 80 rows, got %d/%d", len(outX), len(outY))
	}
	counts := map[int]int{}
	for _, label := range outY {
		counts[label]++
	}
	if counts[0] != 40 || counts[1] != 40 {
		t.Fatalf("expected 40/40, got %v", counts)
	}
	if diff := cmp.Diff(x, outX[:len(x)]); diff != "" {
		t.Fatalf("original rows must lead the output (-want +got):\n%s", diff)
	}
}

func TestResampleSyntheticRowsStayInMinorityHull(t *testing.T) {
	x, y := imbalanced(30, 6)
	outX, outY, err := New(5, 7).Resample(x, y)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	lo, hi := 100.0, 100.0+5
	for i := len(x); i < len(outX); i++ {
		if outY[i] != 1 {
			t.Fatalf("synthetic row %d has label %d", i, outY[i])
		}
		for _, v := range outX[i] {
			if v < lo || v > hi {
				t.Fatalf("synthetic value %v outside minority range [%v,%v]", v, lo, hi)
			}
		}
	}
}

func TestResampleDeterministicUnderSeed(t *testing.T) {
	x, y := imbalanced(50, 9)
	aX, aY, err := New(5, 42).Resample(x, y)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	bX, bY, err := New(5, 42).Resample(x, y)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if diff := cmp.Diff(aX, bX); diff != "" {
		t.Fatalf("same seed produced different rows (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(aY, bY); diff != "" {
		t.Fatalf("same seed produced different labels (-a +b):\n%s", diff)
	}

	cX, _, err := New(5, 43).Resample(x, y)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if cmp.Equal(aX, cX) {
		t.Fatal("expected a different seed to change the synthetic rows")
	}
}

func TestResampleFailsWithTooFewMinority(t *testing.T) {
	x, y := imbalanced(20, 3)
	_, _, err := New(5, 42).Resample(x, y)
	if !errors.Is(err, ErrInsufficientMinority) {
		t.Fatalf("expected ErrInsufficientMinority, got %v", err)
	}

	x, y = imbalanced(20, 5)
	if _, _, err := New(5, 42).Resample(x, y); !errors.Is(err, ErrInsufficientMinority) {
		t.Fatalf("5 minority samples cannot supply 5 neighbours each, got %v", err)
	}

	x, y = imbalanced(20, 6)
	if _, _, err := New(5, 42).Resample(x, y); err != nil {
		t.Fatalf("6 minority samples should be enough, got %v", err)
	}
}

func TestResampleFailsWithSingleClass(t *testing.T) {
	x, y := imbalanced(12, 0)
	_, _, err := New(5, 42).Resample(x, y)
	if !errors.Is(err, ErrSingleClass) {
		t.Fatalf("expected ErrSingleClass, got %v", err)
	}
}

func TestResampleRejectsRaggedInput(t *testing.T) {
	_, _, err := New(5, 1).Resample([][]float64{{1, 2}, {3}}, []int{0, 1})
	if !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	_, _, err = New(5, 1).Resample([][]float64{{1, 2}}, []int{0, 1})
	if !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape for length mismatch, got %v", err)
	}
}

func TestResampleAlreadyBalanced(t *testing.T) {
	x, y := imbalanced(4, 4)
	outX, outY, err := New(5, 42).Resample(x, y)
	if err != nil {
		t.Fatalf("balanced input should not need neighbours, got %v", err)
	}
	if len(outX) != 8 || len(outY) != 8 {
		t.Fatalf("expected passthrough, got %d rows", len(outX))
	}
}

// imbalanced builds majority rows around 0..majority and minority rows in [100,105].
func imbalanced(majority, minority int) ([][]float64, []int) {
	x := make([][]float64, 0, majority+minority)
	y := make([]int, 0, majority+minority)
	for i := 0; i < majority; i++ {
		x = append(x, []float64{float64(i), float64(i) * 0.5})
		y = append(y, 0)
	}
	for i := 0; i < minority; i++ {
		v := 100 + float64(i%6)
		if v > 105 {
			v = 105
		}
		x = append(x, []float64{v, 100 + float64(i%5)})
		y = append(y, 1)
	}
	return x, y
}
