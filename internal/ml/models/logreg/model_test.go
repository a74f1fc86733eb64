package logreg

import (
	"testing"
)

func TestTrainSeparatesClasses(t *testing.T) {
	samples, labels := separableData()
	model, err := Train(samples, labels, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}

	if p := model.PredictProb([]float64{-2, -2}); p >= 0.5 {
		t.Fatalf("expected low sample prob < 0.5, got %.4f", p)
	}
	if p := model.PredictProb([]float64{3, 3}); p <= 0.5 {
		t.Fatalf("expected high sample prob > 0.5, got %.4f", p)
	}

	preds, probs := model.PredictBatch(samples)
	for i := range samples {
		if preds[i] != labels[i] {
			t.Fatalf("sample %d misclassified (p=%.3f)", i, probs[i])
		}
	}
	for _, w := range model.Weights() {
		if w <= 0 {
			t.Fatalf("expected positive weights for both features, got %v", model.Weights())
		}
	}
}

func TestTrainConstantFeature(t *testing.T) {
	samples := [][]float64{{1, 0}, {1, 1}, {1, 2}, {1, 3}}
	labels := []int{0, 0, 1, 1}
	model, err := Train(samples, labels, TrainOptions{Epochs: 200})
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if p := model.PredictProb([]float64{1, 3}); p <= 0.5 {
		t.Fatalf("constant column should not break training, got %.4f", p)
	}
}

func TestTrainRejectsBadInput(t *testing.T) {
	if _, err := Train(nil, nil, DefaultTrainOptions()); err == nil {
		t.Fatal("expected error for empty dataset")
	}
	if _, err := Train([][]float64{{1, 2}, {3}}, []int{0, 1}, DefaultTrainOptions()); err == nil {
		t.Fatal("expected error for ragged input")
	}
	var nilModel *Model
	if p := nilModel.PredictProb([]float64{1}); p != 0.5 {
		t.Fatalf("nil model should be uninformative, got %v", p)
	}
}

func separableData() ([][]float64, []int) {
	samples := make([][]float64, 0, 80)
	labels := make([]int, 0, 80)
	for i := 0; i < 40; i++ {
		samples = append(samples, []float64{-1.5 - float64(i)/40, -1.0 - float64(i)/60})
		labels = append(labels, 0)
	}
	for i := 0; i < 40; i++ {
		samples = append(samples, []float64{1.0 + float64(i)/40, 1.4 + float64(i)/60})
		labels = append(labels, 1)
	}
	return samples, labels
}
