package training

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"credtech/internal/ml/common"
)

// ClassMetrics is one row of a classification report.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report summarises a classifier on the held-out set.
type Report struct {
	Accuracy    float64        `json:"accuracy"`
	AUC         float64        `json:"auc"`
	Classes     []ClassMetrics `json:"classes"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Support     int            `json:"support"`
}

// Evaluate builds a report for classes 0 and 1 from hard predictions and the
// positive-class probabilities.
func Evaluate(labels, preds []int, probs []float64) Report {
	n := len(labels)
	if n == 0 || len(preds) != n {
		return Report{AUC: 0.5}
	}

	classes := []int{0, 1}
	r := Report{Support: n}
	correct := 0
	for i := range labels {
		if labels[i] == preds[i] {
			correct++
		}
	}
	r.Accuracy = float64(correct) / float64(n)

	for _, c := range classes {
		tp, fp, fn, support := 0.0, 0.0, 0.0, 0
		for i := range labels {
			switch {
			case preds[i] == c && labels[i] == c:
				tp++
			case preds[i] == c && labels[i] != c:
				fp++
			case preds[i] != c && labels[i] == c:
				fn++
			}
			if labels[i] == c {
				support++
			}
		}
		m := ClassMetrics{Label: fmt.Sprintf("%d", c), Support: support}
		if tp+fp > 0 {
			m.Precision = tp / (tp + fp)
		}
		if tp+fn > 0 {
			m.Recall = tp / (tp + fn)
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)
	}

	r.MacroAvg = ClassMetrics{Label: "macro avg", Support: n}
	r.WeightedAvg = ClassMetrics{Label: "weighted avg", Support: n}
	for _, m := range r.Classes {
		k := float64(len(r.Classes))
		w := float64(m.Support) / float64(n)
		r.MacroAvg.Precision += m.Precision / k
		r.MacroAvg.Recall += m.Recall / k
		r.MacroAvg.F1 += m.F1 / k
		r.WeightedAvg.Precision += m.Precision * w
		r.WeightedAvg.Recall += m.Recall * w
		r.WeightedAvg.F1 += m.F1 * w
	}

	if len(probs) == n {
		r.AUC = computeAUC(labels, probs)
	} else {
		r.AUC = 0.5
	}
	return r
}

// String renders the report in the familiar classification-report layout.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%14s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	for _, m := range r.Classes {
		fmt.Fprintf(&b, "%14s %10.2f %10.2f %10.2f %10d\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%14s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.Support)
	for _, m := range []ClassMetrics{r.MacroAvg, r.WeightedAvg} {
		fmt.Fprintf(&b, "%14s %10.2f %10.2f %10.2f %10d\n", m.Label, m.Precision, m.Recall, m.F1, m.Support)
	}
	return b.String()
}

func computeAUC(labels []int, probs []float64) float64 {
	type pair struct {
		p float64
		y int
	}
	pairs := make([]pair, len(labels))
	pos := 0.0
	neg := 0.0
	for i := range labels {
		pairs[i] = pair{p: common.Clamp01(probs[i]), y: labels[i]}
		if labels[i] == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0.5
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].p < pairs[j].p })

	sumRankPos := 0.0
	rank := 1.0
	for i := 0; i < len(pairs); {
		j := i + 1
		for j < len(pairs) && math.Abs(pairs[j].p-pairs[i].p) < 1e-12 {
			j++
		}
		avgRank := (rank + float64(j)) / 2
		for k := i; k < j; k++ {
			if pairs[k].y == 1 {
				sumRankPos += avgRank
			}
		}
		rank = float64(j + 1)
		i = j
	}
	auc := (sumRankPos - (pos*(pos+1))/2) / (pos * neg)
	if math.IsNaN(auc) || math.IsInf(auc, 0) {
		return 0.5
	}
	return auc
}
