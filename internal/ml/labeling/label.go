// Package labeling assigns the placeholder credit-risk label: a session is high
// risk when its close fell by more than the threshold versus the prior session.
package labeling

import "credtech/internal/domain"

// DefaultThreshold is the daily return below which a session is labeled high risk.
const DefaultThreshold = -0.02

// Label returns RiskHigh iff ret < threshold. The comparison is strict.
func Label(ret, threshold float64) domain.RiskLevel {
	if ret < threshold {
		return domain.RiskHigh
	}
	return domain.RiskLow
}

// Apply labels every row in place and returns the labels as ints in row order.
func Apply(rows []domain.FeatureRow, threshold float64) []int {
	labels := make([]int, len(rows))
	for i := range rows {
		rows[i].Risk = Label(rows[i].Return, threshold)
		labels[i] = int(rows[i].Risk)
	}
	return labels
}
