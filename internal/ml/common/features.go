package common

import (
	"math"

	"credtech/internal/domain"
)

// FeatureNames is the fixed column order of every model input vector.
var FeatureNames = []string{"volatility", "ma_5", "ma_10", "ma_20", "volume_change"}

func FeatureVector(row domain.FeatureRow) []float64 {
	return []float64{row.Volatility, row.MA5, row.MA10, row.MA20, row.VolumeChange}
}

// Dataset builds the model matrix and the label vector from labeled rows.
func Dataset(rows []domain.FeatureRow) ([][]float64, []int) {
	x := make([][]float64, len(rows))
	y := make([]int, len(rows))
	for i := range rows {
		x[i] = FeatureVector(rows[i])
		y[i] = int(rows[i].Risk)
	}
	return x, y
}

func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0.5
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
