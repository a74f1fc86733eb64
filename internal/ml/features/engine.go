package features

import (
	"math"
	"strconv"
	"strings"

	"credtech/internal/domain"
	"credtech/internal/ta"
)

const (
	volatilityWindow = 5
	maShort          = 5
	maMid            = 10
	maLong           = 20
)

// MinHistory is the number of clean bars needed before the first feature row exists.
const MinHistory = maLong

// CleanBars coerces the numeric columns and drops any bar with a missing or
// non-finite value. Order is preserved; bars are never re-sorted.
func CleanBars(raw []domain.RawPriceBar) []domain.PriceBar {
	out := make([]domain.PriceBar, 0, len(raw))
	for _, r := range raw {
		open, ok1 := parseNumber(r.Open)
		high, ok2 := parseNumber(r.High)
		low, ok3 := parseNumber(r.Low)
		closePx, ok4 := parseNumber(r.Close)
		volume, ok5 := parseNumber(r.Volume)
		if !(ok1 && ok2 && ok3 && ok4 && ok5) {
			continue
		}
		out = append(out, domain.PriceBar{
			Date:   strings.TrimSpace(r.Date),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePx,
			Volume: volume,
		})
	}
	return out
}

// BuildRows derives return, volatility, moving averages and volume change over the
// ordered bars and keeps only rows where every derived field is defined.
func BuildRows(bars []domain.PriceBar) []domain.FeatureRow {
	if len(bars) == 0 {
		return nil
	}
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
		volumes[i] = bars[i].Volume
	}

	returns := ta.PctChangeSeries(closes)
	volatility := ta.RollingStdSeries(returns, volatilityWindow)
	ma5 := ta.RollingMeanSeries(closes, maShort)
	ma10 := ta.RollingMeanSeries(closes, maMid)
	ma20 := ta.RollingMeanSeries(closes, maLong)
	volumeChange := ta.PctChangeSeries(volumes)

	rows := make([]domain.FeatureRow, 0, len(bars))
	for i := range bars {
		if anyMissing(returns[i], volatility[i], ma5[i], ma10[i], ma20[i], volumeChange[i]) {
			continue
		}
		rows = append(rows, domain.FeatureRow{
			Date:         bars[i].Date,
			Close:        closes[i],
			Return:       returns[i],
			Volatility:   volatility[i],
			MA5:          ma5[i],
			MA10:         ma10[i],
			MA20:         ma20[i],
			VolumeChange: volumeChange[i],
		})
	}
	return rows
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func anyMissing(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
