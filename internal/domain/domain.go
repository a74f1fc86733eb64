package domain

// RiskLevel is the binary credit-risk label derived from daily return.
type RiskLevel int

const (
	RiskLow  RiskLevel = 0
	RiskHigh RiskLevel = 1
)

func (r RiskLevel) String() string {
	if r == RiskHigh {
		return "high"
	}
	return "low"
}

// FeatureRow holds the technical indicators derived for one price bar.
type FeatureRow struct {
	Date         string    `json:"date"`
	Close        float64   `json:"close"`
	Return       float64   `json:"return"`
	Volatility   float64   `json:"volatility"`
	MA5          float64   `json:"ma_5"`
	MA10         float64   `json:"ma_10"`
	MA20         float64   `json:"ma_20"`
	VolumeChange float64   `json:"volume_change"`
	Risk         RiskLevel `json:"risk"`
}

// FeatureImportance is the global attribution score of one model input.
type FeatureImportance struct {
	Feature string  `json:"feature"`
	MeanAbs float64 `json:"mean_abs_shap"`
}
