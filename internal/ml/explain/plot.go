package explain

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"credtech/internal/domain"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var barColor = color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}

// RenderBarChart draws the ranking as a horizontal bar chart, most important
// feature on top, and writes it to path. An existing file is overwritten.
func RenderBarChart(ranking []domain.FeatureImportance, path string) error {
	if len(ranking) == 0 {
		return errors.New("no feature importances to plot")
	}

	p := plot.New()
	p.Title.Text = "Feature importance"
	p.X.Label.Text = "mean(|SHAP value|) (average impact on high-risk probability)"
	p.X.Min = 0

	n := len(ranking)
	values := make(plotter.Values, n)
	names := make([]string, n)
	for i, fi := range ranking {
		values[n-1-i] = fi.MeanAbs
		names[n-1-i] = fi.Feature
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
