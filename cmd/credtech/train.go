package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"credtech/internal/ml/models/forest"
	"credtech/internal/ml/training"
	"credtech/internal/repository"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const importanceFile = "shap_feature_importance.png"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#0077cc")).Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#333333")).Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#cc3300"))
)

func newTrainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Build features, balance, train the random forest and render SHAP importance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := training.NewService(
				a.tracer,
				repository.NewPriceRepository(a.cfg.DataDir, a.tracer),
				training.Config{
					ImportancePath: filepath.Join(a.cfg.DataDir, importanceFile),
					RiskThreshold:  a.cfg.RiskThreshold,
					SMOTENeighbors: a.cfg.SMOTENeighbors,
					BalanceSeed:    a.cfg.BalanceSeed,
					SplitSeed:      a.cfg.SplitSeed,
					TestFraction:   a.cfg.TestFraction,
					Forest: forest.TrainOptions{
						Trees:    a.cfg.RFTrees,
						MaxDepth: a.cfg.RFMaxDepth,
						Seed:     a.cfg.ModelSeed,
					},
					ChallengerEnabled: a.cfg.ChallengerEnabled,
				},
			)

			res, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, renderSummary(a.cfg.Ticker, res))
			return nil
		},
	}
}

func renderSummary(ticker string, res *training.Result) string {
	counts := fmt.Sprintf("clean bars %d   feature rows %d   high risk %d\nbalanced %d   train %d   test %d",
		res.CleanBars, res.FeatureRows, res.HighRiskRows, res.BalancedRows, res.TrainCount, res.TestCount)

	forestBlock := fmt.Sprintf("Random forest  accuracy %.3f  AUC %.3f\n\n%s",
		res.Forest.Accuracy, res.Forest.AUC, strings.TrimRight(res.Forest.String(), "\n"))

	var challengers []string
	for _, c := range res.Challengers {
		if c.Report == nil {
			challengers = append(challengers, warnStyle.Render(fmt.Sprintf("%-8s failed: %s", c.Name, c.Error)))
			continue
		}
		challengers = append(challengers, fmt.Sprintf("%-8s accuracy %.3f  AUC %.3f", c.Name, c.Report.Accuracy, c.Report.AUC))
	}

	var ranking strings.Builder
	ranking.WriteString("Mean |SHAP| (high risk)\n")
	for i, fi := range res.Importance {
		fmt.Fprintf(&ranking, "%d. %-14s %.6f\n", i+1, fi.Feature, fi.MeanAbs)
	}
	ranking.WriteString(mutedStyle.Render("chart: " + res.ArtifactPath))

	blocks := []string{
		titleStyle.Render(ticker + " credit-risk model"),
		sectionStyle.Render(counts),
		sectionStyle.Render(forestBlock),
	}
	if len(challengers) > 0 {
		blocks = append(blocks, sectionStyle.Render("Challengers\n"+strings.Join(challengers, "\n")))
	}
	blocks = append(blocks, sectionStyle.Render(ranking.String()))
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
