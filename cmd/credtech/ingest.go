package main

import (
	"fmt"
	"time"

	"credtech/internal/provider"
	"credtech/internal/repository"
	"credtech/internal/service"

	"github.com/spf13/cobra"
)

func newIngestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Fetch daily bars and news headlines and write stock_data.csv and news_data.csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Both feeds are served by Yahoo, so they draw from one bucket.
			limiter := provider.NewRateLimiter(2, time.Second)

			svc := service.NewIngestService(
				a.tracer,
				newPriceProviderFunc(a.tracer, a.httpTimeout(), limiter),
				newNewsProviderFunc(a.tracer, a.cfg.NewsFeedURL, a.httpTimeout(), limiter),
				repository.NewPriceRepository(a.cfg.DataDir, a.tracer),
				repository.NewNewsRepository(a.cfg.DataDir, a.tracer),
				a.cfg.PricePeriod,
				a.cfg.PriceInterval,
			)

			res, err := svc.Run(cmd.Context(), a.cfg.Ticker)
			if err != nil {
				return err
			}

			fmt.Fprintf(stdout, "%s: %d price rows -> %s\n", res.Ticker, res.Bars, res.PricePath)
			if res.PriceErr != nil {
				fmt.Fprintf(stdout, "  price fetch failed: %v\n", res.PriceErr)
			}
			fmt.Fprintf(stdout, "%s: %d headlines -> %s\n", res.Ticker, res.Headlines, res.NewsPath)
			if res.NewsErr != nil {
				fmt.Fprintf(stdout, "  news fetch failed: %v\n", res.NewsErr)
			}
			return nil
		},
	}
}
