package service

import (
	"context"
	"fmt"
	"strings"

	"credtech/internal/domain"
	"credtech/internal/provider"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const sampleRows = 5

type PriceProvider interface {
	FetchBars(ctx context.Context, ticker, period, interval string) ([]domain.RawPriceBar, error)
}

type NewsProvider interface {
	FetchHeadlines(ctx context.Context, ticker string) provider.NewsResult
}

type PriceWriter interface {
	Save(ctx context.Context, bars []domain.RawPriceBar) error
	Path() string
}

type NewsWriter interface {
	Save(ctx context.Context, headlines []domain.Headline) error
	Path() string
}

// IngestResult summarises one ingest run. Source failures are reported
// here rather than returned; only write failures abort the run.
type IngestResult struct {
	Ticker    string
	Bars      int
	Headlines int
	PricePath string
	NewsPath  string
	PriceErr  error
	NewsErr   error
}

type IngestService struct {
	tracer   trace.Tracer
	prices   PriceProvider
	news     NewsProvider
	priceOut PriceWriter
	newsOut  NewsWriter
	period   string
	interval string
}

func NewIngestService(
	tracer trace.Tracer,
	prices PriceProvider,
	news NewsProvider,
	priceOut PriceWriter,
	newsOut NewsWriter,
	period, interval string,
) *IngestService {
	if period == "" {
		period = "6mo"
	}
	if interval == "" {
		interval = "1d"
	}
	return &IngestService{
		tracer:   tracer,
		prices:   prices,
		news:     news,
		priceOut: priceOut,
		newsOut:  newsOut,
		period:   period,
		interval: interval,
	}
}

// Run fetches bars and headlines for ticker and overwrites both tables.
// A failed source leaves a header-only table behind.
func (s *IngestService) Run(ctx context.Context, ticker string) (IngestResult, error) {
	ctx, span := s.tracer.Start(ctx, "ingest-service.run")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	span.SetAttributes(attribute.String("ticker", ticker))
	res := IngestResult{Ticker: ticker, PricePath: s.priceOut.Path(), NewsPath: s.newsOut.Path()}

	bars, err := s.prices.FetchBars(ctx, ticker, s.period, s.interval)
	if err != nil {
		res.PriceErr = err
		bars = nil
		span.RecordError(err)
		log.Warn().Err(err).Str("ticker", ticker).Msg("price fetch failed, writing empty table")
	}
	if err := s.priceOut.Save(ctx, bars); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return res, fmt.Errorf("save price data: %w", err)
	}
	res.Bars = len(bars)
	log.Info().Str("path", res.PricePath).Int("rows", res.Bars).Msg("saved price data")
	for _, b := range bars[:min(sampleRows, len(bars))] {
		log.Debug().Str("date", b.Date).Str("open", b.Open).Str("high", b.High).
			Str("low", b.Low).Str("close", b.Close).Str("volume", b.Volume).Msg("price sample")
	}

	news := s.news.FetchHeadlines(ctx, ticker)
	res.NewsErr = news.Err
	if err := s.newsOut.Save(ctx, news.Headlines); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return res, fmt.Errorf("save news data: %w", err)
	}
	res.Headlines = len(news.Headlines)
	log.Info().Str("path", res.NewsPath).Int("rows", res.Headlines).Msg("saved news data")
	for _, h := range news.Headlines[:min(sampleRows, len(news.Headlines))] {
		log.Debug().Str("date", h.Date).Str("headline", h.Headline).Msg("news sample")
	}

	span.SetAttributes(attribute.Int("bars", res.Bars), attribute.Int("headlines", res.Headlines))
	return res, nil
}
