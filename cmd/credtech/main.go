package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"credtech/internal/config"
	"credtech/internal/provider"
	"credtech/internal/service"
	"credtech/pkg/logger"
	"credtech/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	_ "credtech/docs"
)

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	setupLoggerFunc      = logger.Setup
	initTracerFunc       = tracing.InitTracer
	newPriceProviderFunc = func(tracer trace.Tracer, timeout time.Duration, limiter *provider.RateLimiter) service.PriceProvider {
		return provider.NewYahooChartProvider(tracer, timeout).WithRateLimiter(limiter)
	}
	newNewsProviderFunc = func(tracer trace.Tracer, feedURL string, timeout time.Duration, limiter *provider.RateLimiter) service.NewsProvider {
		return provider.NewRSSProvider(tracer, feedURL, timeout).WithRateLimiter(limiter)
	}
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	shutdownTracerFunc     = func(tp *sdktrace.TracerProvider, ctx context.Context) error { return tp.Shutdown(ctx) }
	exitFunc               = os.Exit

	stdout io.Writer = os.Stdout
)

// app carries what every subcommand shares once the root pre-run has finished.
type app struct {
	cfg    *config.Config
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer

	dataDir string
	ticker  string
}

// @title           credtech dashboard API
// @version         1.0
// @description     Latest ingested price rows and model artifacts for the credit-risk demo.

// @host      localhost:8501
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	// cobra skips post-run hooks when RunE fails, so flush spans here.
	a.shutdown()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		exitFunc(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "credtech",
		Short:         "Credit-risk scoring demo: ingest prices, train and explain a model, serve a dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bootstrap(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding the CSV tables and the chart (overrides DATA_DIR)")
	root.PersistentFlags().StringVar(&a.ticker, "ticker", "", "ticker symbol (overrides TICKER)")

	root.AddCommand(newIngestCmd(a), newTrainCmd(a), newServeCmd(a))
	return root
}

func (a *app) bootstrap(ctx context.Context) error {
	_ = loadEnvFunc()

	a.cfg = loadConfigFunc()
	if a.dataDir != "" {
		a.cfg.DataDir = a.dataDir
	}
	if a.ticker != "" {
		a.cfg.Ticker = a.ticker
	}

	if err := setupLoggerFunc(a.cfg.LogLevel, a.cfg.LogFormat, os.Stderr); err != nil {
		return err
	}

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		Enabled:  a.cfg.TracingEnabled,
		Endpoint: a.cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	a.tp, a.tracer = tp, tracer
	return nil
}

func (a *app) shutdown() {
	if a.tp == nil {
		return
	}
	tp := a.tp
	a.tp = nil

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracerFunc(tp, ctx); err != nil {
		log.Warn().Err(err).Msg("error shutting down tracer provider")
	}
}

func (a *app) httpTimeout() time.Duration {
	return time.Duration(a.cfg.HTTPTimeoutSecs) * time.Second
}
