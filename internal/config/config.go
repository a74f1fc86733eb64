package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DataDir string

	Ticker          string
	PricePeriod     string
	PriceInterval   string
	NewsFeedURL     string
	HTTPTimeoutSecs int

	RiskThreshold     float64
	SMOTENeighbors    int
	BalanceSeed       uint64
	SplitSeed         uint64
	ModelSeed         uint64
	TestFraction      float64
	RFTrees           int
	RFMaxDepth        int
	ChallengerEnabled bool

	DashboardAddr   string
	DashboardAPIKey string

	LogLevel       string
	LogFormat      string
	TracingEnabled bool
	OTLPEndpoint   string
}

func Load() *Config {
	cfg := &Config{
		DashboardAPIKey: strings.TrimSpace(os.Getenv("DASHBOARD_API_KEY")),
		OTLPEndpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	cfg.DataDir = stringEnv("DATA_DIR", "data")
	cfg.Ticker = strings.ToUpper(stringEnv("TICKER", "AAPL"))
	cfg.PricePeriod = stringEnv("PRICE_PERIOD", "6mo")
	cfg.PriceInterval = stringEnv("PRICE_INTERVAL", "1d")

	cfg.NewsFeedURL = stringEnv("NEWS_FEED_URL", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")
	if strings.Count(cfg.NewsFeedURL, "%s") != 1 {
		log.Warn().Str("value", cfg.NewsFeedURL).Msg("NEWS_FEED_URL must contain exactly one %s, using default")
		cfg.NewsFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"
	}

	cfg.HTTPTimeoutSecs = intEnv("HTTP_TIMEOUT_SECS", 20)

	cfg.RiskThreshold = -0.02
	if v := strings.TrimSpace(os.Getenv("RISK_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > -1 && n < 1 {
			cfg.RiskThreshold = n
		} else {
			log.Warn().Str("value", v).Msg("invalid RISK_THRESHOLD, defaulting to -0.02")
		}
	}

	cfg.SMOTENeighbors = intEnv("SMOTE_NEIGHBORS", 5)

	cfg.BalanceSeed = seedEnv("BALANCE_SEED")
	cfg.SplitSeed = seedEnv("SPLIT_SEED")
	cfg.ModelSeed = seedEnv("MODEL_SEED")

	cfg.TestFraction = 0.2
	if v := strings.TrimSpace(os.Getenv("TEST_FRACTION")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n < 1 {
			cfg.TestFraction = n
		} else {
			log.Warn().Str("value", v).Msg("invalid TEST_FRACTION, defaulting to 0.2")
		}
	}

	cfg.RFTrees = intEnv("RF_TREES", 200)
	cfg.RFMaxDepth = intEnv("RF_MAX_DEPTH", 6)

	cfg.ChallengerEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("CHALLENGER_ENABLED")), "false")

	cfg.DashboardAddr = stringEnv("DASHBOARD_ADDR", ":8501")
	if cfg.DashboardAPIKey == "" {
		log.Debug().Msg("DASHBOARD_API_KEY not set, /api is unauthenticated")
	}

	cfg.LogLevel = strings.ToLower(stringEnv("LOG_LEVEL", "info"))
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		log.Warn().Str("value", cfg.LogLevel).Msg("invalid LOG_LEVEL, defaulting to info")
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(stringEnv("LOG_FORMAT", "console"))
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		log.Warn().Str("value", cfg.LogFormat).Msg("invalid LOG_FORMAT, defaulting to console")
		cfg.LogFormat = "console"
	}
	cfg.TracingEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "true")

	return cfg
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// intEnv reads a positive integer, warning and falling back on anything else.
func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", fallback).Msg("invalid positive integer, using default")
		return fallback
	}
	return n
}

func seedEnv(key string) uint64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Msg("invalid seed, defaulting to 42")
	}
	return 42
}
