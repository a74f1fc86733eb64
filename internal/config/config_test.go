package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var allKeys = []string{
	"DATA_DIR", "TICKER", "PRICE_PERIOD", "PRICE_INTERVAL", "NEWS_FEED_URL", "HTTP_TIMEOUT_SECS",
	"RISK_THRESHOLD", "SMOTE_NEIGHBORS", "BALANCE_SEED", "SPLIT_SEED", "MODEL_SEED", "TEST_FRACTION",
	"RF_TREES", "RF_MAX_DEPTH", "CHALLENGER_ENABLED", "DASHBOARD_ADDR", "DASHBOARD_API_KEY",
	"LOG_LEVEL", "LOG_FORMAT", "TRACING_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func clearEnv(t *testing.T) {
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.DataDir != "data" || cfg.Ticker != "AAPL" || cfg.PricePeriod != "6mo" || cfg.PriceInterval != "1d" {
		t.Fatalf("unexpected source defaults: %+v", cfg)
	}
	if cfg.RiskThreshold != -0.02 || cfg.SMOTENeighbors != 5 || cfg.TestFraction != 0.2 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg)
	}
	if cfg.BalanceSeed != 42 || cfg.SplitSeed != 42 || cfg.ModelSeed != 42 {
		t.Fatalf("unexpected seeds: %+v", cfg)
	}
	if cfg.RFTrees != 200 || cfg.RFMaxDepth != 6 || !cfg.ChallengerEnabled {
		t.Fatalf("unexpected model defaults: %+v", cfg)
	}
	if cfg.DashboardAddr != ":8501" || cfg.HTTPTimeoutSecs != 20 || cfg.TracingEnabled {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "console" {
		t.Fatalf("unexpected logging defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", "/tmp/credtech")
	t.Setenv("TICKER", "msft")
	t.Setenv("RISK_THRESHOLD", "-0.03")
	t.Setenv("SPLIT_SEED", "7")
	t.Setenv("RF_TREES", "50")
	t.Setenv("CHALLENGER_ENABLED", "false")
	t.Setenv("DASHBOARD_API_KEY", "secret")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg := Load()
	if cfg.DataDir != "/tmp/credtech" || cfg.Ticker != "MSFT" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.RiskThreshold != -0.03 || cfg.SplitSeed != 7 || cfg.RFTrees != 50 {
		t.Fatalf("unexpected pipeline config: %+v", cfg)
	}
	if cfg.ChallengerEnabled || cfg.DashboardAPIKey != "secret" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected runtime config: %+v", cfg)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RISK_THRESHOLD", "steep")
	t.Setenv("TEST_FRACTION", "1.5")
	t.Setenv("MODEL_SEED", "-1")
	t.Setenv("RF_MAX_DEPTH", "0")
	t.Setenv("NEWS_FEED_URL", "https://example.com/rss")

	cfg := Load()
	if cfg.RiskThreshold != -0.02 || cfg.TestFraction != 0.2 || cfg.ModelSeed != 42 || cfg.RFMaxDepth != 6 {
		t.Fatalf("invalid values should fall back to defaults: %+v", cfg)
	}
	if cfg.NewsFeedURL != "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US" {
		t.Fatalf("feed url without placeholder should fall back, got %s", cfg.NewsFeedURL)
	}
}

func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	orig := log.Logger
	t.Cleanup(func() { log.Logger = orig })
	buf := &bytes.Buffer{}
	log.Logger = zerolog.New(buf).Level(zerolog.WarnLevel)
	return buf
}

func TestLoadWarnsOnEveryFallback(t *testing.T) {
	clearEnv(t)
	bad := map[string]string{
		"HTTP_TIMEOUT_SECS": "soon",
		"SMOTE_NEIGHBORS":   "-3",
		"TEST_FRACTION":     "1.5",
		"RF_TREES":          "many",
		"RF_MAX_DEPTH":      "0",
		"LOG_LEVEL":         "loud",
		"LOG_FORMAT":        "xml",
	}
	for k, v := range bad {
		t.Setenv(k, v)
	}
	out := captureWarnings(t)

	cfg := Load()
	if cfg.HTTPTimeoutSecs != 20 || cfg.SMOTENeighbors != 5 || cfg.TestFraction != 0.2 {
		t.Fatalf("unexpected fallbacks: %+v", cfg)
	}
	if cfg.RFTrees != 200 || cfg.RFMaxDepth != 6 {
		t.Fatalf("unexpected forest fallbacks: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "console" {
		t.Fatalf("bad log settings should fall back, got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	for k, v := range bad {
		if !strings.Contains(out.String(), k) {
			t.Fatalf("no warning for %s=%s in:\n%s", k, v, out.String())
		}
	}
}

func TestLoadValidValuesDoNotWarn(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT_SECS", "5")
	t.Setenv("LOG_LEVEL", "DEBUG")
	out := captureWarnings(t)

	cfg := Load()
	if cfg.HTTPTimeoutSecs != 5 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no warnings, got:\n%s", out.String())
	}
}
