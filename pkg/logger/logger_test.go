package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	if err := Setup("debug", "json", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Debug().Str("ticker", "AAPL").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "hello" || entry["ticker"] != "AAPL" || entry["service"] != "credtech" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestSetupLevelFilters(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	if err := Setup("WARN", "json", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestSetupRejectsBadInput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := Setup("loud", "json", &bytes.Buffer{}); err == nil {
		t.Fatal("expected level error")
	}
	if err := Setup("info", "xml", &bytes.Buffer{}); err == nil {
		t.Fatal("expected format error")
	}
}
