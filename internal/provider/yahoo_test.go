package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"credtech/internal/domain"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/trace"
)

func TestYahooFetchBars(t *testing.T) {
	p := NewYahooChartProvider(trace.NewNoopTracerProvider().Tracer("test"), time.Second)
	var requested string
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		requested = req.URL.String()
		payload := `{"chart":{"result":[{"meta":{"symbol":"AAPL","gmtoffset":-14400},
			"timestamp":[1735828200,1735914600,1736173800],
			"indicators":{"quote":[{
				"open":[248.93,243.36,null],
				"high":[249.1,244.18,247.33],
				"low":[241.82,241.89,243.2],
				"close":[243.85,243.36,245],
				"volume":[55740700,40244100,45045600]}]}}],"error":null}}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(payload)),
			Header:     make(http.Header),
		}, nil
	})}

	bars, err := p.FetchBars(context.Background(), "aapl", "6mo", "1d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(requested, "https://query1.finance.yahoo.com/v8/finance/chart/AAPL?") ||
		!strings.Contains(requested, "range=6mo") || !strings.Contains(requested, "interval=1d") {
		t.Fatalf("unexpected request url %s", requested)
	}

	want := []domain.RawPriceBar{
		{Date: "2025-01-02", Open: "248.93", High: "249.1", Low: "241.82", Close: "243.85", Volume: "55740700"},
		{Date: "2025-01-03", Open: "243.36", High: "244.18", Low: "241.89", Close: "243.36", Volume: "40244100"},
		{Date: "2025-01-06", Open: "", High: "247.33", Low: "243.2", Close: "245", Volume: "45045600"},
	}
	if diff := cmp.Diff(want, bars); diff != "" {
		t.Fatalf("unexpected bars (-want +got):\n%s", diff)
	}
}

func TestYahooFetchBarsAPIError(t *testing.T) {
	p := NewYahooChartProvider(trace.NewNoopTracerProvider().Tracer("test"), time.Second)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		payload := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(payload)),
			Header:     make(http.Header),
		}, nil
	})}

	if _, err := p.FetchBars(context.Background(), "NOPE", "6mo", "1d"); err == nil || !strings.Contains(err.Error(), "Not Found") {
		t.Fatalf("expected chart API error, got %v", err)
	}
}

func TestYahooFetchBarsHTTPError(t *testing.T) {
	p := NewYahooChartProvider(trace.NewNoopTracerProvider().Tracer("test"), time.Second)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(bytes.NewBufferString(`{"finance":{"error":"Unauthorized"}}`)),
			Header:     make(http.Header),
		}, nil
	})}

	if _, err := p.FetchBars(context.Background(), "AAPL", "6mo", "1d"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status error, got %v", err)
	}
}
