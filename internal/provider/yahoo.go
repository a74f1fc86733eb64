package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"credtech/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const yahooChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooChartProvider fetches daily price bars from the Yahoo Finance chart API.
type YahooChartProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewYahooChartProvider(tracer trace.Tracer, timeout time.Duration) *YahooChartProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YahooChartProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: yahooChartBaseURL,
		tracer:  tracer,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchBars returns the ticker's bars for the period (e.g. "6mo") at the
// interval (e.g. "1d") in the order the source reports them. Missing quote
// values are kept as empty cells for the pipeline to discard.
func (p *YahooChartProvider) FetchBars(ctx context.Context, ticker, period, interval string) ([]domain.RawPriceBar, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.fetch-bars")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	span.SetAttributes(
		attribute.String("ticker", ticker),
		attribute.String("period", period),
		attribute.String("interval", interval),
	)

	q := url.Values{}
	q.Set("range", period)
	q.Set("interval", interval)
	endpoint := fmt.Sprintf("%s/%s?%s", p.baseURL, url.PathEscape(ticker), q.Encode())

	body, err := p.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", ticker, err)
	}

	var raw chartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse chart for %s: %w", ticker, err)
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s: %s", ticker, raw.Chart.Error.Code, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned no result for %s", ticker)
	}

	result := raw.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []domain.RawPriceBar{}, nil
	}
	quote := result.Indicators.Quote[0]
	loc := time.FixedZone("exchange", result.Meta.GMTOffset)

	bars := make([]domain.RawPriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bars = append(bars, domain.RawPriceBar{
			Date:   time.Unix(ts, 0).In(loc).Format(time.DateOnly),
			Open:   cell(quote.Open, i),
			High:   cell(quote.High, i),
			Low:    cell(quote.Low, i),
			Close:  cell(quote.Close, i),
			Volume: cell(quote.Volume, i),
		})
	}
	span.SetAttributes(attribute.Int("bars", len(bars)))
	return bars, nil
}

func (p *YahooChartProvider) WithRateLimiter(limiter *RateLimiter) *YahooChartProvider {
	p.limiter = limiter
	return p
}

func (p *YahooChartProvider) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; credtech/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo chart API error %d: %s", resp.StatusCode, sanitizeText(string(body), 200))
	}

	return io.ReadAll(resp.Body)
}

func cell(values []*float64, i int) string {
	if i >= len(values) || values[i] == nil {
		return ""
	}
	return strconv.FormatFloat(*values[i], 'f', -1, 64)
}
