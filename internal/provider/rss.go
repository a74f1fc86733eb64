package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"credtech/internal/domain"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultNewsFeedURL is the Yahoo Finance headline feed; %s is the ticker.
const DefaultNewsFeedURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// NewsResult is the outcome of a headline fetch. A failed fetch carries zero
// headlines and the reason in Err; callers continue with the empty table.
type NewsResult struct {
	Headlines []domain.Headline
	Err       error
}

func (r NewsResult) OK() bool {
	return r.Err == nil
}

type RSSProvider struct {
	client      *http.Client
	tracer      trace.Tracer
	feedURLTmpl string
	limiter     *RateLimiter
}

func NewRSSProvider(tracer trace.Tracer, feedURLTmpl string, timeout time.Duration) *RSSProvider {
	if strings.TrimSpace(feedURLTmpl) == "" {
		feedURLTmpl = DefaultNewsFeedURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &RSSProvider{
		client:      &http.Client{Timeout: timeout},
		tracer:      tracer,
		feedURLTmpl: feedURLTmpl,
	}
}

// FetchHeadlines reads channel/item entries as {pubDate, title} pairs. It never
// returns an error directly: transport failures, non-200 responses and
// malformed feeds all degrade to an empty result with a logged warning.
func (p *RSSProvider) FetchHeadlines(ctx context.Context, ticker string) NewsResult {
	ctx, span := p.tracer.Start(ctx, "rss.fetch-headlines")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	span.SetAttributes(attribute.String("ticker", ticker))

	headlines, err := p.fetch(ctx, ticker)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn().Err(err).Str("ticker", ticker).Msg("failed to fetch news RSS feed")
		return NewsResult{Headlines: []domain.Headline{}, Err: err}
	}
	return NewsResult{Headlines: headlines}
}

// WithRateLimiter shares limiter with other providers calling the same upstream.
func (p *RSSProvider) WithRateLimiter(limiter *RateLimiter) *RSSProvider {
	p.limiter = limiter
	return p
}

func (p *RSSProvider) fetch(ctx context.Context, ticker string) ([]domain.Headline, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	feedURL := fmt.Sprintf(p.feedURLTmpl, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rss fetch error %d: %s", resp.StatusCode, sanitizeText(string(body), 200))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss struct {
		Channel struct {
			Items []struct {
				Title   string `xml:"title"`
				PubDate string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("decode rss payload: %w", err)
	}

	headlines := make([]domain.Headline, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		headlines = append(headlines, domain.Headline{
			Date:     strings.TrimSpace(item.PubDate),
			Headline: sanitizeText(item.Title, 0),
		})
	}
	return headlines, nil
}

func sanitizeText(in string, maxLen int) string {
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		in = in[:maxLen]
	}
	return in
}
