package repository

import (
	"context"
	"path/filepath"

	"credtech/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var newsHeader = []string{"date", "headline"}

type NewsRepository struct {
	path   string
	tracer trace.Tracer
}

func NewNewsRepository(dataDir string, tracer trace.Tracer) *NewsRepository {
	return &NewsRepository{path: filepath.Join(dataDir, NewsFile), tracer: tracer}
}

func (r *NewsRepository) Path() string {
	return r.path
}

// Save overwrites the headline table; an empty fetch still leaves a header.
func (r *NewsRepository) Save(ctx context.Context, headlines []domain.Headline) error {
	_, span := r.tracer.Start(ctx, "news-repo.save")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(headlines)))

	records := make([][]string, 0, len(headlines)+1)
	records = append(records, newsHeader)
	for _, h := range headlines {
		records = append(records, []string{h.Date, h.Headline})
	}
	return writeCSV(r.path, records)
}

func (r *NewsRepository) Load(ctx context.Context) ([]domain.Headline, error) {
	_, span := r.tracer.Start(ctx, "news-repo.load")
	defer span.End()

	records, err := readCSV(r.path)
	if err != nil {
		return nil, err
	}
	headlines := make([]domain.Headline, 0, max(len(records)-1, 0))
	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			continue
		}
		headlines = append(headlines, domain.Headline{Date: rec[0], Headline: rec[1]})
	}
	return headlines, nil
}
