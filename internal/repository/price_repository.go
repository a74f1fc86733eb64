package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"credtech/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	PriceFile = "stock_data.csv"
	NewsFile  = "news_data.csv"
)

// ErrNotFound is returned when an input table has not been written yet.
var ErrNotFound = errors.New("data file not found")

var priceHeader = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// PriceRepository reads and writes the price table. Cells are kept as raw
// strings; parsing belongs to the feature pipeline.
type PriceRepository struct {
	path   string
	tracer trace.Tracer
}

func NewPriceRepository(dataDir string, tracer trace.Tracer) *PriceRepository {
	return &PriceRepository{path: filepath.Join(dataDir, PriceFile), tracer: tracer}
}

func (r *PriceRepository) Path() string {
	return r.path
}

// Save overwrites the table. The header is written even when bars is empty.
func (r *PriceRepository) Save(ctx context.Context, bars []domain.RawPriceBar) error {
	_, span := r.tracer.Start(ctx, "price-repo.save")
	defer span.End()
	span.SetAttributes(attribute.Int("rows", len(bars)))

	records := make([][]string, 0, len(bars)+1)
	records = append(records, priceHeader)
	for _, b := range bars {
		records = append(records, []string{b.Date, b.Open, b.High, b.Low, b.Close, b.Volume})
	}
	return writeCSV(r.path, records)
}

// LoadRaw returns every data row in file order. Columns are matched by header
// name, case-insensitively; the first column is the date whatever its name.
func (r *PriceRepository) LoadRaw(ctx context.Context) ([]domain.RawPriceBar, error) {
	_, span := r.tracer.Start(ctx, "price-repo.load-raw")
	defer span.End()

	records, err := readCSV(r.path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []domain.RawPriceBar{}, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	bars := make([]domain.RawPriceBar, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		bars = append(bars, domain.RawPriceBar{
			Date:   rec[0],
			Open:   get(rec, "open"),
			High:   get(rec, "high"),
			Low:    get(rec, "low"),
			Close:  get(rec, "close"),
			Volume: get(rec, "volume"),
		})
	}
	span.SetAttributes(attribute.Int("rows", len(bars)))
	return bars, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
