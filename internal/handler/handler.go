package handler

import (
	"context"
	"html/template"

	"credtech/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

const defaultTail = 10

// PriceReader is the read side of the price table.
type PriceReader interface {
	LoadRaw(ctx context.Context) ([]domain.RawPriceBar, error)
}

type Handler struct {
	tracer    trace.Tracer
	prices    PriceReader
	imagePath string
	ticker    string
}

func New(tracer trace.Tracer, prices PriceReader, imagePath, ticker string) *Handler {
	return &Handler{
		tracer:    tracer,
		prices:    prices,
		imagePath: imagePath,
		ticker:    ticker,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.SetHTMLTemplate(template.Must(template.New("dashboard").Parse(dashboardTemplate)))

	r.GET("/", h.Dashboard)
	r.GET("/health", h.Health)
	r.GET("/artifacts/importance.png", h.ImportanceImage)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/stock", h.GetStock)
}
