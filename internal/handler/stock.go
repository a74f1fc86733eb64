package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"credtech/internal/domain"
	"credtech/internal/repository"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxTail = 500

// GetStock godoc
// @Summary      Most recent price bars
// @Description  Returns the last N rows of the ingested price table in file order
// @Tags         stock
// @Produce      json
// @Param        limit  query  int  false  "Number of rows (default 10, max 500)"  default(10)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/stock [get]
func (h *Handler) GetStock(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-stock")
	defer span.End()

	limit := defaultTail
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxTail {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}
	span.SetAttributes(attribute.Int("limit", limit))

	bars, total, err := h.tail(ctx, limit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "price data not ingested yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ticker": h.ticker,
		"total":  total,
		"count":  len(bars),
		"bars":   bars,
	})
}

// ImportanceImage serves the latest rendered SHAP chart.
func (h *Handler) ImportanceImage(c *gin.Context) {
	if _, err := os.Stat(h.imagePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "feature importance chart not rendered yet"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.File(h.imagePath)
}

func (h *Handler) tail(ctx context.Context, n int) ([]domain.RawPriceBar, int, error) {
	bars, err := h.prices.LoadRaw(ctx)
	if err != nil {
		return nil, 0, err
	}
	start := max(len(bars)-n, 0)
	return bars[start:], len(bars), nil
}
