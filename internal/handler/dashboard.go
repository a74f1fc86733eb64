package handler

import (
	"errors"
	"net/http"
	"os"

	"credtech/internal/domain"
	"credtech/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>CredTech Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin-bottom: 2rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.8rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.notice { color: #8a6d3b; }
</style>
</head>
<body>
<h1>CredTech Dashboard</h1>
<h2>{{.Ticker}} stock data</h2>
{{if .PriceNotice}}<p class="notice">{{.PriceNotice}}</p>{{else}}
<table>
<tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th></tr>
{{range .Bars}}<tr><td>{{.Date}}</td><td>{{.Open}}</td><td>{{.High}}</td><td>{{.Low}}</td><td>{{.Close}}</td><td>{{.Volume}}</td></tr>
{{end}}</table>{{end}}
<h2>Feature importance (SHAP)</h2>
{{if .HasImage}}<img src="/artifacts/importance.png" alt="SHAP feature importance">{{else}}<p class="notice">Run <code>credtech train</code> to render the chart.</p>{{end}}
</body>
</html>
`

type dashboardView struct {
	Ticker      string
	Bars        []domain.RawPriceBar
	PriceNotice string
	HasImage    bool
}

// Dashboard renders the last rows of the price table next to the importance
// chart. Missing artifacts are shown as notices so the page stays up.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.dashboard")
	defer span.End()

	view := dashboardView{Ticker: h.ticker}

	bars, _, err := h.tail(ctx, defaultTail)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		view.PriceNotice = "No price data yet. Run credtech ingest first."
	case err != nil:
		log.Error().Err(err).Msg("dashboard failed to load price data")
		view.PriceNotice = "Price data could not be read."
	default:
		view.Bars = bars
	}

	if _, err := os.Stat(h.imagePath); err == nil {
		view.HasImage = true
	}

	c.HTML(http.StatusOK, "dashboard", view)
}
