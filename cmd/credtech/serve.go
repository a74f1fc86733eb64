package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"credtech/internal/handler"
	"credtech/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard with the latest price rows and the importance chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.DashboardAddr
			}

			h := handler.New(
				a.tracer,
				repository.NewPriceRepository(a.cfg.DataDir, a.tracer),
				filepath.Join(a.cfg.DataDir, importanceFile),
				a.cfg.Ticker,
			)
			r := newRouterFunc()
			r.Use(gin.Recovery(), otelgin.Middleware("credtech"))
			h.RegisterRoutes(r, a.cfg.DashboardAPIKey)
			r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

			srv := &http.Server{
				Addr:              addr,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Str("data_dir", a.cfg.DataDir).Msg("dashboard listening")
				if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			quit := make(chan os.Signal, 1)
			setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
			stopped := make(chan struct{})
			go func() {
				waitForSignalFunc(quit)
				close(stopped)
			}()

			select {
			case err, failed := <-errCh:
				if failed {
					return fmt.Errorf("dashboard server: %w", err)
				}
				return nil
			case <-stopped:
			}
			log.Info().Msg("shutting down dashboard")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
				return fmt.Errorf("shutdown dashboard: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides DASHBOARD_ADDR)")
	return cmd
}
