// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spacesedan/sentiboard/config"
	"github.com/spacesedan/sentiboard/internal/dashboard"
	"github.com/spacesedan/sentiboard/internal/models"
)

const maxImportBytes = "10M"

// Dashboard is the part of dashboard.Service the handlers use.
type Dashboard interface {
	Analyze(text string) (dashboard.Analysis, error)
	Latest() (dashboard.Analysis, error)
	Overview() (dashboard.Overview, error)
	Trends() (dashboard.Trends, error)
	Insights() (dashboard.Insights, error)
	History() []models.AnalysisRecord
	Import(records []models.AnalysisRecord) (int, error)
}

// HistoryExporter copies the history to and from durable storage.
type HistoryExporter interface {
	Export(ctx context.Context, records []models.AnalysisRecord) (string, error)
	Load(ctx context.Context, exportID string) ([]models.AnalysisRecord, error)
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	dashboard Dashboard
	exporter  HistoryExporter
	readiness []readinessCheck
	startTime time.Time
}

type readinessCheck struct {
	name    string
	healthy *atomic.Bool
}

type Option func(*Server)

// WithExporter enables the DynamoDB export and restore endpoints.
func WithExporter(exporter HistoryExporter) Option {
	return func(s *Server) { s.exporter = exporter }
}

// WithReadinessCheck makes /health/ready fail while healthy is false.
func WithReadinessCheck(name string, healthy *atomic.Bool) Option {
	return func(s *Server) {
		s.readiness = append(s.readiness, readinessCheck{name: name, healthy: healthy})
	}
}

func NewServer(cfg *config.Config, dash Dashboard, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				slog.Warn("[Server] Request failed", append(attrs, slog.String("error", v.Error.Error()))...)
				return nil
			}
			slog.Debug("[Server] Request", attrs...)
			return nil
		},
	}))

	srv := &Server{
		echo:      e,
		config:    cfg,
		dashboard: dash,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("[Server] Starting server", slog.String("port", s.config.Port))
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
