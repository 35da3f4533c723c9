package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")

	var analyzeMiddleware []echo.MiddlewareFunc
	if s.config.AnalyzeRateLimit > 0 {
		analyzeMiddleware = append(analyzeMiddleware, newRateLimiter(s.config.AnalyzeRateLimit, s.config.AnalyzeRateBurst))
	}
	api.POST("/analyze", s.handleAnalyze, analyzeMiddleware...)
	api.GET("/latest", s.handleLatest)
	api.GET("/overview", s.handleOverview)
	api.GET("/trends", s.handleTrends)
	api.GET("/insights", s.handleInsights)
	api.GET("/history", s.handleHistory)
	api.GET("/schema/:name", s.handleSchema)

	api.GET("/export.csv", s.handleExportCSV)
	api.POST("/import", s.handleImportCSV, middleware.BodyLimit(maxImportBytes))

	if s.exporter != nil {
		api.POST("/export/dynamodb", s.handleExportDynamo)
		api.POST("/import/dynamodb/:id", s.handleImportDynamo)
	}
}
