package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/sentiboard/internal/models"
)

type analyzeRequest struct {
	Text string `json:"text" form:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type emptyResponse struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message"`
}

func emptyHistory(c echo.Context) error {
	return c.JSON(http.StatusOK, emptyResponse{
		Empty:   true,
		Message: "No analysis has been performed yet.",
	})
}

// respondView writes a read-side view, turning an empty history into a
// successful "empty" payload.
func respondView[T any](c echo.Context, view T, err error) error {
	if errors.Is(err, models.ErrEmptyHistory) {
		return emptyHistory(c)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	analysis, err := s.dashboard.Analyze(req.Text)
	if errors.Is(err, models.ErrEmptyText) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Please enter some text to analyze."})
	}
	if err != nil {
		slog.Error("[Server] Analysis failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "analysis failed")
	}
	return c.JSON(http.StatusCreated, analysis)
}

func (s *Server) handleLatest(c echo.Context) error {
	latest, err := s.dashboard.Latest()
	return respondView(c, latest, err)
}

func (s *Server) handleOverview(c echo.Context) error {
	overview, err := s.dashboard.Overview()
	return respondView(c, overview, err)
}

func (s *Server) handleTrends(c echo.Context) error {
	trends, err := s.dashboard.Trends()
	return respondView(c, trends, err)
}

func (s *Server) handleInsights(c echo.Context) error {
	insights, err := s.dashboard.Insights()
	return respondView(c, insights, err)
}

func (s *Server) handleHistory(c echo.Context) error {
	records := s.dashboard.History()
	if len(records) == 0 {
		return emptyHistory(c)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"count":   len(records),
		"records": records,
	})
}
