package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/sentiboard/internal/export"
	"github.com/spacesedan/sentiboard/internal/models"
)

func (s *Server) handleExportCSV(c echo.Context) error {
	records := s.dashboard.History()
	if len(records) == 0 {
		return emptyHistory(c)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, export.ContentType)
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName))
	res.WriteHeader(http.StatusOK)
	return export.WriteCSV(res, records)
}

func (s *Server) handleImportCSV(c echo.Context) error {
	records, err := export.ReadCSV(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	return s.importRecords(c, records)
}

func (s *Server) handleExportDynamo(c echo.Context) error {
	records := s.dashboard.History()
	if len(records) == 0 {
		return emptyHistory(c)
	}

	exportID, err := s.exporter.Export(c.Request().Context(), records)
	if err != nil {
		slog.Error("[Server] DynamoDB export failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusBadGateway, "export failed")
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"export_id": exportID,
		"count":     len(records),
	})
}

func (s *Server) handleImportDynamo(c echo.Context) error {
	records, err := s.exporter.Load(c.Request().Context(), c.Param("id"))
	if err != nil {
		slog.Error("[Server] DynamoDB load failed",
			slog.String("export_id", c.Param("id")),
			slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusBadGateway, "load failed")
	}
	if len(records) == 0 {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "export not found"})
	}
	return s.importRecords(c, records)
}

func (s *Server) importRecords(c echo.Context, records []models.AnalysisRecord) error {
	imported, err := s.dashboard.Import(records)
	if errors.Is(err, models.ErrInvalidScore) || errors.Is(err, models.ErrEmptyText) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":    err.Error(),
			"imported": imported,
		})
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"imported": imported})
}
