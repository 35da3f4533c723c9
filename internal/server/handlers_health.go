package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	for _, check := range s.readiness {
		if !check.healthy.Load() {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":       "unhealthy",
				"failed_check": check.name,
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
