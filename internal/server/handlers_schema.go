package server

import (
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/labstack/echo/v4"
	"github.com/spacesedan/sentiboard/internal/models"
)

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
)

// messageSchemas describes the Kafka payloads so producers and result
// consumers can validate against them.
func messageSchemas() map[string]*jsonschema.Schema {
	schemasOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
		}
		schemas = map[string]*jsonschema.Schema{
			"analysis-request": reflector.Reflect(&models.AnalysisRequest{}),
			"analysis-result":  reflector.Reflect(&models.AnalysisResult{}),
		}
	})
	return schemas
}

func (s *Server) handleSchema(c echo.Context) error {
	schema, ok := messageSchemas()[c.Param("name")]
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown schema"})
	}
	return c.JSON(http.StatusOK, schema)
}
