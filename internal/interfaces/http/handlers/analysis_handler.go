package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// AnalysisHandler serves the entity analysis endpoints.
type AnalysisHandler struct {
	svc    analysis.Service
	logger logging.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(svc analysis.Service, logger logging.Logger) *AnalysisHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalysisHandler{svc: svc, logger: logger.Named("analysis_handler")}
}

// Analyze handles GET /api/v1/companies/:id/analysis.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	entityID := c.Param("id")
	if entityID == "" {
		respondError(c, errors.InvalidParam("company id is required"))
		return
	}

	result, err := h.svc.AnalyzeEntity(c.Request.Context(), entityID)
	if err != nil {
		if !errors.IsNotFound(err) {
			h.logger.Error("analysis request failed",
				logging.String("entity", entityID),
				logging.Err(err))
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
