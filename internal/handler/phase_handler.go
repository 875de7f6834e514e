package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

type PhaseHandler struct {
	phaseService service.PhaseService
	logger       *zap.Logger
}

func NewPhaseHandler(phaseService service.PhaseService, logger *zap.Logger) *PhaseHandler {
	return &PhaseHandler{phaseService: phaseService, logger: logger}
}

func (h *PhaseHandler) CreatePhase(c *gin.Context) {
	siteID, ok := parseIDParam(c, "siteId", "site")
	if !ok {
		return
	}

	var req dto.CreatePhaseRequest
	if !bindJSON(c, &req) {
		return
	}

	phase, err := h.phaseService.CreatePhase(c.Request.Context(), siteID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, phase)
}

// ListPhases godoc
// @Summary      List a site's phases
// @Description  progressMode=derived|explicit picks which progress drives statusBadge (default explicit)
// @Tags         phases
// @Produce      json
// @Param        siteId path string true "Site ID (UUID)"
// @Param        progressMode query string false "derived or explicit"
// @Success      200 {object} response.SuccessResponse{data=[]dto.PhaseResponse}
// @Router       /sites/{siteId}/phases [get]
func (h *PhaseHandler) ListPhases(c *gin.Context) {
	siteID, ok := parseIDParam(c, "siteId", "site")
	if !ok {
		return
	}
	mode, ok := progressModeQuery(c)
	if !ok {
		return
	}

	phases, err := h.phaseService.ListPhases(c.Request.Context(), siteID, mode)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, phases)
}

func (h *PhaseHandler) GetPhase(c *gin.Context) {
	phaseID, ok := parseIDParam(c, "phaseId", "phase")
	if !ok {
		return
	}
	mode, ok := progressModeQuery(c)
	if !ok {
		return
	}

	phase, err := h.phaseService.GetPhase(c.Request.Context(), phaseID, mode)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, phase)
}

// UpdatePhase never touches status or progress; those move through the workflow endpoints
func (h *PhaseHandler) UpdatePhase(c *gin.Context) {
	phaseID, ok := parseIDParam(c, "phaseId", "phase")
	if !ok {
		return
	}

	var req dto.UpdatePhaseRequest
	if !bindJSON(c, &req) {
		return
	}

	phase, err := h.phaseService.UpdatePhase(c.Request.Context(), phaseID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, phase)
}

func (h *PhaseHandler) DeletePhase(c *gin.Context) {
	phaseID, ok := parseIDParam(c, "phaseId", "phase")
	if !ok {
		return
	}

	if err := h.phaseService.DeletePhase(c.Request.Context(), phaseID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
