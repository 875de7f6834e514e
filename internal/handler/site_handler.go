package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

// SiteHandler serves sites and the phase template catalogue
type SiteHandler struct {
	siteService     service.SiteService
	templateService service.PhaseTemplateService
	logger          *zap.Logger
}

func NewSiteHandler(siteService service.SiteService, templateService service.PhaseTemplateService, logger *zap.Logger) *SiteHandler {
	return &SiteHandler{siteService: siteService, templateService: templateService, logger: logger}
}

// CreateSite godoc
// @Summary      Create a site
// @Description  Admin only. seedPhases=true copies the phase template list onto the new site.
// @Tags         sites
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateSiteRequest true "Site"
// @Success      201 {object} response.SuccessResponse{data=dto.SiteDetailResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /sites [post]
func (h *SiteHandler) CreateSite(c *gin.Context) {
	var req dto.CreateSiteRequest
	if !bindJSON(c, &req) {
		return
	}

	site, err := h.siteService.CreateSite(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, site)
}

func (h *SiteHandler) GetSite(c *gin.Context) {
	siteID, ok := parseIDParam(c, "siteId", "site")
	if !ok {
		return
	}
	mode, ok := progressModeQuery(c)
	if !ok {
		return
	}

	site, err := h.siteService.GetSite(c.Request.Context(), siteID, mode)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, site)
}

func (h *SiteHandler) ListSites(c *gin.Context) {
	sites, err := h.siteService.ListSites(c.Request.Context(), c.Query("status"))
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, sites)
}

func (h *SiteHandler) UpdateSite(c *gin.Context) {
	siteID, ok := parseIDParam(c, "siteId", "site")
	if !ok {
		return
	}

	var req dto.UpdateSiteRequest
	if !bindJSON(c, &req) {
		return
	}

	site, err := h.siteService.UpdateSite(c.Request.Context(), siteID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, site)
}

func (h *SiteHandler) DeleteSite(c *gin.Context) {
	siteID, ok := parseIDParam(c, "siteId", "site")
	if !ok {
		return
	}

	if err := h.siteService.DeleteSite(c.Request.Context(), siteID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPhaseTemplates returns the default construction sequence
func (h *SiteHandler) ListPhaseTemplates(c *gin.Context) {
	templates, err := h.templateService.ListTemplates(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, templates)
}
