// Package handler provides HTTP request handlers for the API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

// AttachmentHandler hands out presigned upload URLs
type AttachmentHandler struct {
	attachmentService service.AttachmentService
	logger            *zap.Logger
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService service.AttachmentService, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, logger: logger}
}

// GeneratePresignedURL godoc
// @Summary      Request an upload URL
// @Description  The client PUTs the file to uploadUrl, then references fileUrl in a progress report,
// @Description  chat message or profile. Unreferenced uploads are removed by the cleanup job.
// @Tags         attachments
// @Accept       json
// @Produce      json
// @Param        request body dto.PresignUploadRequest true "Upload metadata"
// @Success      200 {object} response.SuccessResponse{data=dto.PresignUploadResponse}
// @Failure      400 {object} response.ErrorResponse
// @Router       /attachments/presigned-url [post]
func (h *AttachmentHandler) GeneratePresignedURL(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.PresignUploadRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.attachmentService.PresignUpload(c.Request.Context(), actor, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, res)
}
