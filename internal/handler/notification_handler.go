package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

// NotificationHandler serves the caller's own notifications
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}

	var query dto.NotificationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid query parameters")
		return
	}

	items, total, page, limit, err := h.notificationService.List(c.Request.Context(), employeeID, &query)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendPaginated(c, http.StatusOK, items, total, page, limit)
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), employeeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}
	notificationID, ok := parseIDParam(c, "notificationId", "notification")
	if !ok {
		return
	}

	n, err := h.notificationService.MarkAsRead(c.Request.Context(), employeeID, notificationID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}

	updated, err := h.notificationService.MarkAllAsRead(c.Request.Context(), employeeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}
