package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
	"site-tracker-api/internal/workflow"
)

// RoomServer attaches an upgraded connection to a phase room
type RoomServer interface {
	Serve(conn *websocket.Conn, phaseID, employeeID uuid.UUID)
}

// WSHandler upgrades phase conversation subscribers.
// Browsers cannot set headers on a WebSocket handshake, so the token travels in the query.
type WSHandler struct {
	authService service.AuthService
	chatService service.ChatService
	rooms       RoomServer
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewWSHandler creates a WSHandler; an empty allowedOrigins accepts any origin
func NewWSHandler(authService service.AuthService, chatService service.ChatService, rooms RoomServer, allowedOrigins []string, logger *zap.Logger) *WSHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &WSHandler{
		authService: authService,
		chatService: chatService,
		rooms:       rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
		logger: logger,
	}
}

// HandlePhaseRoom godoc
// @Summary      Subscribe to a phase conversation
// @Description  Streams CHAT_MESSAGE, PROGRESS_UPDATED and STATUS_CHANGED events for the phase and its tasks
// @Tags         websocket
// @Param        phaseId path string true "Phase ID (UUID)"
// @Param        token query string true "JWT access token"
// @Router       /ws/phases/{phaseId} [get]
func (h *WSHandler) HandlePhaseRoom(c *gin.Context) {
	phaseID, ok := parseIDParam(c, "phaseId", "phase")
	if !ok {
		return
	}

	token := c.Query("token")
	if token == "" {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "token query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	employeeID, err := h.authService.ValidateToken(ctx, token)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	employee, err := h.authService.ResolveEmployee(ctx, employeeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	if err := h.chatService.CanJoin(ctx, workflow.Actor{ID: employee.ID, Role: employee.Role}, phaseID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	h.logger.Info("WebSocket joined",
		zap.String("phase_id", phaseID.String()),
		zap.String("employee_id", employee.ID.String()),
	)
	h.rooms.Serve(conn, phaseID, employee.ID)
}
