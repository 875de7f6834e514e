package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// RoomCounter reports live WebSocket subscribers
type RoomCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
	rooms RoomCounter
}

// NewHealthHandler creates a HealthHandler; redis and rooms may be nil
func NewHealthHandler(db *gorm.DB, redis *redis.Client, rooms RoomCounter) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, rooms: rooms}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "site-tracker-api",
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	connections := make(map[string]string)

	sqlDB, err := h.db.DB()
	if err != nil {
		connections["database"] = "error: " + err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		connections["database"] = "error: " + err.Error()
	} else {
		connections["database"] = "connected"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			connections["redis"] = "error: " + err.Error()
		} else {
			connections["redis"] = "connected"
		}
	} else {
		connections["redis"] = "not configured"
	}

	hasError := false
	for _, status := range connections {
		if status != "connected" && status != "not configured" {
			hasError = true
			break
		}
	}

	status := http.StatusOK
	statusText := "ready"
	if hasError {
		status = http.StatusServiceUnavailable
		statusText = "not ready"
	}

	body := gin.H{
		"status":      statusText,
		"connections": connections,
	}
	if h.rooms != nil {
		body["wsClients"] = h.rooms.ClientCount()
	}
	c.JSON(status, body)
}
