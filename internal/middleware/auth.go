package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

// Context keys set by the auth chain
const (
	ContextEmployeeID = "employee_id"
	ContextActor      = "actor"
)

// TokenValidator validates an access token and returns its subject
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenStr string) (uuid.UUID, error)
}

// EmployeeResolver loads the employee behind a token; inactive employees are refused
type EmployeeResolver interface {
	ResolveEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.Employee, error)
}

// AuthWithValidator returns a middleware that validates the Bearer token
func AuthWithValidator(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		employeeID, err := validator.ValidateToken(ctx, parts[1])
		if err != nil {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextEmployeeID, employeeID)
		c.Next()
	}
}

// ResolveActor loads the authenticated employee and stores it as a workflow actor.
// It must run after AuthWithValidator.
func ResolveActor(resolver EmployeeResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeID, ok := EmployeeIDFrom(c)
		if !ok {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Employee ID not found in context")
			c.Abort()
			return
		}

		employee, err := resolver.ResolveEmployee(c.Request.Context(), employeeID)
		if err != nil {
			var appErr *response.AppError
			if errors.As(err, &appErr) && appErr.Code == response.ErrCodeForbidden {
				response.SendError(c, http.StatusForbidden, appErr.Code, appErr.Message)
			} else {
				response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Employee not found")
			}
			c.Abort()
			return
		}

		c.Set(ContextActor, workflow.Actor{ID: employee.ID, Role: employee.Role})
		c.Next()
	}
}

// AdminOnly rejects non-admin actors. It must run after ResolveActor.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || !actor.IsAdmin() {
			response.SendError(c, http.StatusForbidden, response.ErrCodeForbidden, "Admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func EmployeeIDFrom(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextEmployeeID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func ActorFrom(c *gin.Context) (workflow.Actor, bool) {
	v, exists := c.Get(ContextActor)
	if !exists {
		return workflow.Actor{}, false
	}
	actor, ok := v.(workflow.Actor)
	return actor, ok
}
