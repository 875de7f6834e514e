package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"site-tracker-api/internal/middleware"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

// parseIDParam reads a UUID path parameter; it writes the 400 itself on failure
func parseIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func currentActor(c *gin.Context) (workflow.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Employee not found in context")
		return workflow.Actor{}, false
	}
	return actor, true
}

func currentEmployeeID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.EmployeeIDFrom(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Employee ID not found in context")
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindOptionalJSON decodes the body into req. An empty body is fine.
// It reports false when the body is not valid JSON for req.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	return err == nil || errors.Is(err, io.EOF)
}

func progressModeQuery(c *gin.Context) (workflow.ProgressMode, bool) {
	mode, err := workflow.ParseProgressMode(c.Query("progressMode"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "progressMode must be derived or explicit")
		return "", false
	}
	return mode, true
}
