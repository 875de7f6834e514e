package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

const maxUpdatesLimit = 500

// WorkflowHandler exposes progress, approve, reject and the update history.
// The same handlers serve both scopes; each route picks its scope and path parameter.
type WorkflowHandler struct {
	workflowService service.WorkflowService
	logger          *zap.Logger
}

func NewWorkflowHandler(workflowService service.WorkflowService, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService, logger: logger}
}

func scopeParam(scope domain.ScopeType) (string, string) {
	if scope == domain.ScopePhase {
		return "phaseId", "phase"
	}
	return "taskId", "task"
}

// SubmitProgress godoc
// @Summary      Report progress
// @Description  100 moves the scope to waiting_for_approval; anything lower keeps it in progress
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Param        request body dto.SubmitProgressRequest true "Progress report"
// @Success      200 {object} response.SuccessResponse{data=dto.TransitionResponse}
// @Failure      403 {object} response.ErrorResponse "Not assigned"
// @Failure      409 {object} response.ErrorResponse "Invalid state transition"
// @Router       /tasks/{taskId}/progress [post]
// @Router       /phases/{phaseId}/progress [post]
func (h *WorkflowHandler) SubmitProgress(scope domain.ScopeType) gin.HandlerFunc {
	param, label := scopeParam(scope)
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, param, label)
		if !ok {
			return
		}
		actor, ok := currentActor(c)
		if !ok {
			return
		}

		// an undecodable body is reported by the service once the gate has passed
		req := &dto.SubmitProgressRequest{}
		if !bindOptionalJSON(c, req) {
			req = nil
		}

		res, err := h.workflowService.SubmitProgress(c.Request.Context(), actor, scope, id, req)
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		response.SendSuccess(c, http.StatusOK, res)
	}
}

func (h *WorkflowHandler) Approve(scope domain.ScopeType) gin.HandlerFunc {
	param, label := scopeParam(scope)
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, param, label)
		if !ok {
			return
		}
		actor, ok := currentActor(c)
		if !ok {
			return
		}

		res, err := h.workflowService.Approve(c.Request.Context(), actor, scope, id)
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		response.SendSuccess(c, http.StatusOK, res)
	}
}

// Reject accepts an empty or undecodable body so a missing reason is reported
// after the assignment and role checks.
func (h *WorkflowHandler) Reject(scope domain.ScopeType) gin.HandlerFunc {
	param, label := scopeParam(scope)
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, param, label)
		if !ok {
			return
		}
		actor, ok := currentActor(c)
		if !ok {
			return
		}

		req := &dto.RejectRequest{}
		if !bindOptionalJSON(c, req) {
			req = nil
		}

		res, err := h.workflowService.Reject(c.Request.Context(), actor, scope, id, req)
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		response.SendSuccess(c, http.StatusOK, res)
	}
}

// ListUpdates returns the progress history in seq order; collapse=true hides
// records that repeat the one directly before them and limit=N keeps the latest N.
func (h *WorkflowHandler) ListUpdates(scope domain.ScopeType) gin.HandlerFunc {
	param, label := scopeParam(scope)
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, param, label)
		if !ok {
			return
		}

		collapse, err := strconv.ParseBool(c.DefaultQuery("collapse", "false"))
		if err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "collapse must be a boolean")
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
		if err != nil || limit < 0 || limit > maxUpdatesLimit {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "limit must be between 0 and "+strconv.Itoa(maxUpdatesLimit))
			return
		}

		updates, err := h.workflowService.ListUpdates(c.Request.Context(), scope, id, collapse, limit)
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		response.SendSuccess(c, http.StatusOK, updates)
	}
}
