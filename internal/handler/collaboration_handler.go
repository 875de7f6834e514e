package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

// CollaborationHandler serves checklists and the task/phase conversation
type CollaborationHandler struct {
	todoService service.TodoService
	chatService service.ChatService
	logger      *zap.Logger
}

func NewCollaborationHandler(todoService service.TodoService, chatService service.ChatService, logger *zap.Logger) *CollaborationHandler {
	return &CollaborationHandler{todoService: todoService, chatService: chatService, logger: logger}
}

func (h *CollaborationHandler) ListTodos(scope domain.ScopeType) gin.HandlerFunc {
	param, label := scopeParam(scope)
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, param, label)
		if !ok {
			return
		}

		todos, err := h.todoService.ListTodos(c.Request.Context(), scope, id)
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		response.SendSuccess(c, http.StatusOK, todos)
	}
}

func (h *CollaborationHandler) CreateTodo(scope domain.ScopeType) gin.HandlerFunc {
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

		req := &dto.CreateTodoRequest{}
		if !bindOptionalJSON(c, req) {
			req = nil
		}

		todo, err := h.todoService.CreateTodo(c.Request.Context(), actor, scope, id, req)
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		response.SendSuccess(c, http.StatusCreated, todo)
	}
}

func (h *CollaborationHandler) UpdateTodo(c *gin.Context) {
	todoID, ok := parseIDParam(c, "todoId", "todo")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	req := &dto.UpdateTodoRequest{}
	if !bindOptionalJSON(c, req) {
		req = nil
	}

	todo, err := h.todoService.UpdateTodo(c.Request.Context(), actor, todoID, req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, todo)
}

func (h *CollaborationHandler) DeleteTodo(c *gin.Context) {
	todoID, ok := parseIDParam(c, "todoId", "todo")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), actor, todoID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMessages godoc
// @Summary      Read a conversation
// @Description  A phase conversation includes the messages of all its tasks, oldest first
// @Tags         messages
// @Produce      json
// @Param        before query string false "RFC3339 cursor"
// @Param        limit query int false "Page size"
// @Success      200 {object} response.SuccessResponse{data=[]dto.MessageResponse}
// @Router       /phases/{phaseId}/messages [get]
// @Router       /tasks/{taskId}/messages [get]
func (h *CollaborationHandler) ListMessages(scope domain.ScopeType) gin.HandlerFunc {
	param, label := scopeParam(scope)
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, param, label)
		if !ok {
			return
		}

		var query dto.MessageQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid query parameters")
			return
		}

		messages, err := h.chatService.ListConversation(c.Request.Context(), scope, id, &query)
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		response.SendSuccess(c, http.StatusOK, messages)
	}
}

func (h *CollaborationHandler) PostMessage(scope domain.ScopeType) gin.HandlerFunc {
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

		req := &dto.CreateMessageRequest{}
		if !bindOptionalJSON(c, req) {
			req = nil
		}

		msg, err := h.chatService.PostMessage(c.Request.Context(), actor, scope, id, req)
		if err != nil {
			handleServiceError(c, h.logger, err)
			return
		}
		response.SendSuccess(c, http.StatusCreated, msg)
	}
}
