package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

type TaskHandler struct {
	taskService service.TaskService
	logger      *zap.Logger
}

func NewTaskHandler(taskService service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	phaseID, ok := parseIDParam(c, "phaseId", "phase")
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), phaseID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, task)
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	phaseID, ok := parseIDParam(c, "phaseId", "phase")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), phaseID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, tasks)
}

// ListMyTasks returns the tasks the caller is assigned to
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListAssignedTasks(c.Request.Context(), employeeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) AssignEmployee(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task")
	if !ok {
		return
	}

	var req dto.AssignEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.AssignEmployee(c.Request.Context(), taskID, req.EmployeeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, task)
}

func (h *TaskHandler) UnassignEmployee(c *gin.Context) {
	taskID, ok := parseIDParam(c, "taskId", "task")
	if !ok {
		return
	}
	employeeID, ok := parseIDParam(c, "employeeId", "employee")
	if !ok {
		return
	}

	task, err := h.taskService.UnassignEmployee(c.Request.Context(), taskID, employeeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, task)
}
