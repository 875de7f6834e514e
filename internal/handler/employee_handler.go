package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

// EmployeeHandler is the admin directory of employees
type EmployeeHandler struct {
	employeeService service.EmployeeService
	logger          *zap.Logger
}

func NewEmployeeHandler(employeeService service.EmployeeService, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService, logger: logger}
}

func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, employee)
}

func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var filters dto.EmployeeFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid query parameters")
		return
	}

	employees, err := h.employeeService.ListEmployees(c.Request.Context(), &filters)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, employees)
}

func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	employeeID, ok := parseIDParam(c, "employeeId", "employee")
	if !ok {
		return
	}

	employee, err := h.employeeService.GetEmployee(c.Request.Context(), employeeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, employee)
}

func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	employeeID, ok := parseIDParam(c, "employeeId", "employee")
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), employeeID, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, employee)
}

func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	employeeID, ok := parseIDParam(c, "employeeId", "employee")
	if !ok {
		return
	}

	if err := h.employeeService.DeleteEmployee(c.Request.Context(), employeeID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
