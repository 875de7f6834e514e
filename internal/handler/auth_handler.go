package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/service"
)

// AuthHandler handles login and the caller's own account
type AuthHandler struct {
	authService     service.AuthService
	employeeService service.EmployeeService
	logger          *zap.Logger
}

func NewAuthHandler(authService service.AuthService, employeeService service.EmployeeService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, employeeService: employeeService, logger: logger}
}

// Login godoc
// @Summary      Log in with phone and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Credentials"
// @Success      200 {object} response.SuccessResponse{data=dto.LoginResponse}
// @Failure      401 {object} response.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, res)
}

func (h *AuthHandler) Me(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}

	me, err := h.employeeService.GetEmployee(c.Request.Context(), employeeID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, me)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	employeeID, ok := currentEmployeeID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), employeeID, &req); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
