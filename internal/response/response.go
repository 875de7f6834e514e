package response

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Error codes shared by services and handlers
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeInvalidTransition = "INVALID_STATE_TRANSITION"
	ErrCodePersistence       = "PERSISTENCE_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// AppError is the error type returned by the service layer.
// Code is one of the ErrCode constants and decides the HTTP status.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches another AppError by code so callers can use errors.Is with a template.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

func NewValidationError(message, details string) *AppError {
	return NewAppError(ErrCodeValidation, message, details)
}

func NewNotFoundError(message, details string) *AppError {
	return NewAppError(ErrCodeNotFound, message, details)
}

func NewForbiddenError(message, details string) *AppError {
	return NewAppError(ErrCodeForbidden, message, details)
}

func NewInvalidTransitionError(message, details string) *AppError {
	return NewAppError(ErrCodeInvalidTransition, message, details)
}

func NewPersistenceError(message string, err error) *AppError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewAppError(ErrCodePersistence, message, details)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// ErrorResponse is the JSON envelope for failures
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse is the JSON envelope for successful calls
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// SendSuccess writes a success envelope
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Data: data})
}

// SendPaginated writes a paginated envelope
func SendPaginated(c *gin.Context, status int, data interface{}, total int64, page, limit int) {
	c.JSON(status, PaginatedResponse{Data: data, Total: total, Page: page, Limit: limit})
}

// SendError writes an error envelope
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}
