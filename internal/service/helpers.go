package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"site-tracker-api/internal/response"
)

// removeDuplicateUUIDs removes duplicate and nil UUIDs, keeping first-seen order
func removeDuplicateUUIDs(uuids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(uuids))
	result := make([]uuid.UUID, 0, len(uuids))

	for _, id := range uuids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}

	return result
}

// validateDateRange validates that startDate is not after endDate
func validateDateRange(startDate, endDate *time.Time) error {
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return response.NewValidationError("Start date cannot be after end date", "")
	}
	return nil
}

var requestValidator = newRequestValidator()

// newRequestValidator reports fields by their JSON names
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks the validate tags of req and reports the first failing field
func validateRequest(req interface{}) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return response.NewValidationError("Invalid request", err.Error())
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fe.Field() + " is required"
	case "max":
		msg = fe.Field() + " must be at most " + fe.Param() + " characters"
	case "url":
		msg = fe.Field() + " must be a valid URL"
	default:
		msg = fe.Field() + " is invalid"
	}
	return response.NewValidationError(msg, fe.Field())
}

// lookupError maps a repository lookup failure to NOT_FOUND or PERSISTENCE_ERROR
func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFoundError(what+" not found", "")
	}
	return response.NewPersistenceError("Failed to load "+what, err)
}

// asAppError passes AppErrors through and wraps anything else as a persistence failure
func asAppError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return response.NewPersistenceError(message, err)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
