package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateEmployeeRequest represents the request to register an employee
type CreateEmployeeRequest struct {
	Name            string  `json:"name" binding:"required,min=1,max=255" example:"Kwame Boateng"`
	Phone           string  `json:"phone" binding:"required,min=5,max=50" example:"+233241112222"`
	Email           *string `json:"email,omitempty" binding:"omitempty,email"`
	Role            string  `json:"role" binding:"required" example:"worker"`
	Status          string  `json:"status,omitempty" example:"Active"`
	Password        string  `json:"password" binding:"required,min=6,max=72"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty" binding:"omitempty,url"`
}

// UpdateEmployeeRequest represents the request to update an employee. All fields are optional.
type UpdateEmployeeRequest struct {
	Name            *string `json:"name" binding:"omitempty,min=1,max=255"`
	Phone           *string `json:"phone" binding:"omitempty,min=5,max=50"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Role            *string `json:"role"`
	Status          *string `json:"status"`
	Password        *string `json:"password" binding:"omitempty,min=6,max=72"`
	ProfileImageURL *string `json:"profileImageUrl" binding:"omitempty,url"`
}

// EmployeeFilters holds query parameters for listing employees
type EmployeeFilters struct {
	Role   string `form:"role"`
	Status string `form:"status"`
	Search string `form:"search"`
}

// EmployeeResponse represents an employee; credentials are never returned
type EmployeeResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Email           *string   `json:"email,omitempty"`
	Role            string    `json:"role" example:"worker"`
	Status          string    `json:"status" example:"Active"`
	ProfileImageURL *string   `json:"profileImageUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LoginRequest authenticates with phone number and password
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required" example:"+233241112222"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Employee  EmployeeResponse `json:"employee"`
}

// ChangePasswordRequest replaces the caller's own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}
