package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request to add a task to a phase
type CreateTaskRequest struct {
	Name        string      `json:"name" binding:"required,min=1,max=255" example:"Pour footing concrete"`
	Amount      float64     `json:"amount" binding:"gte=0" example:"4200"`
	StartDate   *time.Time  `json:"startDate,omitempty"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	AssigneeIDs []uuid.UUID `json:"assigneeIds,omitempty" binding:"omitempty,max=50"`
}

// UpdateTaskRequest changes task details. All fields are optional.
type UpdateTaskRequest struct {
	Name      *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Amount    *float64   `json:"amount" binding:"omitempty,gte=0"`
	StartDate *time.Time `json:"startDate,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
}

// AssignEmployeeRequest adds an employee to a task's assignment set
type AssignEmployeeRequest struct {
	EmployeeID uuid.UUID `json:"employeeId" binding:"required"`
}

// TaskResponse represents a task
type TaskResponse struct {
	ID          uuid.UUID   `json:"id"`
	SiteID      uuid.UUID   `json:"siteId"`
	PhaseID     uuid.UUID   `json:"phaseId"`
	Name        string      `json:"name"`
	Status      string      `json:"status" example:"waiting_for_approval"`
	Progress    int         `json:"progress" example:"100"`
	Amount      float64     `json:"amount"`
	StartDate   *time.Time  `json:"startDate,omitempty"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	CompletedBy *uuid.UUID  `json:"completedBy,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	AssigneeIDs []uuid.UUID `json:"assigneeIds"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
