package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreatePhaseRequest represents the request to add a phase to a site
type CreatePhaseRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=255" example:"Foundation"`
	OrderNumber *int       `json:"orderNumber" binding:"omitempty,gte=0" example:"2"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Budget      float64    `json:"budget" binding:"gte=0"`
}

// UpdatePhaseRequest changes phase details. Status and progress only move through the workflow endpoints.
// unassign clears assignedTo.
type UpdatePhaseRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=255"`
	OrderNumber *int       `json:"orderNumber" binding:"omitempty,gte=0"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty"`
	Unassign    bool       `json:"unassign"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Budget      *float64   `json:"budget" binding:"omitempty,gte=0"`
}

// PhaseResponse exposes both the phase's own progress and the task-derived one.
// statusBadge follows progressMode.
type PhaseResponse struct {
	ID                 uuid.UUID  `json:"id"`
	SiteID             uuid.UUID  `json:"siteId"`
	Name               string     `json:"name"`
	OrderNumber        int        `json:"orderNumber"`
	AssignedTo         *uuid.UUID `json:"assignedTo,omitempty"`
	Status             string     `json:"status" example:"in_progress"`
	ExplicitProgress   int        `json:"explicitProgress" example:"40"`
	DerivedProgress    int        `json:"derivedProgress" example:"33"`
	CompletedTaskCount int        `json:"completedTaskCount" example:"1"`
	TotalTaskCount     int        `json:"totalTaskCount" example:"3"`
	ProgressMode       string     `json:"progressMode" example:"explicit"`
	StatusBadge        string     `json:"statusBadge" example:"in_progress"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	DueDate            *time.Time `json:"dueDate,omitempty"`
	Budget             float64    `json:"budget"`
	ApprovedBy         *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt         *time.Time `json:"approvedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}
