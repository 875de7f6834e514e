package dto

import (
	"time"

	"github.com/google/uuid"
)

// SubmitProgressRequest reports progress on a task or phase.
// Attachment URLs come from a prior presigned upload; they are stored as given.
// The validate rules are checked by the service after the assignment gate.
type SubmitProgressRequest struct {
	Progress *int    `json:"progress" validate:"required" example:"60"`
	Note     string  `json:"note" validate:"max=2000" example:"Formwork done on the east side"`
	ImageURL *string `json:"imageUrl,omitempty" validate:"omitempty,url"`
	AudioURL *string `json:"audioUrl,omitempty" validate:"omitempty,url"`
}

// RejectRequest asks for changes; reason is mandatory
type RejectRequest struct {
	Reason string `json:"reason" example:"Rebar spacing does not match drawing S-03"`
}

// TransitionResponse is the scope's state after a workflow action
type TransitionResponse struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status" example:"waiting_for_approval"`
	StatusLabel string    `json:"statusLabel" example:"Waiting for Approval"`
	Progress    int       `json:"progress" example:"100"`
}

// ProgressUpdateResponse is one entry of a scope's progress history
type ProgressUpdateResponse struct {
	ID               uuid.UUID `json:"id"`
	Seq              int64     `json:"seq"`
	ScopeType        string    `json:"scopeType" example:"TASK"`
	ScopeID          uuid.UUID `json:"scopeId"`
	PreviousProgress int       `json:"previousProgress"`
	NewProgress      int       `json:"newProgress"`
	Note             string    `json:"note"`
	ImageURL         *string   `json:"imageUrl,omitempty"`
	AudioURL         *string   `json:"audioUrl,omitempty"`
	AuthorID         uuid.UUID `json:"authorId"`
	CreatedAt        time.Time `json:"createdAt"`
}
