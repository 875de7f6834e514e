// Package workflow holds the rules that move tasks and phases between workflow states.
// Nothing here touches storage; callers load state, ask for an Outcome and persist it.
package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/response"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

// Actor is the authenticated employee performing an action
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// ActionKind is what the actor asks for
type ActionKind string

const (
	ActionSubmit  ActionKind = "submit"
	ActionApprove ActionKind = "approve"
	ActionReject  ActionKind = "reject"
)

// Action is a requested transition. Note is the progress note for submit and the reason for reject.
type Action struct {
	Kind     ActionKind
	Progress int
	Note     string
}

// State is the current workflow position of a task or phase
type State struct {
	Scope    domain.ScopeType
	Status   domain.WorkStatus
	Progress int
}

// Audience is who must hear about a transition
type Audience int

const (
	AudienceNone Audience = iota
	AudienceAdmins
	AudienceAssignees
)

// Outcome is the result of a permitted transition
type Outcome struct {
	Status           domain.WorkStatus
	PreviousProgress int
	Progress         int
	// AppendRecord is set when a progress record must be written with RecordNote
	AppendRecord  bool
	RecordNote    string
	StampApproval bool
	Audience      Audience
}

// Apply computes the next state for action on current.
// It checks the actor's role for admin-only actions but not assignment; see CanDrive.
func Apply(current State, actor Actor, action Action) (Outcome, error) {
	switch action.Kind {
	case ActionSubmit:
		return submit(current, action)
	case ActionApprove:
		return approve(current, actor)
	case ActionReject:
		return reject(current, actor, action)
	}
	return Outcome{}, response.NewValidationError("Unknown workflow action", string(action.Kind))
}

func submit(current State, action Action) (Outcome, error) {
	if action.Progress < MinProgress || action.Progress > MaxProgress {
		return Outcome{}, response.NewValidationError(
			"Progress must be between 0 and 100",
			fmt.Sprintf("got %d", action.Progress),
		)
	}

	switch current.Status {
	case domain.StatusNotStarted, domain.StatusInProgress:
	case domain.StatusWaitingForApproval:
		return Outcome{}, response.NewInvalidTransitionError(
			"Progress cannot be updated while waiting for approval",
			string(current.Status),
		)
	default:
		return Outcome{}, invalidFrom(ActionSubmit, current.Status)
	}

	out := Outcome{
		Status:           domain.StatusInProgress,
		PreviousProgress: current.Progress,
		Progress:         action.Progress,
		AppendRecord:     true,
		RecordNote:       strings.TrimSpace(action.Note),
	}
	if action.Progress == MaxProgress {
		out.Status = domain.StatusWaitingForApproval
		out.Audience = AudienceAdmins
	}
	return out, nil
}

func approve(current State, actor Actor) (Outcome, error) {
	if !actor.IsAdmin() {
		return Outcome{}, response.NewForbiddenError("Only admins can approve work", "")
	}
	if current.Status != domain.StatusWaitingForApproval {
		return Outcome{}, invalidFrom(ActionApprove, current.Status)
	}

	return Outcome{
		Status:           domain.StatusCompleted,
		PreviousProgress: current.Progress,
		Progress:         current.Progress,
		StampApproval:    true,
		Audience:         AudienceAssignees,
	}, nil
}

func reject(current State, actor Actor, action Action) (Outcome, error) {
	if !actor.IsAdmin() {
		return Outcome{}, response.NewForbiddenError("Only admins can request changes", "")
	}
	reason := strings.TrimSpace(action.Note)
	if reason == "" {
		return Outcome{}, response.NewValidationError("A reason is required to request changes", "")
	}
	if current.Status != domain.StatusWaitingForApproval {
		return Outcome{}, invalidFrom(ActionReject, current.Status)
	}

	// phases restart from zero, tasks keep the submitted value
	next := current.Progress
	if current.Scope == domain.ScopePhase {
		next = MinProgress
	}

	return Outcome{
		Status:           domain.StatusInProgress,
		PreviousProgress: current.Progress,
		Progress:         next,
		AppendRecord:     true,
		RecordNote:       reason,
		Audience:         AudienceAssignees,
	}, nil
}

func invalidFrom(kind ActionKind, status domain.WorkStatus) *response.AppError {
	return response.NewInvalidTransitionError(
		fmt.Sprintf("Cannot %s from status %s", kind, status),
		string(status),
	)
}
