package workflow

import (
	"github.com/google/uuid"

	"site-tracker-api/internal/domain"
)

// Target describes who is attached to a task or phase.
// For a task, Assignees is its assignment set. For a phase, AssignedTo is the phase
// assignee and Assignees is everyone assigned to any task in the phase.
type Target struct {
	Scope      domain.ScopeType
	AssignedTo *uuid.UUID
	Assignees  []uuid.UUID
}

// CanDrive reports whether actor may push target through the workflow,
// post to its conversation or edit its checklist.
func CanDrive(actor Actor, target Target) bool {
	if actor.IsAdmin() {
		return true
	}

	if target.Scope == domain.ScopePhase && target.AssignedTo != nil && *target.AssignedTo == actor.ID {
		return true
	}

	for _, id := range target.Assignees {
		if id == actor.ID {
			return true
		}
	}
	return false
}
