package domain

import (
	"fmt"
	"strings"
)

// WorkStatus is the workflow state shared by tasks and phases
type WorkStatus string

const (
	StatusNotStarted         WorkStatus = "not_started"
	StatusInProgress         WorkStatus = "in_progress"
	StatusWaitingForApproval WorkStatus = "waiting_for_approval"
	StatusCompleted          WorkStatus = "completed"
)

// IsValid reports whether s is one of the normalized values
func (s WorkStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusWaitingForApproval, StatusCompleted:
		return true
	}
	return false
}

// Label returns the title-case spelling used by older clients
func (s WorkStatus) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusWaitingForApproval:
		return "Waiting for Approval"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// ParseWorkStatus normalizes any known spelling of a workflow state.
// "Not Started", "NotStarted", "not-started" and "not_started" all map to the same value,
// and the phase-table spelling "achieved" maps to completed.
func ParseWorkStatus(raw string) (WorkStatus, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)

	switch key {
	case "notstarted", "pending", "":
		return StatusNotStarted, nil
	case "inprogress":
		return StatusInProgress, nil
	case "waitingforapproval", "waitingapproval", "awaitingapproval":
		return StatusWaitingForApproval, nil
	case "completed", "complete", "achieved", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown work status %q", raw)
}

// ScopeType identifies which kind of work unit a record belongs to
type ScopeType string

const (
	ScopeTask  ScopeType = "TASK"
	ScopePhase ScopeType = "PHASE"
)

// ParseScopeType accepts "task"/"phase" in any case
func ParseScopeType(raw string) (ScopeType, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(ScopeTask):
		return ScopeTask, nil
	case string(ScopePhase), "STAGE":
		return ScopePhase, nil
	}
	return "", fmt.Errorf("unknown scope type %q", raw)
}
