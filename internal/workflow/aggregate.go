package workflow

import (
	"fmt"
	"strings"

	"site-tracker-api/internal/domain"
)

// PhaseProgress is the task-derived view of a phase
type PhaseProgress struct {
	DerivedProgress int `json:"derivedProgress"`
	CompletedCount  int `json:"completedCount"`
	TotalCount      int `json:"totalCount"`
}

// DerivePhaseProgress counts completed tasks. DerivedProgress is
// round(100 * completed / total), or 0 for a phase without tasks.
func DerivePhaseProgress(taskStatuses []domain.WorkStatus) PhaseProgress {
	p := PhaseProgress{TotalCount: len(taskStatuses)}
	for _, s := range taskStatuses {
		if s == domain.StatusCompleted {
			p.CompletedCount++
		}
	}
	if p.TotalCount > 0 {
		// integer half-up rounding
		p.DerivedProgress = (200*p.CompletedCount + p.TotalCount) / (2 * p.TotalCount)
	}
	return p
}

// ProgressMode selects which progress value drives a phase's status badge
type ProgressMode string

const (
	ProgressModeDerived  ProgressMode = "derived"
	ProgressModeExplicit ProgressMode = "explicit"
)

// ParseProgressMode defaults to explicit when raw is empty
func ParseProgressMode(raw string) (ProgressMode, error) {
	switch ProgressMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ProgressModeExplicit:
		return ProgressModeExplicit, nil
	case ProgressModeDerived:
		return ProgressModeDerived, nil
	}
	return "", fmt.Errorf("unknown progress mode %q", raw)
}

// BadgeStatus picks the status shown for a phase.
// Explicit mode shows the phase's own workflow status. Derived mode reads it off the tasks.
func BadgeStatus(mode ProgressMode, explicit domain.WorkStatus, taskStatuses []domain.WorkStatus) domain.WorkStatus {
	if mode == ProgressModeExplicit {
		return explicit
	}
	if len(taskStatuses) == 0 {
		return domain.StatusNotStarted
	}

	var completed, waiting, started int
	for _, s := range taskStatuses {
		switch s {
		case domain.StatusCompleted:
			completed++
		case domain.StatusWaitingForApproval:
			waiting++
		case domain.StatusInProgress:
			started++
		}
	}

	switch {
	case completed == len(taskStatuses):
		return domain.StatusCompleted
	case completed+waiting == len(taskStatuses):
		return domain.StatusWaitingForApproval
	case completed+waiting+started > 0:
		return domain.StatusInProgress
	}
	return domain.StatusNotStarted
}
