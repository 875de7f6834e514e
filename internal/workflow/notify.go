package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"site-tracker-api/internal/domain"
)

// EventKind is a notifiable occurrence
type EventKind string

const (
	EventSubmittedForApproval EventKind = "submitted_for_approval"
	EventApproved             EventKind = "approved"
	EventRejected             EventKind = "rejected"
	EventChatMessage          EventKind = "chat_message"
)

// Event carries what happened and where
type Event struct {
	Kind      EventKind
	Scope     domain.ScopeType
	ScopeName string
	ActorID   uuid.UUID
	SiteID    uuid.UUID
	PhaseID   *uuid.UUID
	TaskID    *uuid.UUID
	Note      string
}

// NotificationDraft is a notification to be stored and delivered
type NotificationDraft struct {
	TargetEmployeeID uuid.UUID               `json:"targetEmployeeId"`
	Type             domain.NotificationType `json:"type"`
	Message          string                  `json:"message"`
	SiteID           uuid.UUID               `json:"siteId"`
	PhaseID          *uuid.UUID              `json:"phaseId,omitempty"`
	TaskID           *uuid.UUID              `json:"taskId,omitempty"`
}

// EventFor maps a transition outcome to the event it announces.
// The second return is false for transitions nobody needs to hear about.
func EventFor(kind ActionKind, out Outcome) (EventKind, bool) {
	switch {
	case kind == ActionSubmit && out.Status == domain.StatusWaitingForApproval:
		return EventSubmittedForApproval, true
	case kind == ActionApprove:
		return EventApproved, true
	case kind == ActionReject:
		return EventRejected, true
	}
	return "", false
}

// Drafts builds one draft per recipient. The actor is skipped and duplicates are dropped.
func Drafts(ev Event, recipients []uuid.UUID) []NotificationDraft {
	typ := notificationType(ev)
	msg := message(ev)

	seen := make(map[uuid.UUID]struct{}, len(recipients))
	drafts := make([]NotificationDraft, 0, len(recipients))
	for _, id := range recipients {
		if id == uuid.Nil || id == ev.ActorID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		drafts = append(drafts, NotificationDraft{
			TargetEmployeeID: id,
			Type:             typ,
			Message:          msg,
			SiteID:           ev.SiteID,
			PhaseID:          ev.PhaseID,
			TaskID:           ev.TaskID,
		})
	}
	return drafts
}

func notificationType(ev Event) domain.NotificationType {
	switch ev.Kind {
	case EventChatMessage:
		return domain.NotificationChatUpdate
	case EventSubmittedForApproval, EventApproved:
		if ev.Scope == domain.ScopePhase {
			return domain.NotificationStageCompleted
		}
	}
	return domain.NotificationTaskUpdate
}

func message(ev Event) string {
	noun := "Task"
	if ev.Scope == domain.ScopePhase {
		noun = "Phase"
	}

	switch ev.Kind {
	case EventSubmittedForApproval:
		return fmt.Sprintf("%s %q reached 100%% and is waiting for approval", noun, ev.ScopeName)
	case EventApproved:
		return fmt.Sprintf("%s %q was approved", noun, ev.ScopeName)
	case EventRejected:
		return fmt.Sprintf("%s %q needs changes: %s", noun, ev.ScopeName, ev.Note)
	case EventChatMessage:
		return fmt.Sprintf("New message in %q", ev.ScopeName)
	}
	return fmt.Sprintf("%s %q was updated", noun, ev.ScopeName)
}
