// Package queue publishes committed workflow transitions to RabbitMQ so
// downstream consumers (reporting, billing) can follow site progress.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// TransitionQueue is the default durable queue name
const TransitionQueue = "workflow.transitions"

// TransitionEvent describes one committed state change of a task or phase
type TransitionEvent struct {
	EventID          uuid.UUID  `json:"eventId"`
	ScopeType        string     `json:"scopeType"`
	ScopeID          uuid.UUID  `json:"scopeId"`
	SiteID           uuid.UUID  `json:"siteId"`
	PhaseID          *uuid.UUID `json:"phaseId,omitempty"`
	Action           string     `json:"action"`
	FromStatus       string     `json:"fromStatus"`
	ToStatus         string     `json:"toStatus"`
	PreviousProgress int        `json:"previousProgress"`
	Progress         int        `json:"progress"`
	ActorID          uuid.UUID  `json:"actorId"`
	OccurredAt       time.Time  `json:"occurredAt"`
}
