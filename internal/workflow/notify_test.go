package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-tracker-api/internal/domain"
)

func TestEventFor(t *testing.T) {
	kind, ok := EventFor(ActionSubmit, Outcome{Status: domain.StatusInProgress})
	assert.False(t, ok)
	assert.Empty(t, kind)

	kind, ok = EventFor(ActionSubmit, Outcome{Status: domain.StatusWaitingForApproval})
	assert.True(t, ok)
	assert.Equal(t, EventSubmittedForApproval, kind)

	kind, _ = EventFor(ActionApprove, Outcome{Status: domain.StatusCompleted})
	assert.Equal(t, EventApproved, kind)

	kind, _ = EventFor(ActionReject, Outcome{Status: domain.StatusInProgress})
	assert.Equal(t, EventRejected, kind)
}

func TestDrafts_Types(t *testing.T) {
	recipient := uuid.New()
	tests := []struct {
		kind  EventKind
		scope domain.ScopeType
		want  domain.NotificationType
	}{
		{EventSubmittedForApproval, domain.ScopeTask, domain.NotificationTaskUpdate},
		{EventSubmittedForApproval, domain.ScopePhase, domain.NotificationStageCompleted},
		{EventApproved, domain.ScopeTask, domain.NotificationTaskUpdate},
		{EventApproved, domain.ScopePhase, domain.NotificationStageCompleted},
		{EventRejected, domain.ScopeTask, domain.NotificationTaskUpdate},
		{EventRejected, domain.ScopePhase, domain.NotificationTaskUpdate},
		{EventChatMessage, domain.ScopeTask, domain.NotificationChatUpdate},
		{EventChatMessage, domain.ScopePhase, domain.NotificationChatUpdate},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.scope), func(t *testing.T) {
			drafts := Drafts(Event{Kind: tt.kind, Scope: tt.scope, ActorID: uuid.New()}, []uuid.UUID{recipient})
			require.Len(t, drafts, 1)
			assert.Equal(t, tt.want, drafts[0].Type)
			assert.Equal(t, recipient, drafts[0].TargetEmployeeID)
		})
	}
}

func TestDrafts_SkipsActorAndDuplicates(t *testing.T) {
	actor := uuid.New()
	a, b := uuid.New(), uuid.New()
	siteID := uuid.New()
	taskID := uuid.New()

	drafts := Drafts(Event{
		Kind:      EventRejected,
		Scope:     domain.ScopeTask,
		ScopeName: "Tiling",
		ActorID:   actor,
		SiteID:    siteID,
		TaskID:    &taskID,
		Note:      "redo grouting",
	}, []uuid.UUID{a, actor, b, a, uuid.Nil})

	require.Len(t, drafts, 2)
	assert.Equal(t, a, drafts[0].TargetEmployeeID)
	assert.Equal(t, b, drafts[1].TargetEmployeeID)
	for _, d := range drafts {
		assert.Equal(t, siteID, d.SiteID)
		assert.Equal(t, &taskID, d.TaskID)
		assert.Nil(t, d.PhaseID)
		assert.Contains(t, d.Message, "redo grouting")
		assert.Contains(t, d.Message, "Tiling")
	}
}

func TestDrafts_NoRecipients(t *testing.T) {
	actor := uuid.New()
	assert.Empty(t, Drafts(Event{Kind: EventChatMessage, ActorID: actor}, []uuid.UUID{actor}))
	assert.Empty(t, Drafts(Event{Kind: EventChatMessage, ActorID: actor}, nil))
}
