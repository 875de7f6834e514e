package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/response"
)

var (
	admin  = Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	worker = Actor{ID: uuid.New(), Role: domain.RoleWorker}
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*response.AppError)
	require.True(t, ok, "expected *response.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestApply_Submit(t *testing.T) {
	tests := []struct {
		name         string
		current      State
		actor        Actor
		progress     int
		wantStatus   domain.WorkStatus
		wantAudience Audience
	}{
		{"성공: not started to in progress", State{domain.ScopeTask, domain.StatusNotStarted, 0}, worker, 40, domain.StatusInProgress, AudienceNone},
		{"성공: in progress stays in progress", State{domain.ScopeTask, domain.StatusInProgress, 40}, worker, 60, domain.StatusInProgress, AudienceNone},
		{"성공: zero still moves to in progress", State{domain.ScopeTask, domain.StatusNotStarted, 0}, worker, 0, domain.StatusInProgress, AudienceNone},
		{"성공: progress can go down", State{domain.ScopePhase, domain.StatusInProgress, 80}, worker, 30, domain.StatusInProgress, AudienceNone},
		{"성공: 100 waits for approval", State{domain.ScopeTask, domain.StatusInProgress, 40}, worker, 100, domain.StatusWaitingForApproval, AudienceAdmins},
		{"성공: admin at 100 still waits", State{domain.ScopePhase, domain.StatusInProgress, 10}, admin, 100, domain.StatusWaitingForApproval, AudienceAdmins},
		{"성공: straight from not started to 100", State{domain.ScopeTask, domain.StatusNotStarted, 0}, worker, 100, domain.StatusWaitingForApproval, AudienceAdmins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Apply(tt.current, tt.actor, Action{Kind: ActionSubmit, Progress: tt.progress, Note: " note "})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.progress, out.Progress)
			assert.Equal(t, tt.current.Progress, out.PreviousProgress)
			assert.True(t, out.AppendRecord)
			assert.Equal(t, "note", out.RecordNote)
			assert.False(t, out.StampApproval)
			assert.Equal(t, tt.wantAudience, out.Audience)
		})
	}
}

func TestApply_SubmitErrors(t *testing.T) {
	t.Run("실패: progress below range", func(t *testing.T) {
		_, err := Apply(State{domain.ScopeTask, domain.StatusInProgress, 10}, worker, Action{Kind: ActionSubmit, Progress: -1})
		assertCode(t, err, response.ErrCodeValidation)
	})

	t.Run("실패: progress above range", func(t *testing.T) {
		_, err := Apply(State{domain.ScopeTask, domain.StatusInProgress, 10}, worker, Action{Kind: ActionSubmit, Progress: 101})
		assertCode(t, err, response.ErrCodeValidation)
	})

	t.Run("실패: waiting for approval", func(t *testing.T) {
		_, err := Apply(State{domain.ScopeTask, domain.StatusWaitingForApproval, 100}, worker, Action{Kind: ActionSubmit, Progress: 50})
		assertCode(t, err, response.ErrCodeInvalidTransition)
	})

	t.Run("실패: completed is terminal", func(t *testing.T) {
		_, err := Apply(State{domain.ScopePhase, domain.StatusCompleted, 100}, admin, Action{Kind: ActionSubmit, Progress: 50})
		assertCode(t, err, response.ErrCodeInvalidTransition)
	})
}

func TestApply_Approve(t *testing.T) {
	t.Run("성공: waiting to completed", func(t *testing.T) {
		out, err := Apply(State{domain.ScopeTask, domain.StatusWaitingForApproval, 100}, admin, Action{Kind: ActionApprove})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, out.Status)
		assert.Equal(t, 100, out.Progress)
		assert.True(t, out.StampApproval)
		assert.False(t, out.AppendRecord)
		assert.Equal(t, AudienceAssignees, out.Audience)
	})

	t.Run("실패: non-admin", func(t *testing.T) {
		_, err := Apply(State{domain.ScopeTask, domain.StatusWaitingForApproval, 100}, worker, Action{Kind: ActionApprove})
		assertCode(t, err, response.ErrCodeForbidden)
	})

	for _, status := range []domain.WorkStatus{domain.StatusNotStarted, domain.StatusInProgress, domain.StatusCompleted} {
		t.Run("실패: from "+string(status), func(t *testing.T) {
			_, err := Apply(State{domain.ScopePhase, status, 50}, admin, Action{Kind: ActionApprove})
			assertCode(t, err, response.ErrCodeInvalidTransition)
		})
	}
}

func TestApply_Reject(t *testing.T) {
	t.Run("성공: task keeps progress", func(t *testing.T) {
		out, err := Apply(State{domain.ScopeTask, domain.StatusWaitingForApproval, 100}, admin, Action{Kind: ActionReject, Note: "redo grouting"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, out.Status)
		assert.Equal(t, 100, out.Progress)
		assert.True(t, out.AppendRecord)
		assert.Equal(t, "redo grouting", out.RecordNote)
		assert.Equal(t, AudienceAssignees, out.Audience)
	})

	t.Run("성공: phase resets to zero", func(t *testing.T) {
		out, err := Apply(State{domain.ScopePhase, domain.StatusWaitingForApproval, 100}, admin, Action{Kind: ActionReject, Note: "walls uneven"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, out.Status)
		assert.Equal(t, 0, out.Progress)
		assert.Equal(t, 100, out.PreviousProgress)
	})

	t.Run("실패: blank reason", func(t *testing.T) {
		_, err := Apply(State{domain.ScopeTask, domain.StatusWaitingForApproval, 100}, admin, Action{Kind: ActionReject, Note: "   "})
		assertCode(t, err, response.ErrCodeValidation)
	})

	t.Run("실패: non-admin", func(t *testing.T) {
		_, err := Apply(State{domain.ScopeTask, domain.StatusWaitingForApproval, 100}, worker, Action{Kind: ActionReject, Note: "x"})
		assertCode(t, err, response.ErrCodeForbidden)
	})

	t.Run("실패: not waiting", func(t *testing.T) {
		_, err := Apply(State{domain.ScopeTask, domain.StatusInProgress, 30}, admin, Action{Kind: ActionReject, Note: "x"})
		assertCode(t, err, response.ErrCodeInvalidTransition)
	})
}

func TestApply_UnknownAction(t *testing.T) {
	_, err := Apply(State{domain.ScopeTask, domain.StatusInProgress, 30}, admin, Action{Kind: "archive"})
	assertCode(t, err, response.ErrCodeValidation)
}

// Scenarios A through D run against a single task held in memory.
func TestApply_TaskLifecycleScenarios(t *testing.T) {
	task := State{Scope: domain.ScopeTask, Status: domain.StatusNotStarted, Progress: 0}

	apply := func(s State, a Actor, act Action) State {
		out, err := Apply(s, a, act)
		require.NoError(t, err)
		return State{Scope: s.Scope, Status: out.Status, Progress: out.Progress}
	}

	// A
	out, err := Apply(task, worker, Action{Kind: ActionSubmit, Progress: 40, Note: "half done"})
	require.NoError(t, err)
	assert.Equal(t, 0, out.PreviousProgress)
	assert.Equal(t, 40, out.Progress)
	task = State{Scope: task.Scope, Status: out.Status, Progress: out.Progress}
	assert.Equal(t, domain.StatusInProgress, task.Status)

	// B
	out, err = Apply(task, worker, Action{Kind: ActionSubmit, Progress: 100, Note: "finished"})
	require.NoError(t, err)
	assert.Equal(t, 40, out.PreviousProgress)
	assert.Equal(t, AudienceAdmins, out.Audience)
	waiting := State{Scope: task.Scope, Status: out.Status, Progress: out.Progress}
	assert.Equal(t, domain.StatusWaitingForApproval, waiting.Status)

	// C
	done := apply(waiting, admin, Action{Kind: ActionApprove})
	assert.Equal(t, domain.StatusCompleted, done.Status)

	// D
	rejected := apply(waiting, admin, Action{Kind: ActionReject, Note: "redo grouting"})
	assert.Equal(t, domain.StatusInProgress, rejected.Status)
	again := apply(rejected, worker, Action{Kind: ActionSubmit, Progress: 90})
	assert.Equal(t, domain.StatusInProgress, again.Status)
	assert.Equal(t, 90, again.Progress)
}
