package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/queue"
	"site-tracker-api/internal/realtime"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

// WorkflowService drives tasks and phases through submit, approve and reject
type WorkflowService interface {
	SubmitProgress(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, id uuid.UUID, req *dto.SubmitProgressRequest) (*dto.TransitionResponse, error)
	Approve(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, id uuid.UUID) (*dto.TransitionResponse, error)
	Reject(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, id uuid.UUID, req *dto.RejectRequest) (*dto.TransitionResponse, error)
	ListUpdates(ctx context.Context, scope domain.ScopeType, id uuid.UUID, collapse bool, limit int) ([]dto.ProgressUpdateResponse, error)
}

type workflowServiceImpl struct {
	repos      *repository.Repositories
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewWorkflowService creates a new instance of WorkflowService
func NewWorkflowService(repos *repository.Repositories, dispatcher *Dispatcher, m *metrics.Metrics, logger *zap.Logger) WorkflowService {
	return &workflowServiceImpl{
		repos:      repos,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     loggerOrNop(logger),
	}
}

// scopeSnapshot is a task or phase as seen at the start of a transition
type scopeSnapshot struct {
	scope    domain.ScopeType
	id       uuid.UUID
	name     string
	siteID   uuid.UUID
	phaseID  uuid.UUID
	taskID   *uuid.UUID
	status   domain.WorkStatus
	progress int
	target   workflow.Target
}

// loadScope reads a task or phase together with everyone the assignment gate considers
func loadScope(ctx context.Context, repos *repository.Repositories, scope domain.ScopeType, id uuid.UUID) (*scopeSnapshot, error) {
	switch scope {
	case domain.ScopeTask:
		task, err := repos.Tasks.FindByID(ctx, id)
		if err != nil {
			return nil, lookupError(err, "Task")
		}
		assignees := make([]uuid.UUID, 0, len(task.Assignments))
		for _, a := range task.Assignments {
			assignees = append(assignees, a.EmployeeID)
		}
		taskID := task.ID
		return &scopeSnapshot{
			scope:    scope,
			id:       task.ID,
			name:     task.Name,
			siteID:   task.SiteID,
			phaseID:  task.PhaseID,
			taskID:   &taskID,
			status:   task.Status,
			progress: task.Progress,
			target:   workflow.Target{Scope: scope, Assignees: assignees},
		}, nil

	case domain.ScopePhase:
		phase, err := repos.Phases.FindByID(ctx, id)
		if err != nil {
			return nil, lookupError(err, "Phase")
		}
		taskAssignees, err := repos.Phases.TaskAssigneeIDs(ctx, id)
		if err != nil {
			return nil, response.NewPersistenceError("Failed to load phase assignees", err)
		}
		return &scopeSnapshot{
			scope:    scope,
			id:       phase.ID,
			name:     phase.Name,
			siteID:   phase.SiteID,
			phaseID:  phase.ID,
			status:   phase.Status,
			progress: phase.Progress,
			target:   workflow.Target{Scope: scope, AssignedTo: phase.AssignedTo, Assignees: taskAssignees},
		}, nil
	}
	return nil, response.NewValidationError("Unknown scope type", string(scope))
}

func (s *workflowServiceImpl) SubmitProgress(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, id uuid.UUID, req *dto.SubmitProgressRequest) (*dto.TransitionResponse, error) {
	var in dto.SubmitProgressRequest
	if req != nil {
		in = dto.SubmitProgressRequest{
			Progress: req.Progress,
			Note:     req.Note,
			ImageURL: trimmedURL(req.ImageURL),
			AudioURL: trimmedURL(req.AudioURL),
		}
	}
	check := func() error {
		if req == nil {
			return response.NewValidationError("Invalid request body", "")
		}
		return validateRequest(&in)
	}

	action := workflow.Action{Kind: workflow.ActionSubmit, Note: in.Note}
	if in.Progress != nil {
		action.Progress = *in.Progress
	}
	return s.transition(ctx, actor, scope, id, action, check, in.ImageURL, in.AudioURL)
}

func (s *workflowServiceImpl) Approve(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.transition(ctx, actor, scope, id, workflow.Action{Kind: workflow.ActionApprove}, nil, nil, nil)
}

func (s *workflowServiceImpl) Reject(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, id uuid.UUID, req *dto.RejectRequest) (*dto.TransitionResponse, error) {
	reason := ""
	if req != nil {
		reason = req.Reason
	}
	return s.transition(ctx, actor, scope, id, workflow.Action{Kind: workflow.ActionReject, Note: reason}, nil, nil, nil)
}

// transition applies one workflow action in a single transaction:
// gate, request check, state machine, compare-and-set of the scope row,
// progress record, then notification rows in a savepoint. Side effects run after commit.
// check may be nil; it only runs for actors who passed the gate.
func (s *workflowServiceImpl) transition(
	ctx context.Context,
	actor workflow.Actor,
	scope domain.ScopeType,
	id uuid.UUID,
	action workflow.Action,
	check func() error,
	imageURL, audioURL *string,
) (*dto.TransitionResponse, error) {
	var (
		snap     *scopeSnapshot
		out      workflow.Outcome
		stored   []domain.Notification
		drafts   []workflow.NotificationDraft
		occurred = nowUTC()
	)

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		snap, err = loadScope(ctx, tx, scope, id)
		if err != nil {
			return err
		}

		if !workflow.CanDrive(actor, snap.target) {
			return response.NewForbiddenError("You are not assigned to this "+strings.ToLower(string(scope)), "")
		}
		if check != nil {
			if err := check(); err != nil {
				return err
			}
		}

		out, err = workflow.Apply(workflow.State{Scope: scope, Status: snap.status, Progress: snap.progress}, actor, action)
		if err != nil {
			return err
		}

		if err := s.compareAndSet(ctx, tx, snap, actor, out, occurred); err != nil {
			return err
		}

		if out.AppendRecord {
			record := &domain.ProgressUpdate{
				ScopeType:        scope,
				ScopeID:          id,
				PreviousProgress: out.PreviousProgress,
				NewProgress:      out.Progress,
				Note:             out.RecordNote,
				ImageURL:         imageURL,
				AudioURL:         audioURL,
				AuthorID:         actor.ID,
				CreatedAt:        occurred,
			}
			if err := tx.Updates.Create(ctx, record); err != nil {
				return response.NewPersistenceError("Failed to record progress", err)
			}
			if err := s.confirmAttachments(ctx, tx, id, imageURL, audioURL); err != nil {
				return err
			}
		}

		if kind, ok := workflow.EventFor(action.Kind, out); ok {
			stored, drafts = storeNotifications(ctx, tx, s.event(kind, snap, actor, out), s.resolver(out.Audience, snap), map[string]interface{}{
				"scopeType": string(scope),
				"scopeId":   id.String(),
				"action":    string(action.Kind),
				"status":    string(out.Status),
				"progress":  out.Progress,
			}, s.metrics, s.logger)
		}
		return nil
	})
	if err != nil {
		s.recordRefusal(scope, action.Kind, err)
		return nil, asAppError(err, "Failed to apply workflow action")
	}

	if s.metrics != nil {
		s.metrics.RecordTransition(strings.ToLower(string(scope)), string(action.Kind), string(out.Status))
	}
	s.logger.Info("Workflow transition applied",
		zap.String("scope", string(scope)),
		zap.String("scope_id", id.String()),
		zap.String("action", string(action.Kind)),
		zap.String("from", string(snap.status)),
		zap.String("to", string(out.Status)),
		zap.Int("progress", out.Progress),
		zap.String("actor_id", actor.ID.String()))

	s.dispatch(ctx, snap, actor, action, out, stored, drafts, occurred)

	return &dto.TransitionResponse{
		ID:          id,
		Status:      string(out.Status),
		StatusLabel: out.Status.Label(),
		Progress:    out.Progress,
	}, nil
}

func (s *workflowServiceImpl) compareAndSet(ctx context.Context, tx *repository.Repositories, snap *scopeSnapshot, actor workflow.Actor, out workflow.Outcome, at time.Time) error {
	updates := map[string]interface{}{
		"status":     out.Status,
		"progress":   out.Progress,
		"updated_at": at,
	}

	var (
		ok  bool
		err error
	)
	switch snap.scope {
	case domain.ScopeTask:
		if out.StampApproval {
			updates["completed_by"] = actor.ID
			updates["completed_at"] = at
		}
		ok, err = tx.Tasks.CompareAndSetState(ctx, snap.id, snap.status, snap.progress, updates)
	case domain.ScopePhase:
		if out.StampApproval {
			updates["approved_by"] = actor.ID
			updates["approved_at"] = at
		}
		ok, err = tx.Phases.CompareAndSetState(ctx, snap.id, snap.status, snap.progress, updates)
	}
	if err != nil {
		return response.NewPersistenceError("Failed to update workflow state", err)
	}
	if !ok {
		return response.NewInvalidTransitionError("The item was modified concurrently; reload and try again", string(snap.status))
	}
	return nil
}

// confirmAttachments marks uploads referenced by a progress record as permanent.
// URLs that were not uploaded through this service are stored as given.
func (s *workflowServiceImpl) confirmAttachments(ctx context.Context, tx *repository.Repositories, scopeID uuid.UUID, urls ...*string) error {
	var list []string
	for _, u := range urls {
		if u != nil {
			list = append(list, *u)
		}
	}
	if len(list) == 0 {
		return nil
	}
	if _, err := tx.Attachments.ConfirmByURLs(ctx, list, scopeID); err != nil {
		return response.NewPersistenceError("Failed to confirm attachments", err)
	}
	return nil
}

func (s *workflowServiceImpl) event(kind workflow.EventKind, snap *scopeSnapshot, actor workflow.Actor, out workflow.Outcome) workflow.Event {
	phaseID := snap.phaseID
	return workflow.Event{
		Kind:      kind,
		Scope:     snap.scope,
		ScopeName: snap.name,
		ActorID:   actor.ID,
		SiteID:    snap.siteID,
		PhaseID:   &phaseID,
		TaskID:    snap.taskID,
		Note:      out.RecordNote,
	}
}

func (s *workflowServiceImpl) resolver(audience workflow.Audience, snap *scopeSnapshot) recipientResolver {
	return func(ctx context.Context, tx *repository.Repositories) ([]uuid.UUID, error) {
		switch audience {
		case workflow.AudienceAdmins:
			return tx.Employees.ActiveAdminIDs(ctx)
		case workflow.AudienceAssignees:
			var ids []uuid.UUID
			if snap.scope == domain.ScopePhase {
				if snap.target.AssignedTo != nil {
					ids = append(ids, *snap.target.AssignedTo)
				}
			} else {
				ids = snap.target.Assignees
			}
			if len(ids) == 0 {
				return nil, nil
			}
			return tx.Employees.ActiveIDs(ctx, ids)
		}
		return nil, nil
	}
}

func (s *workflowServiceImpl) dispatch(
	ctx context.Context,
	snap *scopeSnapshot,
	actor workflow.Actor,
	action workflow.Action,
	out workflow.Outcome,
	stored []domain.Notification,
	drafts []workflow.NotificationDraft,
	occurred time.Time,
) {
	phaseID := snap.phaseID
	ev := &queue.TransitionEvent{
		EventID:          uuid.New(),
		ScopeType:        string(snap.scope),
		ScopeID:          snap.id,
		SiteID:           snap.siteID,
		PhaseID:          &phaseID,
		Action:           string(action.Kind),
		FromStatus:       string(snap.status),
		ToStatus:         string(out.Status),
		PreviousProgress: out.PreviousProgress,
		Progress:         out.Progress,
		ActorID:          actor.ID,
		OccurredAt:       occurred,
	}

	roomType := realtime.EventStatus
	if action.Kind == workflow.ActionSubmit && out.Status == snap.status {
		roomType = realtime.EventProgress
	}
	roomData := map[string]interface{}{
		"scopeType": string(snap.scope),
		"scopeId":   snap.id,
		"status":    string(out.Status),
		"progress":  out.Progress,
	}
	if snap.scope == domain.ScopeTask {
		// tasks move the phase's derived progress
		statuses, err := s.repos.Phases.TaskStatuses(ctx, []uuid.UUID{snap.phaseID})
		if err == nil {
			roomData["phaseProgress"] = workflow.DerivePhaseProgress(statuses[snap.phaseID])
		}
	}

	s.dispatcher.Dispatch(Delivery{
		ActorID:       actor.ID,
		Notifications: stored,
		Drafts:        drafts,
		Transition:    ev,
		Room:          &RoomEvent{PhaseID: snap.phaseID, Type: roomType, Data: roomData},
	})
}

func (s *workflowServiceImpl) recordRefusal(scope domain.ScopeType, kind workflow.ActionKind, err error) {
	if s.metrics == nil {
		return
	}
	code := response.ErrCodeInternal
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	s.metrics.RecordRefusal(strings.ToLower(string(scope)), string(kind), code)
}

// ListUpdates returns the history in insertion order. A positive limit keeps only
// the latest limit records; collapsing applies after the limit.
func (s *workflowServiceImpl) ListUpdates(ctx context.Context, scope domain.ScopeType, id uuid.UUID, collapse bool, limit int) ([]dto.ProgressUpdateResponse, error) {
	if limit < 0 {
		return nil, response.NewValidationError("limit must not be negative", "")
	}
	if _, err := loadScope(ctx, s.repos, scope, id); err != nil {
		return nil, err
	}

	var (
		updates []*domain.ProgressUpdate
		err     error
	)
	if limit > 0 {
		updates, err = s.repos.Updates.LatestByScope(ctx, scope, id, limit)
	} else {
		updates, err = s.repos.Updates.ListByScope(ctx, scope, id)
	}
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list progress updates", err)
	}
	if collapse {
		updates = CollapseConsecutive(updates)
	}

	result := make([]dto.ProgressUpdateResponse, 0, len(updates))
	for _, u := range updates {
		result = append(result, toProgressUpdateResponse(u))
	}
	return result, nil
}

// CollapseConsecutive hides records that repeat the one directly before them
// (same author, progress change, note and attachments). Stored rows are untouched.
func CollapseConsecutive(updates []*domain.ProgressUpdate) []*domain.ProgressUpdate {
	out := make([]*domain.ProgressUpdate, 0, len(updates))
	for _, u := range updates {
		if n := len(out); n > 0 && sameUpdate(out[n-1], u) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func sameUpdate(a, b *domain.ProgressUpdate) bool {
	return a.AuthorID == b.AuthorID &&
		a.PreviousProgress == b.PreviousProgress &&
		a.NewProgress == b.NewProgress &&
		a.Note == b.Note &&
		equalStringPtr(a.ImageURL, b.ImageURL) &&
		equalStringPtr(a.AudioURL, b.AudioURL)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func trimmedURL(u *string) *string {
	if u == nil {
		return nil
	}
	v := strings.TrimSpace(*u)
	if v == "" {
		return nil
	}
	return &v
}
