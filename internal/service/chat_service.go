package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/realtime"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

// ChatService handles the conversation shared by a phase and its tasks
type ChatService interface {
	PostMessage(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, scopeID uuid.UUID, req *dto.CreateMessageRequest) (*dto.MessageResponse, error)
	// ListConversation returns the merged phase conversation the scope belongs to, oldest first
	ListConversation(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID, query *dto.MessageQuery) ([]dto.MessageResponse, error)
	// ConversationPhase resolves the phase whose room carries the scope's messages
	ConversationPhase(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID) (uuid.UUID, error)
	CanJoin(ctx context.Context, actor workflow.Actor, phaseID uuid.UUID) error
}

type chatServiceImpl struct {
	repos      *repository.Repositories
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewChatService creates a new instance of ChatService
func NewChatService(repos *repository.Repositories, dispatcher *Dispatcher, m *metrics.Metrics, logger *zap.Logger) ChatService {
	return &chatServiceImpl{
		repos:      repos,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     loggerOrNop(logger),
	}
}

func parseMessageType(raw string) (domain.MessageType, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.MessageTypeText, nil
	}
	t := domain.MessageType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.IsValid() {
		return "", response.NewValidationError("Invalid message type", raw)
	}
	return t, nil
}

// checkMessage validates a message body for actor; system messages are admin-only
func checkMessage(actor workflow.Actor, req *dto.CreateMessageRequest) (domain.MessageType, string, *string, error) {
	if req == nil {
		return "", "", nil, response.NewValidationError("Invalid request body", "")
	}
	msgType, err := parseMessageType(req.Type)
	if err != nil {
		return "", "", nil, err
	}
	if msgType == domain.MessageTypeSystem && !actor.IsAdmin() {
		return "", "", nil, response.NewForbiddenError("Only admins can post system messages", "")
	}

	content := strings.TrimSpace(req.Content)
	mediaURL := trimmedURL(req.MediaURL)
	if err := validateRequest(&dto.CreateMessageRequest{Type: req.Type, Content: content, MediaURL: mediaURL}); err != nil {
		return "", "", nil, err
	}
	if msgType.RequiresMedia() && mediaURL == nil {
		return "", "", nil, response.NewValidationError("mediaUrl is required for "+string(msgType)+" messages", "")
	}
	if !msgType.RequiresMedia() && content == "" {
		return "", "", nil, response.NewValidationError("Message content is required", "")
	}
	return msgType, content, mediaURL, nil
}

// PostMessage appends a message and notifies every other participant of the conversation.
// The body is only checked once the actor has passed the gate.
func (s *chatServiceImpl) PostMessage(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, scopeID uuid.UUID, req *dto.CreateMessageRequest) (*dto.MessageResponse, error) {
	var (
		snap    *scopeSnapshot
		message *domain.Message
		stored  []domain.Notification
		drafts  []workflow.NotificationDraft
	)

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		snap, err = loadScope(ctx, tx, scope, scopeID)
		if err != nil {
			return err
		}
		if !workflow.CanDrive(actor, snap.target) {
			return response.NewForbiddenError("You are not part of this conversation", "")
		}

		msgType, content, mediaURL, err := checkMessage(actor, req)
		if err != nil {
			return err
		}

		message = &domain.Message{
			ScopeType: scope,
			ScopeID:   scopeID,
			SenderID:  actor.ID,
			Type:      msgType,
			Content:   content,
			MediaURL:  mediaURL,
		}
		if err := tx.Messages.Create(ctx, message); err != nil {
			return response.NewPersistenceError("Failed to save message", err)
		}
		if mediaURL != nil {
			if _, err := tx.Attachments.ConfirmByURLs(ctx, []string{*mediaURL}, scopeID); err != nil {
				return response.NewPersistenceError("Failed to confirm attachment", err)
			}
		}

		phaseID := snap.phaseID
		ev := workflow.Event{
			Kind:      workflow.EventChatMessage,
			Scope:     scope,
			ScopeName: snap.name,
			ActorID:   actor.ID,
			SiteID:    snap.siteID,
			PhaseID:   &phaseID,
			TaskID:    snap.taskID,
		}
		stored, drafts = storeNotifications(ctx, tx, ev, s.participants(snap.phaseID), map[string]interface{}{
			"scopeType": string(scope),
			"scopeId":   scopeID.String(),
			"messageId": message.ID.String(),
		}, s.metrics, s.logger)
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to post message")
	}

	resp := toMessageResponse(message)
	s.dispatcher.Dispatch(Delivery{
		ActorID:       actor.ID,
		Notifications: stored,
		Drafts:        drafts,
		Room:          &RoomEvent{PhaseID: snap.phaseID, Type: realtime.EventChatMessage, Data: resp},
	})

	s.logger.Debug("Message posted",
		zap.String("message_id", message.ID.String()),
		zap.String("phase_id", snap.phaseID.String()),
		zap.Int("recipients", len(drafts)))
	return &resp, nil
}

// participants is everyone attached to the phase conversation: the phase assignee,
// every task assignee and anyone who has posted in it. Inactive employees are dropped.
func (s *chatServiceImpl) participants(phaseID uuid.UUID) recipientResolver {
	return func(ctx context.Context, tx *repository.Repositories) ([]uuid.UUID, error) {
		phase, err := tx.Phases.FindByID(ctx, phaseID)
		if err != nil {
			return nil, err
		}
		var ids []uuid.UUID
		if phase.AssignedTo != nil {
			ids = append(ids, *phase.AssignedTo)
		}

		assignees, err := tx.Phases.TaskAssigneeIDs(ctx, phaseID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, assignees...)

		tasks, err := tx.Tasks.FindByPhaseID(ctx, phaseID)
		if err != nil {
			return nil, err
		}
		phaseSenders, err := tx.Messages.SenderIDs(ctx, domain.ScopePhase, []uuid.UUID{phaseID})
		if err != nil {
			return nil, err
		}
		taskSenders, err := tx.Messages.SenderIDs(ctx, domain.ScopeTask, taskIDs(tasks))
		if err != nil {
			return nil, err
		}
		ids = append(ids, phaseSenders...)
		ids = append(ids, taskSenders...)

		ids = removeDuplicateUUIDs(ids)
		if len(ids) == 0 {
			return nil, nil
		}
		return tx.Employees.ActiveIDs(ctx, ids)
	}
}

func (s *chatServiceImpl) ListConversation(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID, query *dto.MessageQuery) ([]dto.MessageResponse, error) {
	phaseID, err := s.ConversationPhase(ctx, scope, scopeID)
	if err != nil {
		return nil, err
	}

	limit := defaultMessageLimit
	var before *time.Time
	if query != nil {
		before = query.Before
		if query.Limit > 0 {
			limit = query.Limit
		}
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	tasks, err := s.repos.Tasks.FindByPhaseID(ctx, phaseID)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to load tasks", err)
	}

	messages, err := s.repos.Messages.ListConversation(ctx, phaseID, taskIDs(tasks), before, limit)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list messages", err)
	}

	result := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		result = append(result, toMessageResponse(m))
	}
	return result, nil
}

func (s *chatServiceImpl) ConversationPhase(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID) (uuid.UUID, error) {
	switch scope {
	case domain.ScopePhase:
		phase, err := s.repos.Phases.FindByID(ctx, scopeID)
		if err != nil {
			return uuid.Nil, lookupError(err, "Phase")
		}
		return phase.ID, nil
	case domain.ScopeTask:
		task, err := s.repos.Tasks.FindByID(ctx, scopeID)
		if err != nil {
			return uuid.Nil, lookupError(err, "Task")
		}
		return task.PhaseID, nil
	}
	return uuid.Nil, response.NewValidationError("Unknown scope type", string(scope))
}

// CanJoin applies the phase gate to the live room
func (s *chatServiceImpl) CanJoin(ctx context.Context, actor workflow.Actor, phaseID uuid.UUID) error {
	snap, err := loadScope(ctx, s.repos, domain.ScopePhase, phaseID)
	if err != nil {
		return err
	}
	if !workflow.CanDrive(actor, snap.target) {
		return response.NewForbiddenError("You are not part of this conversation", "")
	}
	return nil
}

func taskIDs(tasks []*domain.Task) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
