package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

// TodoService manages checklists on tasks and phases.
// Anyone allowed to drive the scope through the workflow may edit its checklist.
type TodoService interface {
	ListTodos(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID) ([]dto.TodoResponse, error)
	CreateTodo(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, scopeID uuid.UUID, req *dto.CreateTodoRequest) (*dto.TodoResponse, error)
	UpdateTodo(ctx context.Context, actor workflow.Actor, todoID uuid.UUID, req *dto.UpdateTodoRequest) (*dto.TodoResponse, error)
	DeleteTodo(ctx context.Context, actor workflow.Actor, todoID uuid.UUID) error
}

type todoServiceImpl struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewTodoService(repos *repository.Repositories, logger *zap.Logger) TodoService {
	return &todoServiceImpl{repos: repos, logger: loggerOrNop(logger)}
}

func (s *todoServiceImpl) ListTodos(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID) ([]dto.TodoResponse, error) {
	if _, err := loadScope(ctx, s.repos, scope, scopeID); err != nil {
		return nil, err
	}

	todos, err := s.repos.Todos.ListByScope(ctx, scope, scopeID)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list todos", err)
	}

	result := make([]dto.TodoResponse, 0, len(todos))
	for _, t := range todos {
		result = append(result, toTodoResponse(t))
	}
	return result, nil
}

func (s *todoServiceImpl) CreateTodo(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, scopeID uuid.UUID, req *dto.CreateTodoRequest) (*dto.TodoResponse, error) {
	if err := s.authorize(ctx, actor, scope, scopeID); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, response.NewValidationError("Invalid request body", "")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, response.NewValidationError("Todo content is required", "")
	}
	if err := validateRequest(&dto.CreateTodoRequest{Content: content}); err != nil {
		return nil, err
	}

	authorID := actor.ID
	todo := &domain.Todo{
		ScopeType: scope,
		ScopeID:   scopeID,
		Content:   content,
		AuthorID:  &authorID,
	}
	if err := s.repos.Todos.Create(ctx, todo); err != nil {
		return nil, response.NewPersistenceError("Failed to create todo", err)
	}

	resp := toTodoResponse(todo)
	return &resp, nil
}

func (s *todoServiceImpl) UpdateTodo(ctx context.Context, actor workflow.Actor, todoID uuid.UUID, req *dto.UpdateTodoRequest) (*dto.TodoResponse, error) {
	todo, err := s.repos.Todos.FindByID(ctx, todoID)
	if err != nil {
		return nil, lookupError(err, "Todo")
	}
	if err := s.authorize(ctx, actor, todo.ScopeType, todo.ScopeID); err != nil {
		return nil, err
	}
	if req == nil || req.Completed == nil {
		return nil, response.NewValidationError("completed is required", "")
	}

	if err := s.repos.Todos.SetCompleted(ctx, todoID, *req.Completed); err != nil {
		return nil, lookupError(err, "Todo")
	}
	todo.Completed = *req.Completed
	todo.UpdatedAt = nowUTC()

	resp := toTodoResponse(todo)
	return &resp, nil
}

func (s *todoServiceImpl) DeleteTodo(ctx context.Context, actor workflow.Actor, todoID uuid.UUID) error {
	todo, err := s.repos.Todos.FindByID(ctx, todoID)
	if err != nil {
		return lookupError(err, "Todo")
	}
	if err := s.authorize(ctx, actor, todo.ScopeType, todo.ScopeID); err != nil {
		return err
	}
	if err := s.repos.Todos.Delete(ctx, todoID); err != nil {
		return lookupError(err, "Todo")
	}
	return nil
}

func (s *todoServiceImpl) authorize(ctx context.Context, actor workflow.Actor, scope domain.ScopeType, scopeID uuid.UUID) error {
	snap, err := loadScope(ctx, s.repos, scope, scopeID)
	if err != nil {
		return err
	}
	if !workflow.CanDrive(actor, snap.target) {
		return response.NewForbiddenError("You are not assigned to this "+strings.ToLower(string(scope)), "")
	}
	return nil
}
