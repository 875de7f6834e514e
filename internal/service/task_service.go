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
)

// TaskService defines the interface for task business logic
type TaskService interface {
	CreateTask(ctx context.Context, phaseID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetTask(ctx context.Context, taskID uuid.UUID) (*dto.TaskResponse, error)
	ListTasks(ctx context.Context, phaseID uuid.UUID) ([]dto.TaskResponse, error)
	ListAssignedTasks(ctx context.Context, employeeID uuid.UUID) ([]dto.TaskResponse, error)
	UpdateTask(ctx context.Context, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, taskID uuid.UUID) error
	AssignEmployee(ctx context.Context, taskID, employeeID uuid.UUID) (*dto.TaskResponse, error)
	UnassignEmployee(ctx context.Context, taskID, employeeID uuid.UUID) (*dto.TaskResponse, error)
}

type taskServiceImpl struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewTaskService creates a new instance of TaskService
func NewTaskService(repos *repository.Repositories, logger *zap.Logger) TaskService {
	return &taskServiceImpl{repos: repos, logger: loggerOrNop(logger)}
}

// CreateTask adds a task to a phase. The task's site is always the phase's site.
func (s *taskServiceImpl) CreateTask(ctx context.Context, phaseID uuid.UUID, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := validateDateRange(req.StartDate, req.DueDate); err != nil {
		return nil, err
	}

	phase, err := s.repos.Phases.FindByID(ctx, phaseID)
	if err != nil {
		return nil, lookupError(err, "Phase")
	}

	assignees := removeDuplicateUUIDs(req.AssigneeIDs)
	if len(assignees) > 0 {
		active, err := s.repos.Employees.ActiveIDs(ctx, assignees)
		if err != nil {
			return nil, response.NewPersistenceError("Failed to verify assignees", err)
		}
		if len(active) != len(assignees) {
			return nil, response.NewValidationError("Assignees must be existing active employees", "")
		}
	}

	task := &domain.Task{
		SiteID:    phase.SiteID,
		PhaseID:   phase.ID,
		Name:      strings.TrimSpace(req.Name),
		Status:    domain.StatusNotStarted,
		Amount:    req.Amount,
		StartDate: req.StartDate,
		DueDate:   req.DueDate,
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Tasks.Create(ctx, task); err != nil {
			return response.NewPersistenceError("Failed to create task", err)
		}
		for _, employeeID := range assignees {
			if err := tx.Tasks.AddAssignment(ctx, &domain.TaskAssignment{TaskID: task.ID, EmployeeID: employeeID}); err != nil {
				return response.NewPersistenceError("Failed to assign employee", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to create task")
	}

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("phase_id", phaseID.String()),
		zap.Int("assignees", len(assignees)))

	return s.GetTask(ctx, task.ID)
}

func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*dto.TaskResponse, error) {
	task, err := s.repos.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, lookupError(err, "Task")
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, phaseID uuid.UUID) ([]dto.TaskResponse, error) {
	if _, err := s.repos.Phases.FindByID(ctx, phaseID); err != nil {
		return nil, lookupError(err, "Phase")
	}

	tasks, err := s.repos.Tasks.FindByPhaseID(ctx, phaseID)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list tasks", err)
	}
	return toTaskResponses(tasks), nil
}

// ListAssignedTasks returns the tasks an employee is assigned to, soonest due first
func (s *taskServiceImpl) ListAssignedTasks(ctx context.Context, employeeID uuid.UUID) ([]dto.TaskResponse, error) {
	tasks, err := s.repos.Tasks.FindByAssignee(ctx, employeeID)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list assigned tasks", err)
	}
	return toTaskResponses(tasks), nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.repos.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, lookupError(err, "Task")
	}

	if req.Name != nil {
		task.Name = strings.TrimSpace(*req.Name)
	}
	if req.Amount != nil {
		task.Amount = *req.Amount
	}
	if req.StartDate != nil {
		task.StartDate = req.StartDate
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if err := validateDateRange(task.StartDate, task.DueDate); err != nil {
		return nil, err
	}

	task.UpdatedAt = nowUTC()
	if err := s.repos.Tasks.UpdateDetails(ctx, task); err != nil {
		return nil, response.NewPersistenceError("Failed to update task", err)
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	if err := s.repos.Tasks.Delete(ctx, taskID); err != nil {
		return lookupError(err, "Task")
	}
	s.logger.Info("Task deleted", zap.String("task_id", taskID.String()))
	return nil
}

// AssignEmployee is idempotent for an employee already on the task
func (s *taskServiceImpl) AssignEmployee(ctx context.Context, taskID, employeeID uuid.UUID) (*dto.TaskResponse, error) {
	if _, err := s.repos.Tasks.FindByID(ctx, taskID); err != nil {
		return nil, lookupError(err, "Task")
	}
	if err := ensureActiveEmployee(ctx, s.repos.Employees, employeeID); err != nil {
		return nil, err
	}

	if err := s.repos.Tasks.AddAssignment(ctx, &domain.TaskAssignment{TaskID: taskID, EmployeeID: employeeID}); err != nil {
		return nil, response.NewPersistenceError("Failed to assign employee", err)
	}

	s.logger.Info("Employee assigned to task",
		zap.String("task_id", taskID.String()),
		zap.String("employee_id", employeeID.String()))
	return s.GetTask(ctx, taskID)
}

func (s *taskServiceImpl) UnassignEmployee(ctx context.Context, taskID, employeeID uuid.UUID) (*dto.TaskResponse, error) {
	if _, err := s.repos.Tasks.FindByID(ctx, taskID); err != nil {
		return nil, lookupError(err, "Task")
	}
	if err := s.repos.Tasks.RemoveAssignment(ctx, taskID, employeeID); err != nil {
		return nil, lookupError(err, "Assignment")
	}
	return s.GetTask(ctx, taskID)
}

func toTaskResponses(tasks []*domain.Task) []dto.TaskResponse {
	result := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, toTaskResponse(t))
	}
	return result
}
