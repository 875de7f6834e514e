package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

func newPhaseService(s *site) PhaseService {
	return NewPhaseService(s.repos.Sites, s.repos.Phases, s.repos.Employees, nil)
}

func TestPhaseService_CreatePhase(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	svc := newPhaseService(s)

	created, err := svc.CreatePhase(ctx, s.site.ID, &dto.CreatePhaseRequest{Name: "Roofing"})
	require.NoError(t, err)
	assert.Equal(t, 2, created.OrderNumber, "appended after the highest order number")
	assert.Equal(t, "not_started", created.Status)

	order := 7
	created, err = svc.CreatePhase(ctx, s.site.ID, &dto.CreatePhaseRequest{Name: "Painting", OrderNumber: &order, AssignedTo: &s.supervisor.ID})
	require.NoError(t, err)
	assert.Equal(t, 7, created.OrderNumber)
	assert.Equal(t, &s.supervisor.ID, created.AssignedTo)

	_, err = svc.CreatePhase(ctx, uuid.New(), &dto.CreatePhaseRequest{Name: "Orphan"})
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound))

	missing := uuid.New()
	_, err = svc.CreatePhase(ctx, s.site.ID, &dto.CreatePhaseRequest{Name: "Ghost", AssignedTo: &missing})
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound))

	s.outsider.Status = domain.EmployeeInactive
	require.NoError(t, s.repos.Employees.Update(ctx, s.outsider))
	_, err = svc.CreatePhase(ctx, s.site.ID, &dto.CreatePhaseRequest{Name: "Idle", AssignedTo: &s.outsider.ID})
	assert.True(t, response.HasCode(err, response.ErrCodeValidation))

	phases, err := svc.ListPhases(ctx, s.site.ID, workflow.ProgressModeExplicit)
	require.NoError(t, err)
	require.Len(t, phases, 3)
	assert.Equal(t, []string{"Foundation", "Roofing", "Painting"}, []string{phases[0].Name, phases[1].Name, phases[2].Name})
}

func TestPhaseService_UpdatePhaseKeepsWorkflowState(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	svc := newPhaseService(s)

	ok, err := s.repos.Phases.CompareAndSetState(ctx, s.phase.ID, domain.StatusNotStarted, 0, map[string]interface{}{
		"status":   domain.StatusInProgress,
		"progress": 45,
	})
	require.NoError(t, err)
	require.True(t, ok)

	name := "Foundation & Plinth"
	updated, err := svc.UpdatePhase(ctx, s.phase.ID, &dto.UpdatePhaseRequest{Name: &name, Unassign: true})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Nil(t, updated.AssignedTo)
	assert.Equal(t, "in_progress", updated.Status)
	assert.Equal(t, 45, updated.ExplicitProgress)

	updated, err = svc.UpdatePhase(ctx, s.phase.ID, &dto.UpdatePhaseRequest{AssignedTo: &s.worker.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, s.worker.ID, *updated.AssignedTo)
}

func TestPhaseService_DeletePhase(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	svc := newPhaseService(s)

	require.NoError(t, s.repos.Todos.Create(ctx, &domain.Todo{ScopeType: domain.ScopeTask, ScopeID: s.task.ID, Content: "Order cement"}))

	require.NoError(t, svc.DeletePhase(ctx, s.phase.ID))

	_, err := s.repos.Tasks.FindByID(ctx, s.task.ID)
	assert.Error(t, err)
	todos, err := s.repos.Todos.ListByScope(ctx, domain.ScopeTask, s.task.ID)
	require.NoError(t, err)
	assert.Empty(t, todos)

	_, err = svc.GetPhase(ctx, s.phase.ID, workflow.ProgressModeExplicit)
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound))
}

func TestNextOrderNumber(t *testing.T) {
	assert.Equal(t, 1, nextOrderNumber(nil))
	assert.Equal(t, 10, nextOrderNumber([]*domain.Phase{{OrderNumber: 3}, {OrderNumber: 9}, {OrderNumber: 2}}))
}
