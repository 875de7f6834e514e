package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/response"
)

func TestTodoService_Lifecycle(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	svc := NewTodoService(s.repos, nil)

	todo, err := svc.CreateTodo(ctx, actorOf(s.worker), domain.ScopeTask, s.task.ID, &dto.CreateTodoRequest{Content: " Order rebar "})
	require.NoError(t, err)
	assert.Equal(t, "Order rebar", todo.Content)
	assert.False(t, todo.Completed)
	require.NotNil(t, todo.AuthorID)
	assert.Equal(t, s.worker.ID, *todo.AuthorID)

	done := true
	updated, err := svc.UpdateTodo(ctx, actorOf(s.worker), todo.ID, &dto.UpdateTodoRequest{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	// anyone may read the checklist
	list, err := svc.ListTodos(ctx, domain.ScopeTask, s.task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Completed)

	_, err = svc.UpdateTodo(ctx, actorOf(s.worker), todo.ID, &dto.UpdateTodoRequest{})
	assert.True(t, response.HasCode(err, response.ErrCodeValidation))

	err = svc.DeleteTodo(ctx, actorOf(s.outsider), todo.ID)
	assert.True(t, response.HasCode(err, response.ErrCodeForbidden))

	require.NoError(t, svc.DeleteTodo(ctx, actorOf(s.admin), todo.ID))
	assert.True(t, response.HasCode(svc.DeleteTodo(ctx, actorOf(s.admin), todo.ID), response.ErrCodeNotFound))
}

func TestTodoService_Gate(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()
	svc := NewTodoService(s.repos, nil)

	_, err := svc.CreateTodo(ctx, actorOf(s.outsider), domain.ScopeTask, s.task.ID, &dto.CreateTodoRequest{Content: "x"})
	assert.True(t, response.HasCode(err, response.ErrCodeForbidden))

	// the gate is checked before the body
	for _, req := range []*dto.CreateTodoRequest{nil, {Content: "  "}, {Content: strings.Repeat("a", 1001)}} {
		_, err = svc.CreateTodo(ctx, actorOf(s.outsider), domain.ScopeTask, s.task.ID, req)
		assert.True(t, response.HasCode(err, response.ErrCodeForbidden), "got %v", err)
	}
	none, err := s.repos.Todos.ListByScope(ctx, domain.ScopeTask, s.task.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.CreateTodo(ctx, actorOf(s.supervisor), domain.ScopePhase, s.phase.ID, &dto.CreateTodoRequest{Content: "Book inspector"})
	assert.NoError(t, err)

	for _, req := range []*dto.CreateTodoRequest{nil, {Content: "  "}, {Content: strings.Repeat("a", 1001)}} {
		_, err = svc.CreateTodo(ctx, actorOf(s.worker), domain.ScopeTask, s.task.ID, req)
		assert.True(t, response.HasCode(err, response.ErrCodeValidation), "got %v", err)
	}

	todo, err := svc.CreateTodo(ctx, actorOf(s.worker), domain.ScopeTask, s.task.ID, &dto.CreateTodoRequest{Content: "Check level"})
	require.NoError(t, err)
	_, err = svc.UpdateTodo(ctx, actorOf(s.outsider), todo.ID, nil)
	assert.True(t, response.HasCode(err, response.ErrCodeForbidden), "got %v", err)
	_, err = svc.UpdateTodo(ctx, actorOf(s.worker), todo.ID, nil)
	assert.True(t, response.HasCode(err, response.ErrCodeValidation), "got %v", err)

	_, err = svc.ListTodos(ctx, domain.ScopePhase, uuid.New())
	assert.True(t, response.HasCode(err, response.ErrCodeNotFound))
}
