package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

type fixture struct {
	repos  *Repositories
	site   *domain.Site
	phase  *domain.Phase
	task   *domain.Task
	worker *domain.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := NewRepositories(setupTestDB(t))

	site := &domain.Site{Name: "Riverside Villas", Status: domain.SiteStatusActive}
	require.NoError(t, repos.Sites.Create(ctx, site))

	phase := &domain.Phase{SiteID: site.ID, Name: "Foundation", OrderNumber: 2, Status: domain.StatusNotStarted}
	require.NoError(t, repos.Phases.Create(ctx, phase))

	task := &domain.Task{SiteID: site.ID, PhaseID: phase.ID, Name: "Pour footing", Status: domain.StatusNotStarted}
	require.NoError(t, repos.Tasks.Create(ctx, task))

	worker := &domain.Employee{
		Name:       "Ravi",
		Phone:      "+911111111111",
		Role:       domain.RoleWorker,
		Status:     domain.EmployeeActive,
		Credential: domain.Credential{Scheme: domain.CredentialPlaintext, Secret: "pw"},
	}
	require.NoError(t, repos.Employees.Create(ctx, worker))
	require.NoError(t, repos.Tasks.AddAssignment(ctx, &domain.TaskAssignment{TaskID: task.ID, EmployeeID: worker.ID}))

	return &fixture{repos: repos, site: site, phase: phase, task: task, worker: worker}
}

func TestTaskRepository_CompareAndSetState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.repos.Tasks.CompareAndSetState(ctx, f.task.ID, domain.StatusNotStarted, 0, map[string]interface{}{
		"status":   domain.StatusInProgress,
		"progress": 40,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// stale expectation loses
	ok, err = f.repos.Tasks.CompareAndSetState(ctx, f.task.ID, domain.StatusNotStarted, 0, map[string]interface{}{
		"status":   domain.StatusWaitingForApproval,
		"progress": 100,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := f.repos.Tasks.FindByID(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Equal(t, 40, got.Progress)
	require.Len(t, got.Assignments, 1)
	assert.Equal(t, f.worker.ID, got.Assignments[0].EmployeeID)
}

func TestPhaseRepository_UpdateDetailsNeverTouchesWorkflowFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.repos.Phases.CompareAndSetState(ctx, f.phase.ID, domain.StatusNotStarted, 0, map[string]interface{}{
		"status":   domain.StatusInProgress,
		"progress": 30,
	})
	require.NoError(t, err)
	require.True(t, ok)

	stale := *f.phase
	stale.Name = "Foundation & Footings"
	stale.Status = domain.StatusCompleted
	stale.Progress = 100
	require.NoError(t, f.repos.Phases.UpdateDetails(ctx, &stale))

	got, err := f.repos.Phases.FindByID(ctx, f.phase.ID)
	require.NoError(t, err)
	assert.Equal(t, "Foundation & Footings", got.Name)
	assert.Equal(t, domain.StatusInProgress, got.Status)
	assert.Equal(t, 30, got.Progress)
}

func TestProgressUpdateRepository_InsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	steps := [][2]int{{0, 40}, {40, 40}, {40, 100}, {100, 100}}
	for _, s := range steps {
		require.NoError(t, f.repos.Updates.Create(ctx, &domain.ProgressUpdate{
			ScopeType:        domain.ScopeTask,
			ScopeID:          f.task.ID,
			PreviousProgress: s[0],
			NewProgress:      s[1],
			AuthorID:         f.worker.ID,
		}))
	}
	// another scope has its own sequence
	require.NoError(t, f.repos.Updates.Create(ctx, &domain.ProgressUpdate{
		ScopeType: domain.ScopePhase, ScopeID: f.phase.ID, NewProgress: 10, AuthorID: f.worker.ID,
	}))

	list, err := f.repos.Updates.ListByScope(ctx, domain.ScopeTask, f.task.ID)
	require.NoError(t, err)
	require.Len(t, list, len(steps))
	for i, u := range list {
		assert.Equal(t, int64(i+1), u.Seq)
		assert.Equal(t, steps[i][0], u.PreviousProgress)
		assert.Equal(t, steps[i][1], u.NewProgress)
	}

	latest, err := f.repos.Updates.LatestByScope(ctx, domain.ScopeTask, f.task.ID, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(3), latest[0].Seq)
	assert.Equal(t, int64(4), latest[1].Seq)

	phaseList, err := f.repos.Updates.ListByScope(ctx, domain.ScopePhase, f.phase.ID)
	require.NoError(t, err)
	require.Len(t, phaseList, 1)
	assert.Equal(t, int64(1), phaseList[0].Seq)
}

func TestTaskRepository_Assignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// duplicate pair is ignored
	require.NoError(t, f.repos.Tasks.AddAssignment(ctx, &domain.TaskAssignment{TaskID: f.task.ID, EmployeeID: f.worker.ID}))
	ids, err := f.repos.Tasks.AssigneeIDs(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.worker.ID}, ids)

	phaseAssignees, err := f.repos.Phases.TaskAssigneeIDs(ctx, f.phase.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.worker.ID}, phaseAssignees)

	mine, err := f.repos.Tasks.FindByAssignee(ctx, f.worker.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.task.ID, mine[0].ID)

	require.NoError(t, f.repos.Tasks.RemoveAssignment(ctx, f.task.ID, f.worker.ID))
	err = f.repos.Tasks.RemoveAssignment(ctx, f.task.ID, f.worker.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestPhaseRepository_TaskStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	done := &domain.Task{SiteID: f.site.ID, PhaseID: f.phase.ID, Name: "Cure", Status: domain.StatusCompleted, Progress: 100}
	require.NoError(t, f.repos.Tasks.Create(ctx, done))

	empty := &domain.Phase{SiteID: f.site.ID, Name: "Roofing", OrderNumber: 4, Status: domain.StatusNotStarted}
	require.NoError(t, f.repos.Phases.Create(ctx, empty))

	statuses, err := f.repos.Phases.TaskStatuses(ctx, []uuid.UUID{f.phase.ID, empty.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.WorkStatus{domain.StatusNotStarted, domain.StatusCompleted}, statuses[f.phase.ID])
	assert.Empty(t, statuses[empty.ID])
}

func TestPhaseRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repos.Todos.Create(ctx, &domain.Todo{ScopeType: domain.ScopeTask, ScopeID: f.task.ID, Content: "buy rebar"}))
	require.NoError(t, f.repos.Todos.Create(ctx, &domain.Todo{ScopeType: domain.ScopePhase, ScopeID: f.phase.ID, Content: "book crane"}))
	require.NoError(t, f.repos.Messages.Create(ctx, &domain.Message{ScopeType: domain.ScopeTask, ScopeID: f.task.ID, SenderID: f.worker.ID, Content: "started"}))
	require.NoError(t, f.repos.Updates.Create(ctx, &domain.ProgressUpdate{ScopeType: domain.ScopePhase, ScopeID: f.phase.ID, NewProgress: 5, AuthorID: f.worker.ID}))

	require.NoError(t, f.repos.Phases.Delete(ctx, f.phase.ID))

	_, err := f.repos.Tasks.FindByID(ctx, f.task.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	db := f.repos.db
	for _, model := range []interface{}{&domain.TaskAssignment{}, &domain.Todo{}, &domain.Message{}, &domain.ProgressUpdate{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left behind", model)
	}

	err = f.repos.Phases.Delete(ctx, f.phase.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestEmployeeRepository_DeleteCascadesAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repos.Employees.Delete(ctx, f.worker.ID))

	ids, err := f.repos.Tasks.AssigneeIDs(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEmployeeRepository_PhoneIsUnique(t *testing.T) {
	f := newFixture(t)

	dup := &domain.Employee{
		Name:       "Other",
		Phone:      f.worker.Phone,
		Role:       domain.RoleWorker,
		Status:     domain.EmployeeActive,
		Credential: domain.Credential{Scheme: domain.CredentialPlaintext, Secret: "x"},
	}
	assert.Error(t, f.repos.Employees.Create(context.Background(), dup))
}

func TestEmployeeRepository_ActiveAdmins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := &domain.Employee{Name: "Boss", Phone: "+1", Role: domain.RoleAdmin, Status: domain.EmployeeActive,
		Credential: domain.Credential{Scheme: domain.CredentialPlaintext, Secret: "x"}}
	retired := &domain.Employee{Name: "Old Boss", Phone: "+2", Role: domain.RoleAdmin, Status: domain.EmployeeInactive,
		Credential: domain.Credential{Scheme: domain.CredentialPlaintext, Secret: "x"}}
	require.NoError(t, f.repos.Employees.Create(ctx, admin))
	require.NoError(t, f.repos.Employees.Create(ctx, retired))

	ids, err := f.repos.Employees.ActiveAdminIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{admin.ID}, ids)

	active, err := f.repos.Employees.ActiveIDs(ctx, []uuid.UUID{admin.ID, retired.ID, f.worker.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{admin.ID, f.worker.ID}, active)
}

func TestRepositories_TransactionRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.repos.Transaction(ctx, func(tx *Repositories) error {
		if _, err := tx.Tasks.CompareAndSetState(ctx, f.task.ID, domain.StatusNotStarted, 0, map[string]interface{}{
			"status": domain.StatusInProgress, "progress": 50,
		}); err != nil {
			return err
		}
		if err := tx.Updates.Create(ctx, &domain.ProgressUpdate{ScopeType: domain.ScopeTask, ScopeID: f.task.ID, NewProgress: 50, AuthorID: f.worker.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := f.repos.Tasks.FindByID(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, got.Status)
	list, err := f.repos.Updates.ListByScope(ctx, domain.ScopeTask, f.task.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRepositories_SavepointFailureKeepsOuterWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.repos.Transaction(ctx, func(tx *Repositories) error {
		if _, err := tx.Tasks.CompareAndSetState(ctx, f.task.ID, domain.StatusNotStarted, 0, map[string]interface{}{
			"status": domain.StatusInProgress, "progress": 20,
		}); err != nil {
			return err
		}
		inner := tx.Transaction(ctx, func(sp *Repositories) error {
			if err := sp.Notifications.CreateBatch(ctx, []*domain.Notification{{
				SiteID: f.site.ID, EmployeeID: f.worker.ID, Type: domain.NotificationTaskUpdate, Message: "hello",
			}}); err != nil {
				return err
			}
			return errors.New("delivery failed")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	got, err := f.repos.Tasks.FindByID(ctx, f.task.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Progress)

	count, err := f.repos.Notifications.CountUnread(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationRepository_ReadFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -40)
	rows := []*domain.Notification{
		{SiteID: f.site.ID, EmployeeID: f.worker.ID, Type: domain.NotificationTaskUpdate, Message: "a"},
		{SiteID: f.site.ID, EmployeeID: f.worker.ID, Type: domain.NotificationChatUpdate, Message: "b"},
		{SiteID: f.site.ID, EmployeeID: f.worker.ID, Type: domain.NotificationChatUpdate, Message: "old", CreatedAt: old},
	}
	require.NoError(t, f.repos.Notifications.CreateBatch(ctx, rows))

	count, err := f.repos.Notifications.CountUnread(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	read, err := f.repos.Notifications.MarkAsRead(ctx, rows[0].ID, f.worker.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.NotNil(t, read.ReadAt)

	_, err = f.repos.Notifications.MarkAsRead(ctx, rows[0].ID, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	page, total, err := f.repos.Notifications.ListByEmployee(ctx, f.worker.ID, 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, page, 2)

	n, err := f.repos.Notifications.MarkAllAsRead(ctx, f.worker.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	removed, err := f.repos.Notifications.CleanupRead(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestMessageRepository_ListConversationMergesTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	msgs := []*domain.Message{
		{ScopeType: domain.ScopePhase, ScopeID: f.phase.ID, SenderID: f.worker.ID, Content: "phase 1", CreatedAt: base},
		{ScopeType: domain.ScopeTask, ScopeID: f.task.ID, SenderID: f.worker.ID, Content: "task 1", CreatedAt: base.Add(time.Minute)},
		{ScopeType: domain.ScopePhase, ScopeID: f.phase.ID, SenderID: f.worker.ID, Content: "phase 2", CreatedAt: base.Add(2 * time.Minute)},
		{ScopeType: domain.ScopeTask, ScopeID: uuid.New(), SenderID: f.worker.ID, Content: "elsewhere", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, m := range msgs {
		require.NoError(t, f.repos.Messages.Create(ctx, m))
	}

	conv, err := f.repos.Messages.ListConversation(ctx, f.phase.ID, []uuid.UUID{f.task.ID}, nil, 50)
	require.NoError(t, err)
	require.Len(t, conv, 3)
	assert.Equal(t, "phase 1", conv[0].Content)
	assert.Equal(t, "task 1", conv[1].Content)
	assert.Equal(t, "phase 2", conv[2].Content)

	before := base.Add(2 * time.Minute)
	older, err := f.repos.Messages.ListConversation(ctx, f.phase.ID, []uuid.UUID{f.task.ID}, &before, 1)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "task 1", older[0].Content)

	senders, err := f.repos.Messages.SenderIDs(ctx, domain.ScopeTask, []uuid.UUID{f.task.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.worker.ID}, senders)
}

func TestPhaseTemplateRepository_SeedIsIdempotent(t *testing.T) {
	repos := NewRepositories(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repos.PhaseTemplates.Seed(ctx, domain.DefaultPhaseTemplates))
	require.NoError(t, repos.PhaseTemplates.Seed(ctx, domain.DefaultPhaseTemplates))

	list, err := repos.PhaseTemplates.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, len(domain.DefaultPhaseTemplates))
	assert.Equal(t, 1, list[0].OrderNumber)
}

func TestSiteRepository_DeleteRemovesPhases(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repos.Sites.Delete(ctx, f.site.ID))

	phases, err := f.repos.Phases.FindBySiteID(ctx, f.site.ID)
	require.NoError(t, err)
	assert.Empty(t, phases)

	err = f.repos.Sites.Delete(ctx, f.site.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
