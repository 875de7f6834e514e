package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"site-tracker-api/internal/database"
	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/queue"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/workflow"
)

// setupTestDB opens a private in-memory database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// site is a seeded site with one phase and one assigned task
type site struct {
	db         *gorm.DB
	repos      *repository.Repositories
	site       *domain.Site
	phase      *domain.Phase
	task       *domain.Task
	admin      *domain.Employee
	supervisor *domain.Employee
	worker     *domain.Employee
	outsider   *domain.Employee
}

func newSite(t *testing.T) *site {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t)
	repos := repository.NewRepositories(db)

	s := &site{db: db, repos: repos}
	s.admin = createEmployee(t, repos, "Abena", "+233200000001", domain.RoleAdmin)
	s.supervisor = createEmployee(t, repos, "Kofi", "+233200000002", domain.RoleSupervisor)
	s.worker = createEmployee(t, repos, "Yaw", "+233200000003", domain.RoleWorker)
	s.outsider = createEmployee(t, repos, "Esi", "+233200000004", domain.RoleWorker)

	s.site = &domain.Site{Name: "Harbor Road Duplex", Status: domain.SiteStatusActive}
	require.NoError(t, repos.Sites.Create(ctx, s.site))

	supervisorID := s.supervisor.ID
	s.phase = &domain.Phase{SiteID: s.site.ID, Name: "Foundation", OrderNumber: 1, AssignedTo: &supervisorID, Status: domain.StatusNotStarted}
	require.NoError(t, repos.Phases.Create(ctx, s.phase))

	s.task = &domain.Task{SiteID: s.site.ID, PhaseID: s.phase.ID, Name: "Pour footing", Status: domain.StatusNotStarted}
	require.NoError(t, repos.Tasks.Create(ctx, s.task))
	require.NoError(t, repos.Tasks.AddAssignment(ctx, &domain.TaskAssignment{TaskID: s.task.ID, EmployeeID: s.worker.ID}))

	return s
}

func createEmployee(t *testing.T, repos *repository.Repositories, name, phone string, role domain.Role) *domain.Employee {
	t.Helper()
	e := &domain.Employee{
		Name:       name,
		Phone:      phone,
		Role:       role,
		Status:     domain.EmployeeActive,
		Credential: domain.Credential{Scheme: domain.CredentialPlaintext, Secret: "secret-" + name},
	}
	require.NoError(t, repos.Employees.Create(context.Background(), e))
	return e
}

func actorOf(e *domain.Employee) workflow.Actor {
	return workflow.Actor{ID: e.ID, Role: e.Role}
}

// recorder captures everything the dispatcher hands to its sinks
type recorder struct {
	mu            sync.Mutex
	rooms         []string
	published     []domain.Notification
	webhookDrafts []workflow.NotificationDraft
	transitions   []queue.TransitionEvent
	publishErr    error
}

func (r *recorder) Broadcast(phaseID uuid.UUID, eventType string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, eventType)
}

func (r *recorder) Publish(ctx context.Context, notifications []domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, notifications...)
	return r.publishErr
}

func (r *recorder) SendBulkNotifications(ctx context.Context, actorID string, drafts []workflow.NotificationDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.webhookDrafts = append(r.webhookDrafts, drafts...)
	return nil
}

func (r *recorder) PublishTransition(ctx context.Context, ev queue.TransitionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

// newInlineDispatcher delivers synchronously into rec
func newInlineDispatcher(rec *recorder) *Dispatcher {
	d := NewDispatcher(rec, rec, rec, rec, nil, nil, nil)
	d.spawn = func(f func()) { f() }
	return d
}

func intPtr(v int) *int { return &v }
