package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to the same connection or transaction
type Repositories struct {
	db *gorm.DB

	Sites          SiteRepository
	Phases         PhaseRepository
	PhaseTemplates PhaseTemplateRepository
	Tasks          TaskRepository
	Employees      EmployeeRepository
	Updates        ProgressUpdateRepository
	Todos          TodoRepository
	Messages       MessageRepository
	Notifications  NotificationRepository
	Attachments    AttachmentRepository
}

// NewRepositories creates repositories sharing db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:             db,
		Sites:          NewSiteRepository(db),
		Phases:         NewPhaseRepository(db),
		PhaseTemplates: NewPhaseTemplateRepository(db),
		Tasks:          NewTaskRepository(db),
		Employees:      NewEmployeeRepository(db),
		Updates:        NewProgressUpdateRepository(db),
		Todos:          NewTodoRepository(db),
		Messages:       NewMessageRepository(db),
		Notifications:  NewNotificationRepository(db),
		Attachments:    NewAttachmentRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single transaction.
// Called on repositories that are already transactional it opens a savepoint,
// so a failing fn only rolls back its own writes.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
