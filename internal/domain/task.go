package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a unit of work within a phase
type Task struct {
	BaseModel
	SiteID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_tasks_site_id" json:"site_id"`
	PhaseID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_tasks_phase_id" json:"phase_id"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Status      WorkStatus       `gorm:"type:varchar(32);not null;default:'not_started'" json:"status"`
	Progress    int              `gorm:"not null;default:0" json:"progress"`
	Amount      float64          `gorm:"default:0" json:"amount"`
	StartDate   *time.Time       `gorm:"type:timestamp" json:"start_date,omitempty"`
	DueDate     *time.Time       `gorm:"type:timestamp" json:"due_date,omitempty"`
	CompletedBy *uuid.UUID       `gorm:"type:uuid" json:"completed_by,omitempty"`
	CompletedAt *time.Time       `gorm:"type:timestamp" json:"completed_at,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "tasks"
}

// TaskAssignment links an employee to a task
type TaskAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_task_assignments_task_employee;index:idx_task_assignments_task_id" json:"task_id"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_task_assignments_task_employee;index:idx_task_assignments_employee_id" json:"employee_id"`
	AssignedAt time.Time `gorm:"type:timestamp;not null" json:"assigned_at"`
}

// TableName specifies the table name for TaskAssignment
func (TaskAssignment) TableName() string {
	return "task_assignments"
}

// BeforeCreate fills the ID and assignment time when unset
func (a *TaskAssignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}
	return nil
}
