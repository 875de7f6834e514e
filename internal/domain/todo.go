package domain

import (
	"github.com/google/uuid"
)

// Todo is a checklist item scoped to a task or a phase
type Todo struct {
	BaseModel
	ScopeType ScopeType  `gorm:"type:varchar(10);not null;index:idx_todos_scope,priority:1" json:"scope_type"`
	ScopeID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_todos_scope,priority:2" json:"scope_id"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Completed bool       `gorm:"not null;default:false" json:"completed"`
	AuthorID  *uuid.UUID `gorm:"type:uuid" json:"author_id,omitempty"`
}

// TableName specifies the table name for Todo
func (Todo) TableName() string {
	return "todos"
}
