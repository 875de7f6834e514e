package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationType categorizes what happened
type NotificationType string

const (
	NotificationTaskUpdate     NotificationType = "TASK_UPDATE"
	NotificationChatUpdate     NotificationType = "CHAT_UPDATE"
	NotificationStageCompleted NotificationType = "STAGE_COMPLETED"
)

// Notification is stored for a target employee; only IsRead ever changes
type Notification struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	SiteID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_site_id" json:"site_id"`
	PhaseID    *uuid.UUID       `gorm:"type:uuid" json:"phase_id,omitempty"`
	TaskID     *uuid.UUID       `gorm:"type:uuid" json:"task_id,omitempty"`
	EmployeeID uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_employee_read,priority:1" json:"employee_id"`
	Type       NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Message    string           `gorm:"type:text;not null" json:"message"`
	Metadata   datatypes.JSON   `json:"metadata,omitempty"`
	IsRead     bool             `gorm:"not null;default:false;index:idx_notifications_employee_read,priority:2" json:"is_read"`
	ReadAt     *time.Time       `gorm:"type:timestamp" json:"read_at,omitempty"`
	CreatedAt  time.Time        `gorm:"not null;index:idx_notifications_created_at" json:"created_at"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
