package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProgressUpdate is an immutable record of one workflow transition on a task or phase
type ProgressUpdate struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Seq              int64     `gorm:"not null;uniqueIndex:uq_progress_updates_scope_seq,priority:3" json:"seq"`
	ScopeType        ScopeType `gorm:"type:varchar(10);not null;index:idx_progress_updates_scope,priority:1;uniqueIndex:uq_progress_updates_scope_seq,priority:1" json:"scope_type"`
	ScopeID          uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_updates_scope,priority:2;uniqueIndex:uq_progress_updates_scope_seq,priority:2" json:"scope_id"`
	PreviousProgress int       `gorm:"not null" json:"previous_progress"`
	NewProgress      int       `gorm:"not null" json:"new_progress"`
	Note             string    `gorm:"type:text" json:"note"`
	ImageURL         *string   `gorm:"type:text" json:"image_url,omitempty"`
	AudioURL         *string   `gorm:"type:text" json:"audio_url,omitempty"`
	AuthorID         uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_updates_author_id" json:"author_id"`
	CreatedAt        time.Time `gorm:"not null;index:idx_progress_updates_scope,priority:3" json:"created_at"`
}

// TableName specifies the table name for ProgressUpdate
func (ProgressUpdate) TableName() string {
	return "progress_updates"
}
