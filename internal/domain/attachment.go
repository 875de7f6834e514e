package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttachmentPurpose says where an uploaded file is going to be referenced
type AttachmentPurpose string

const (
	AttachmentProgressImage AttachmentPurpose = "PROGRESS_IMAGE"
	AttachmentProgressAudio AttachmentPurpose = "PROGRESS_AUDIO"
	AttachmentChatMedia     AttachmentPurpose = "CHAT_MEDIA"
	AttachmentProfileImage  AttachmentPurpose = "PROFILE_IMAGE"
)

func (p AttachmentPurpose) IsValid() bool {
	switch p {
	case AttachmentProgressImage, AttachmentProgressAudio, AttachmentChatMedia, AttachmentProfileImage:
		return true
	}
	return false
}

// AttachmentStatus represents the status of an attachment
type AttachmentStatus string

const (
	AttachmentStatusTemp      AttachmentStatus = "TEMP"      // presigned, not yet referenced
	AttachmentStatusConfirmed AttachmentStatus = "CONFIRMED" // referenced by a progress update, message or profile
)

// Attachment tracks a file uploaded to S3 through a presigned URL.
// ScopeID references a task, phase or employee depending on Purpose, so it carries no FK.
type Attachment struct {
	BaseModel
	Purpose     AttachmentPurpose `gorm:"type:varchar(32);not null;index:idx_attachments_scope,priority:1" json:"purpose"`
	ScopeID     *uuid.UUID        `gorm:"type:uuid;index:idx_attachments_scope,priority:2" json:"scope_id"`
	Status      AttachmentStatus  `gorm:"type:varchar(20);not null;default:'TEMP';index:idx_attachments_status" json:"status"`
	FileName    string            `gorm:"type:varchar(255);not null" json:"file_name"`
	FileKey     string            `gorm:"type:text;not null;uniqueIndex:uq_attachments_file_key" json:"file_key"`
	FileURL     string            `gorm:"type:text;not null" json:"file_url"`
	FileSize    int64             `gorm:"not null" json:"file_size"`
	ContentType string            `gorm:"type:varchar(100);not null" json:"content_type"`
	UploadedBy  uuid.UUID         `gorm:"type:uuid;not null;index:idx_attachments_uploaded_by" json:"uploaded_by"`
	ExpiresAt   *time.Time        `gorm:"type:timestamp;index:idx_attachments_expires_at" json:"expires_at"`
}

// TableName specifies the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
