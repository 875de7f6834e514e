package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTodoRequest adds a checklist item.
// Write requests on a task or phase are checked by the service after the assignment gate.
type CreateTodoRequest struct {
	Content string `json:"content" validate:"required,max=1000" example:"Order 40 bags of cement"`
}

// UpdateTodoRequest toggles a checklist item
type UpdateTodoRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// TodoResponse represents a checklist item
type TodoResponse struct {
	ID        uuid.UUID  `json:"id"`
	ScopeType string     `json:"scopeType"`
	ScopeID   uuid.UUID  `json:"scopeId"`
	Content   string     `json:"content"`
	Completed bool       `json:"completed"`
	AuthorID  *uuid.UUID `json:"authorId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CreateMessageRequest posts to a task or phase conversation
type CreateMessageRequest struct {
	Type     string  `json:"type" example:"text"`
	Content  string  `json:"content" validate:"max=4000" example:"Concrete truck arrives at 7am"`
	MediaURL *string `json:"mediaUrl,omitempty" validate:"omitempty,url"`
}

// MessageQuery pages backwards through a conversation
type MessageQuery struct {
	Before *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit  int        `form:"limit"`
}

// MessageResponse represents a chat message
type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	ScopeType string    `json:"scopeType"`
	ScopeID   uuid.UUID `json:"scopeId"`
	SenderID  uuid.UUID `json:"senderId"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	MediaURL  *string   `json:"mediaUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationQuery holds paging parameters for the notification list
type NotificationQuery struct {
	Page       int  `form:"page"`
	Limit      int  `form:"limit"`
	UnreadOnly bool `form:"unreadOnly"`
}

// NotificationResponse represents a stored notification
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	SiteID    uuid.UUID  `json:"siteId"`
	PhaseID   *uuid.UUID `json:"phaseId,omitempty"`
	TaskID    *uuid.UUID `json:"taskId,omitempty"`
	Type      string     `json:"type" example:"TASK_UPDATE"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UnreadCountResponse is the caller's unread notification count
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse reports how many notifications were marked
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// PresignUploadRequest asks for an upload URL
type PresignUploadRequest struct {
	Purpose     string     `json:"purpose" binding:"required" example:"PROGRESS_IMAGE"`
	ScopeID     *uuid.UUID `json:"scopeId,omitempty"`
	FileName    string     `json:"fileName" binding:"required,max=255" example:"east-wall.jpg"`
	ContentType string     `json:"contentType" binding:"required" example:"image/jpeg"`
	FileSize    int64      `json:"fileSize" binding:"required,gt=0" example:"482133"`
}

// PresignUploadResponse returns where to PUT the file and the URL to reference afterwards
type PresignUploadResponse struct {
	AttachmentID uuid.UUID `json:"attachmentId"`
	UploadURL    string    `json:"uploadUrl"`
	FileKey      string    `json:"fileKey"`
	FileURL      string    `json:"fileUrl"`
	ExpiresIn    int       `json:"expiresIn" example:"300"`
}
