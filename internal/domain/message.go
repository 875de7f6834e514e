package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageType is the kind of content a chat message carries
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeDocument MessageType = "document"
	MessageTypeSystem   MessageType = "system"
)

func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAudio, MessageTypeDocument, MessageTypeSystem:
		return true
	}
	return false
}

// RequiresMedia reports whether the type carries its payload in MediaURL
func (t MessageType) RequiresMedia() bool {
	return t == MessageTypeImage || t == MessageTypeAudio || t == MessageTypeDocument
}

// Message is an append-only chat entry on a task or a phase
type Message struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ScopeType ScopeType   `gorm:"type:varchar(10);not null;index:idx_messages_scope,priority:1" json:"scope_type"`
	ScopeID   uuid.UUID   `gorm:"type:uuid;not null;index:idx_messages_scope,priority:2" json:"scope_id"`
	SenderID  uuid.UUID   `gorm:"type:uuid;not null;index:idx_messages_sender_id" json:"sender_id"`
	Type      MessageType `gorm:"type:varchar(20);not null;default:'text'" json:"type"`
	Content   string      `gorm:"type:text" json:"content"`
	MediaURL  *string     `gorm:"type:text" json:"media_url,omitempty"`
	CreatedAt time.Time   `gorm:"not null;index:idx_messages_created_at" json:"created_at"`
}

// TableName specifies the table name for Message
func (Message) TableName() string {
	return "messages"
}
