package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a single chat message persisted in PostgreSQL.
// IDs are always assigned server-side; clients never generate them.
type Message struct {
	// ID is the unique identifier for the message (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// ConversationID is the conversation the message belongs to.
	ConversationID string `gorm:"type:uuid;not null;index:idx_conv_msg" json:"conversation_id"`
	// SenderID is the ID of the user who sent the message.
	SenderID string `gorm:"type:text;not null;index:idx_conv_msg" json:"sender_id"`
	// Content is the text of the message.
	Content string `gorm:"type:text;not null" json:"content"`
	// CreatedAt is the server-side creation timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID if the ID
// has not been set yet.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// Less defines the total order over messages of one conversation:
// by creation timestamp, ties broken by ID.
func Less(a, b Message) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
