package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Conversation is a chat thread between a seeker and a mentor.
// Members always holds exactly two user IDs.
type Conversation struct {
	// ID is the unique identifier for the conversation (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// Members are the IDs of the two participants.
	Members pq.StringArray `gorm:"type:text[];not null" json:"members"`
	// CreatedAt is the timestamp when the conversation was opened.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt moves forward whenever a message is added.
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID if the ID
// has not been set yet.
func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// HasMember reports whether the given user participates in the conversation.
func (c *Conversation) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}
