package chatsync

import (
	"context"
	"sync"

	"mentorlink/backend/internal/models"
)

// conversationLister is the slice of the REST client the directory needs.
type conversationLister interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	CreateConversation(ctx context.Context, mentorID string) (*models.Conversation, error)
}

// Directory is the user's conversation list. Refreshed on view entry; the
// most recent fetch wins and staleness between refreshes is acceptable.
type Directory struct {
	api conversationLister

	mu            sync.RWMutex
	conversations []models.Conversation
}

func NewDirectory(api conversationLister) *Directory {
	return &Directory{api: api}
}

// Refresh replaces the cached list with a fresh fetch.
func (d *Directory) Refresh(ctx context.Context) error {
	convs, err := d.api.ListConversations(ctx)
	if err != nil {
		return &FetchError{Err: err}
	}

	d.mu.Lock()
	d.conversations = convs
	d.mu.Unlock()
	return nil
}

// Conversations returns the last fetched list.
func (d *Directory) Conversations() []models.Conversation {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Conversation, len(d.conversations))
	copy(out, d.conversations)
	return out
}

// Open starts (or resumes) a conversation with a mentor and adds it to the
// cached list so it is selectable before the next refresh.
func (d *Directory) Open(ctx context.Context, mentorID string) (*models.Conversation, error) {
	conv, err := d.api.CreateConversation(ctx, mentorID)
	if err != nil {
		return nil, &DeliveryError{Err: err}
	}

	d.mu.Lock()
	found := false
	for _, c := range d.conversations {
		if c.ID == conv.ID {
			found = true
			break
		}
	}
	if !found {
		d.conversations = append([]models.Conversation{*conv}, d.conversations...)
	}
	d.mu.Unlock()

	return conv, nil
}
