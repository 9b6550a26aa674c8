package chatsync

import (
	"context"
	"strings"

	"mentorlink/backend/internal/models"
)

// messageSender is the slice of the REST client the send pipeline needs.
type messageSender interface {
	CreateMessage(ctx context.Context, conversationID, content string) (*models.Message, error)
}

// SendMessage submits one outbound message. Content is trimmed and must be
// non-empty. On success the response payload is intentionally discarded:
// the sender is a member of its own room, so the created message arrives
// back through the push channel and is merged into the log like any other
// event. A dropped push therefore hides a successfully sent message from
// its own sender; see the dropped-echo test for the recorded behavior.
func (e *Engine) SendMessage(ctx context.Context, conversationID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return &ValidationError{Reason: "message content is empty"}
	}

	if _, err := e.api.CreateMessage(ctx, conversationID, content); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}
