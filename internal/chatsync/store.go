package chatsync

import (
	"sort"
	"sync"

	"mentorlink/backend/internal/models"
)

// MessageLog is the ordered, deduplicated message sequence of the active
// conversation. Two inputs feed it: the snapshot fetch (authoritative
// baseline) and push events, which may arrive before the snapshot resolves.
// Entries are unique by message ID and always sorted by (created_at, id),
// regardless of arrival order.
type MessageLog struct {
	mu             sync.RWMutex
	conversationID string
	seen           map[string]struct{}
	msgs           []models.Message
}

func NewMessageLog() *MessageLog {
	return &MessageLog{seen: make(map[string]struct{})}
}

// Reset clears the log and binds it to a new conversation. Called on every
// room transition, before the snapshot fetch is issued.
func (l *MessageLog) Reset(conversationID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conversationID = conversationID
	l.seen = make(map[string]struct{})
	l.msgs = l.msgs[:0]
}

// Append inserts one pushed message at its ordered position, unless an
// entry with the same ID is already present. Works against an empty log:
// pushes that beat the snapshot are kept, not lost.
func (l *MessageLog) Append(msg models.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, dup := l.seen[msg.ID]; dup {
		return false
	}
	l.seen[msg.ID] = struct{}{}

	i := sort.Search(len(l.msgs), func(i int) bool {
		return models.Less(msg, l.msgs[i])
	})
	l.msgs = append(l.msgs, models.Message{})
	copy(l.msgs[i+1:], l.msgs[i:])
	l.msgs[i] = msg
	return true
}

// MergeSnapshot folds the fetched history into the log. The snapshot is the
// baseline, but entries already delivered by push are kept, so the merge is
// a union deduplicated by ID and re-sorted by the message order.
func (l *MessageLog) MergeSnapshot(msgs []models.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, msg := range msgs {
		if _, dup := l.seen[msg.ID]; dup {
			continue
		}
		l.seen[msg.ID] = struct{}{}
		l.msgs = append(l.msgs, msg)
	}

	sort.Slice(l.msgs, func(i, j int) bool {
		return models.Less(l.msgs[i], l.msgs[j])
	})
}

// Snapshot returns a copy of the current log in display order.
func (l *MessageLog) Snapshot() []models.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// ConversationID returns the conversation the log is bound to.
func (l *MessageLog) ConversationID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.conversationID
}

// Len returns the number of entries currently held.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.msgs)
}
