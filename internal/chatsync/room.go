package chatsync

import "sync"

// membership is the room-subscription state machine: Unjoined, or Joined
// with exactly one conversation. Every transition out of a joined room emits
// the leave before the next join, so the session is never subscribed to two
// rooms at once.
//
// Mutations happen only on the engine's event loop; the mutex exists for
// the read-side observers.
type membership struct {
	mu             sync.RWMutex
	joined         bool
	conversationID string

	transport Transport
}

func newMembership(t Transport) *membership {
	return &membership{transport: t}
}

// Select moves the subscription to the given conversation. Returns false
// when the room is already the active one and no transition happened.
func (m *membership) Select(conversationID string) bool {
	m.mu.Lock()
	if m.joined && m.conversationID == conversationID {
		m.mu.Unlock()
		return false
	}
	prev, wasJoined := m.conversationID, m.joined
	m.joined = true
	m.conversationID = conversationID
	m.mu.Unlock()

	if wasJoined {
		m.transport.LeaveRoom(prev)
	}
	m.transport.JoinRoom(conversationID)
	return true
}

// Clear leaves the active room, if any. Used when the chat view closes or
// the session ends.
func (m *membership) Clear() {
	m.mu.Lock()
	if !m.joined {
		m.mu.Unlock()
		return
	}
	prev := m.conversationID
	m.joined = false
	m.conversationID = ""
	m.mu.Unlock()

	m.transport.LeaveRoom(prev)
}

// Rejoin re-issues the join for the active room. Called after the push
// channel reconnects, since server-side subscriptions do not survive it.
func (m *membership) Rejoin() {
	m.mu.RLock()
	joined, id := m.joined, m.conversationID
	m.mu.RUnlock()

	if joined {
		m.transport.JoinRoom(id)
	}
}

// Current returns the active conversation ID, if one is joined.
func (m *membership) Current() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conversationID, m.joined
}
