package chatsync_test

import (
	"context"
	"sync"
	"time"

	"mentorlink/backend/internal/chatsync"
	"mentorlink/backend/internal/models"
)

// fakeTransport records join/leave calls and lets tests inject push events
// and connection status transitions.
type fakeTransport struct {
	mu      sync.Mutex
	ops     []string
	handler func(models.Message)

	statusCh chan chatsync.Status
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{statusCh: make(chan chatsync.Status, 4)}
}

func (t *fakeTransport) Connect() error { return nil }
func (t *fakeTransport) Teardown()      {}

func (t *fakeTransport) JoinRoom(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops = append(t.ops, "join:"+conversationID)
}

func (t *fakeTransport) LeaveRoom(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops = append(t.ops, "leave:"+conversationID)
}

func (t *fakeTransport) OnMessage(handler func(models.Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = handler
}

func (t *fakeTransport) Status() <-chan chatsync.Status { return t.statusCh }

// push delivers a message the way the real channel would: through the
// registered handler.
func (t *fakeTransport) push(msg models.Message) {
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()
	if handler != nil {
		handler(msg)
	}
}

func (t *fakeTransport) reportStatus(s chatsync.Status) {
	t.statusCh <- s
}

func (t *fakeTransport) opsSnapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.ops))
	copy(out, t.ops)
	return out
}

// fakeAPI serves canned snapshots, optionally holding a fetch open until
// the test releases it, and records sent messages.
type fakeAPI struct {
	mu         sync.Mutex
	snapshots  map[string][]models.Message
	fetchErrs  map[string]error
	gates      map[string]chan struct{}
	fetchCount map[string]int

	sent    []string
	sendErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		snapshots:  make(map[string][]models.Message),
		fetchErrs:  make(map[string]error),
		gates:      make(map[string]chan struct{}),
		fetchCount: make(map[string]int),
	}
}

func (a *fakeAPI) setSnapshot(conversationID string, msgs []models.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshots[conversationID] = msgs
}

// gate makes the next ListMessages for the conversation block until the
// returned function is called.
func (a *fakeAPI) gate(conversationID string) func() {
	ch := make(chan struct{})
	a.mu.Lock()
	a.gates[conversationID] = ch
	a.mu.Unlock()
	return func() { close(ch) }
}

func (a *fakeAPI) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	a.mu.Lock()
	gate := a.gates[conversationID]
	a.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetchCount[conversationID]++
	if err := a.fetchErrs[conversationID]; err != nil {
		return nil, err
	}
	out := make([]models.Message, len(a.snapshots[conversationID]))
	copy(out, a.snapshots[conversationID])
	return out, nil
}

func (a *fakeAPI) CreateMessage(ctx context.Context, conversationID, content string) (*models.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sendErr != nil {
		return nil, a.sendErr
	}
	a.sent = append(a.sent, content)
	return &models.Message{
		ID:             "server-assigned",
		ConversationID: conversationID,
		Content:        content,
		CreatedAt:      time.Now(),
	}, nil
}

func (a *fakeAPI) fetches(conversationID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fetchCount[conversationID]
}

func msg(id, conversationID string, t int64) models.Message {
	return models.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       "sender",
		Content:        "msg " + id,
		CreatedAt:      time.Unix(t, 0).UTC(),
	}
}
