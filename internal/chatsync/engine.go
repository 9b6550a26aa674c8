// Package chatsync keeps a client's view of a conversation consistent with
// the concurrently updated server-side log. It combines a point-in-time
// REST snapshot with pushed events scoped to a per-conversation room:
// selecting a conversation leaves the previous room, joins the new one,
// re-fetches the snapshot and merges late or early push events into one
// ordered, deduplicated message log.
package chatsync

import (
	"context"
	"sync"

	"mentorlink/backend/internal/models"

	"go.uber.org/zap"
)

// apiClient is the slice of the REST client the engine itself needs.
// *chatapi.Client satisfies it.
type apiClient interface {
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	messageSender
}

// Engine drives the five synchronization parts: the transport channel, the
// room membership state machine, the message log, and via its event loop
// the merge of fetch results and push events. All room and log mutations
// happen on that single loop; fetches and sends complete asynchronously
// and re-enter as events.
type Engine struct {
	api       apiClient
	transport Transport
	log       *MessageLog
	room      *membership

	// gen tags each snapshot fetch with the room transition that issued
	// it, so a late result for a superseded room cannot land in the
	// current log. Touched only on the event loop.
	gen uint64

	events   chan event
	notices  chan error
	updates  chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger
}

type event interface{ isEvent() }

type selectEvent struct{ conversationID string }
type clearEvent struct{}
type pushEvent struct{ msg models.Message }
type statusEvent struct{ status Status }
type fetchResult struct {
	conversationID string
	gen            uint64
	msgs           []models.Message
	err            error
}

func (selectEvent) isEvent() {}
func (clearEvent) isEvent()  {}
func (pushEvent) isEvent()   {}
func (statusEvent) isEvent() {}
func (fetchResult) isEvent() {}

func NewEngine(api apiClient, transport Transport, logger *zap.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		api:       api,
		transport: transport,
		log:       NewMessageLog(),
		room:      newMembership(transport),
		events:    make(chan event, 64),
		notices:   make(chan error, 16),
		updates:   make(chan struct{}, 1),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Start connects the push channel, registers the engine as its single
// message handler and begins the event loop.
func (e *Engine) Start() error {
	if err := e.transport.Connect(); err != nil {
		return err
	}

	e.transport.OnMessage(func(msg models.Message) {
		e.submit(pushEvent{msg: msg})
	})

	go e.forwardStatus()
	go e.run()
	return nil
}

// Stop leaves the active room, tears down the push channel and stops the
// event loop. The engine cannot be restarted.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.room.Clear()
		e.cancel()
		e.transport.Teardown()
		close(e.done)
	})
}

// SelectConversation makes the given conversation the active one: the old
// room is left, the new one joined, and a fresh snapshot fetch is issued.
func (e *Engine) SelectConversation(conversationID string) {
	e.submit(selectEvent{conversationID: conversationID})
}

// CloseConversation leaves the active room, e.g. when navigating away from
// the chat view. The log is cleared.
func (e *Engine) CloseConversation() {
	e.submit(clearEvent{})
}

// Log returns the current ordered message log of the active conversation.
func (e *Engine) Log() []models.Message {
	return e.log.Snapshot()
}

// ActiveConversation returns the currently joined conversation, if any.
func (e *Engine) ActiveConversation() (string, bool) {
	return e.room.Current()
}

// Notifications surfaces non-fatal failures (FetchError, ChannelError).
// The channel is buffered and drops on overflow.
func (e *Engine) Notifications() <-chan error {
	return e.notices
}

// Updates fires (coalesced) whenever the visible log changes.
func (e *Engine) Updates() <-chan struct{} {
	return e.updates
}

func (e *Engine) submit(ev event) {
	select {
	case e.events <- ev:
	case <-e.done:
	}
}

func (e *Engine) forwardStatus() {
	for {
		select {
		case s := <-e.transport.Status():
			e.submit(statusEvent{status: s})
		case <-e.done:
			return
		}
	}
}

// run is the single goroutine that owns room and log state.
func (e *Engine) run() {
	for {
		select {
		case ev := <-e.events:
			e.handle(ev)
		case <-e.done:
			return
		}
	}
}

func (e *Engine) handle(ev event) {
	switch ev := ev.(type) {
	case selectEvent:
		if !e.room.Select(ev.conversationID) {
			return
		}
		e.gen++
		e.log.Reset(ev.conversationID)
		e.signalUpdate()
		go e.fetch(ev.conversationID, e.gen)

	case clearEvent:
		e.room.Clear()
		e.gen++
		e.log.Reset("")
		e.signalUpdate()

	case pushEvent:
		current, joined := e.room.Current()
		if !joined || ev.msg.ConversationID != current {
			// Events for a non-active room are dropped. Correct only
			// while at most one room is joined at a time.
			return
		}
		if e.log.Append(ev.msg) {
			e.signalUpdate()
		}

	case fetchResult:
		current, joined := e.room.Current()
		if !joined || current != ev.conversationID || ev.gen != e.gen {
			e.logger.Debug("discarding stale snapshot",
				zap.String("conversation_id", ev.conversationID))
			return
		}
		if ev.err != nil {
			e.notify(&FetchError{ConversationID: ev.conversationID, Err: ev.err})
			return
		}
		e.log.MergeSnapshot(ev.msgs)
		e.signalUpdate()

	case statusEvent:
		e.handleStatus(ev.status)
	}
}

// handleStatus implements the reconnect policy: the server forgets room
// subscriptions on disconnect, so after a reconnect the engine re-joins the
// active room and re-fetches its snapshot under a fresh generation.
func (e *Engine) handleStatus(s Status) {
	switch s {
	case StatusDisconnected:
		e.notify(&ChannelError{Err: errChannelDown})
	case StatusReconnected:
		e.room.Rejoin()
		if current, joined := e.room.Current(); joined {
			e.gen++
			go e.fetch(current, e.gen)
		}
	}
}

func (e *Engine) fetch(conversationID string, gen uint64) {
	msgs, err := e.api.ListMessages(e.ctx, conversationID)
	e.submit(fetchResult{
		conversationID: conversationID,
		gen:            gen,
		msgs:           msgs,
		err:            err,
	})
}

func (e *Engine) notify(err error) {
	e.logger.Warn("sync failure", zap.Error(err))
	select {
	case e.notices <- err:
	default:
	}
}

func (e *Engine) signalUpdate() {
	select {
	case e.updates <- struct{}{}:
	default:
	}
}
