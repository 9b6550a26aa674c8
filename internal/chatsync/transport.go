package chatsync

import (
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"mentorlink/backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Status describes a transition of the push channel's connection.
type Status int

const (
	// StatusConnected is reported once after the initial Connect succeeds.
	StatusConnected Status = iota
	// StatusDisconnected is reported when the connection drops; the
	// channel keeps redialing on its own.
	StatusDisconnected
	// StatusReconnected is reported after a successful redial. Room
	// subscriptions are gone at this point and must be re-issued.
	StatusReconnected
)

// Transport is the long-lived bidirectional connection to the messaging
// service. One connection exists per session, independent of which
// conversation is open. JoinRoom and LeaveRoom are fire-and-forget; inbound
// pushes go to the single handler registered with OnMessage.
type Transport interface {
	Connect() error
	Teardown()
	JoinRoom(conversationID string)
	LeaveRoom(conversationID string)
	OnMessage(handler func(models.Message))
	Status() <-chan Status
}

const (
	transportWriteWait   = 10 * time.Second
	redialInitialBackoff = 500 * time.Millisecond
	redialMaxBackoff     = 10 * time.Second
)

// Channel implements Transport over gorilla/websocket.
type Channel struct {
	endpoint string
	token    string

	mu      sync.RWMutex
	conn    *websocket.Conn
	handler func(models.Message)

	outbound chan models.ClientFrame
	status   chan Status
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup

	logger *zap.Logger
}

// NewChannel builds a push channel for the given ws endpoint, e.g.
// "ws://host:8080/ws". The token authenticates the upgrade request.
func NewChannel(endpoint, token string, logger *zap.Logger) *Channel {
	return &Channel{
		endpoint: endpoint,
		token:    token,
		outbound: make(chan models.ClientFrame, 16),
		status:   make(chan Status, 4),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Connect dials the push channel and starts the read and write pumps.
// It must be called exactly once per session.
func (c *Channel) Connect() error {
	conn, err := c.dial()
	if err != nil {
		return &ChannelError{Err: err}
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.notifyStatus(StatusConnected)

	c.wg.Add(2)
	go c.readPump()
	go c.writePump()

	return nil
}

// Teardown closes the connection deterministically. Safe to call more
// than once.
func (c *Channel) Teardown() {
	c.doneOnce.Do(func() {
		close(c.done)
	})

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// JoinRoom subscribes the session to a conversation room. No
// acknowledgement is awaited.
func (c *Channel) JoinRoom(conversationID string) {
	c.enqueue(models.ClientFrame{Type: models.FrameJoinRoom, Room: conversationID})
}

// LeaveRoom removes the session from a conversation room.
func (c *Channel) LeaveRoom(conversationID string) {
	c.enqueue(models.ClientFrame{Type: models.FrameLeaveRoom, Room: conversationID})
}

// OnMessage registers the single active push handler, replacing any
// previous one atomically.
func (c *Channel) OnMessage(handler func(models.Message)) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

// Status reports connection transitions. The channel is buffered; the
// consumer should drain it promptly.
func (c *Channel) Status() <-chan Status {
	return c.status
}

func (c *Channel) dial() (*websocket.Conn, error) {
	u := c.endpoint
	if c.token != "" {
		u += "?token=" + url.QueryEscape(c.token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	return conn, err
}

func (c *Channel) enqueue(frame models.ClientFrame) {
	select {
	case c.outbound <- frame:
	case <-c.done:
	}
}

func (c *Channel) notifyStatus(s Status) {
	select {
	case c.status <- s:
	default:
		// A slow consumer loses intermediate transitions, never the
		// connection itself.
	}
}

// readPump delivers inbound frames to the registered handler. When the
// connection drops it redials with capped backoff until Teardown.
func (c *Channel) readPump() {
	defer c.wg.Done()

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}

			c.logger.Warn("push channel dropped", zap.Error(err))
			c.notifyStatus(StatusDisconnected)

			if !c.redial() {
				return
			}
			c.notifyStatus(StatusReconnected)
			continue
		}

		var frame models.ServerFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.Warn("bad push frame", zap.Error(err))
			continue
		}
		if frame.Type != models.FrameReceiveMessage {
			continue
		}

		c.mu.RLock()
		handler := c.handler
		c.mu.RUnlock()

		if handler != nil {
			handler(frame.Message)
		}
	}
}

// redial keeps trying to re-establish the connection. Returns false if
// Teardown happened first.
func (c *Channel) redial() bool {
	backoff := redialInitialBackoff

	for {
		select {
		case <-c.done:
			return false
		case <-time.After(backoff):
		}

		conn, err := c.dial()
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
			c.logger.Info("push channel reconnected")
			return true
		}

		c.logger.Warn("redial failed", zap.Error(err))
		if backoff *= 2; backoff > redialMaxBackoff {
			backoff = redialMaxBackoff
		}
	}
}

// writePump serializes outbound subscription frames onto the socket.
func (c *Channel) writePump() {
	defer c.wg.Done()

	for {
		select {
		case frame := <-c.outbound:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				return
			}

			data, err := json.Marshal(frame)
			if err != nil {
				c.logger.Error("encode frame", zap.Error(err))
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(transportWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				// The read pump owns recovery; the frame is lost, which
				// is why the engine re-joins after StatusReconnected.
				c.logger.Warn("write failed", zap.Error(err))
			}

		case <-c.done:
			return
		}
	}
}
