package chathub

import (
	"encoding/json"
	"time"

	"mentorlink/backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the chathub.Client interface over a
// gorilla/websocket connection.
type WebSocketClient struct {
	UserID string
	RoomID string
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan models.Message
	Logger *zap.Logger
}

func (c *WebSocketClient) GetUserID() string                     { return c.UserID }
func (c *WebSocketClient) GetRoomID() string                     { return c.RoomID }
func (c *WebSocketClient) SetRoomID(id string)                   { c.RoomID = id }
func (c *WebSocketClient) GetSendChannel() chan<- models.Message { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump and closes
// the underlying connection.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump reads subscription frames from the socket and hands them to the
// hub. Anything that is not a well-formed ClientFrame is skipped.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Warn("read error", zap.String("user_id", c.UserID), zap.Error(err))
			}
			break
		}

		var frame models.ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.Logger.Warn("bad frame", zap.String("user_id", c.UserID), zap.Error(err))
			continue
		}

		c.Hub.FrameCh <- RoomFrame{Client: c, Frame: frame}
	}
}

// writePump drains the Send channel onto the socket, wrapping each message
// in a receive_message frame, and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			frame := models.ServerFrame{Type: models.FrameReceiveMessage, Message: msg}
			data, err := json.Marshal(frame)
			if err != nil {
				c.Logger.Error("encode frame", zap.String("user_id", c.UserID), zap.Error(err))
				continue
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
