package chathub

import (
	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"

	"go.uber.org/zap"
)

// RoomFrame pairs an inbound subscription frame with the client that sent it.
type RoomFrame struct {
	Client Client
	Frame  models.ClientFrame
}

// ManagerService owns the set of connected clients and fans pushed messages
// out to the members of the matching room. All state mutations happen inside
// Run's loop; other goroutines only write to the channels.
type ManagerService struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	FrameCh      chan RoomFrame
	PubSubCh     chan models.Message

	Storage storage.Storage

	logger *zap.Logger
	done   chan struct{}
}

func NewManagerService(s storage.Storage, logger *zap.Logger) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		FrameCh:      make(chan RoomFrame),
		PubSubCh:     make(chan models.Message),
		Storage:      s,
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// Run is the hub's dispatch loop. It must be started exactly once.
func (m *ManagerService) Run() {
	m.StartPubSubListener()

	for {
		select {
		case client := <-m.RegisterCh:
			if old, ok := m.Clients[client.GetUserID()]; ok {
				// A reconnect replaces the previous connection.
				old.Close()
			}
			m.Clients[client.GetUserID()] = client
			m.logger.Info("client registered", zap.String("user_id", client.GetUserID()))

		case client := <-m.UnregisterCh:
			if current, ok := m.Clients[client.GetUserID()]; ok && current == client {
				delete(m.Clients, client.GetUserID())
				client.Close()
				m.logger.Info("client unregistered", zap.String("user_id", client.GetUserID()))
			}

		case rf := <-m.FrameCh:
			m.handleFrame(rf)

		case msg := <-m.PubSubCh:
			m.broadcast(msg)

		case <-m.done:
			return
		}
	}
}

// Stop terminates the dispatch loop.
func (m *ManagerService) Stop() {
	close(m.done)
}

func (m *ManagerService) handleFrame(rf RoomFrame) {
	switch rf.Frame.Type {
	case models.FrameJoinRoom:
		rf.Client.SetRoomID(rf.Frame.Room)
		m.logger.Info("client joined room",
			zap.String("user_id", rf.Client.GetUserID()),
			zap.String("room", rf.Frame.Room))
	case models.FrameLeaveRoom:
		// Ignore a stale leave for a room the client already left.
		if rf.Client.GetRoomID() == rf.Frame.Room {
			rf.Client.SetRoomID("")
		}
		m.logger.Info("client left room",
			zap.String("user_id", rf.Client.GetUserID()),
			zap.String("room", rf.Frame.Room))
	default:
		m.logger.Warn("unknown frame type",
			zap.String("user_id", rf.Client.GetUserID()),
			zap.String("type", rf.Frame.Type))
	}
}

// broadcast delivers a message to every local client subscribed to the
// message's conversation room.
func (m *ManagerService) broadcast(msg models.Message) {
	for _, client := range m.Clients {
		if client.GetRoomID() != msg.ConversationID {
			continue
		}
		select {
		case client.GetSendChannel() <- msg:
		default:
			// Slow consumer: drop the connection rather than block the hub.
			m.logger.Warn("send buffer full, dropping client",
				zap.String("user_id", client.GetUserID()))
			delete(m.Clients, client.GetUserID())
			client.Close()
		}
	}
}
