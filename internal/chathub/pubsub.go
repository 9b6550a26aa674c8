package chathub

import (
	"encoding/json"

	"mentorlink/backend/internal/models"

	"go.uber.org/zap"
)

// StartPubSubListener starts a goroutine that relays messages from the
// shared Redis broadcast channel into the hub's dispatch loop. Other
// instances of the service publish there after persisting a message, so
// every instance can deliver to its locally connected room members.
func (m *ManagerService) StartPubSubListener() {
	if m.Storage == nil {
		// Single-instance deployments and tests feed PubSubCh directly.
		return
	}
	go func() {
		pubsub := m.Storage.SubscribeBroadcast()
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var chatMsg models.Message
				if err := json.Unmarshal([]byte(msg.Payload), &chatMsg); err != nil {
					m.logger.Error("unmarshal broadcast payload", zap.Error(err))
					continue
				}
				select {
				case m.PubSubCh <- chatMsg:
				case <-m.done:
					return
				}
			case <-m.done:
				return
			}
		}
	}()
}
