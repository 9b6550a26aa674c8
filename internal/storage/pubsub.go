package storage

import (
	"encoding/json"

	"mentorlink/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// broadcastChannel is the Redis Pub/Sub channel every service instance
// listens on. Fan-out to individual rooms happens in the hub, not here.
const broadcastChannel = "chat:broadcast"

// PublishMessage broadcasts a newly created message to all service
// instances via Redis Pub/Sub.
func (s *Service) PublishMessage(msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, broadcastChannel, payload).Err()
}

// SubscribeBroadcast subscribes to the shared broadcast channel. The caller
// owns the returned PubSub and must Close it.
func (s *Service) SubscribeBroadcast() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, broadcastChannel)
}
