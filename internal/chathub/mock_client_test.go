package chathub_test

import (
	"mentorlink/backend/internal/models"
)

type MockClient struct {
	userID      string
	roomID      string
	closed      bool
	RecvChannel chan models.Message
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID:      userID,
		RecvChannel: make(chan models.Message, 10),
	}
}

func (c *MockClient) GetUserID() string {
	return c.userID
}

func (c *MockClient) GetRoomID() string {
	return c.roomID
}

func (c *MockClient) SetRoomID(roomID string) {
	c.roomID = roomID
}

func (c *MockClient) GetSendChannel() chan<- models.Message {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed = true
}
