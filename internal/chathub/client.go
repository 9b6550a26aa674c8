package chathub

import "mentorlink/backend/internal/models"

// Client is the interface for one connected push-channel peer. It abstracts
// the underlying transport so the hub can manage connections uniformly.
type Client interface {
	// GetUserID returns the unique identifier for the user associated with the client.
	GetUserID() string
	// GetRoomID returns the identifier of the conversation room the client is
	// currently subscribed to, or "" when it has not joined one.
	GetRoomID() string
	// SetRoomID assigns the client to a conversation room. Called by the hub
	// when a join_room or leave_room frame arrives.
	SetRoomID(string)

	// GetSendChannel returns the channel the hub writes messages to for
	// delivery to this specific client. It is a send-only channel.
	GetSendChannel() chan<- models.Message

	// Run starts the client's read and write pumps.
	Run()
	// Close gracefully shuts down the client's connection and associated channels.
	Close()
}
