package chatsync

import (
	"errors"
	"fmt"
)

// errChannelDown marks the period between a drop and the next successful
// redial; room state may be stale until then.
var errChannelDown = errors.New("connection lost, reconnecting")

// ValidationError reports a message rejected before it was ever sent.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "chatsync: " + e.Reason
}

// FetchError reports a failed snapshot fetch. The log keeps whatever it
// already holds; retry is manual via re-selecting the conversation.
type FetchError struct {
	ConversationID string
	Err            error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("chatsync: snapshot fetch for %s failed: %v", e.ConversationID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DeliveryError reports a failed send. The caller keeps the composed
// content; no automatic retry is attempted.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("chatsync: message delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// ChannelError reports trouble on the push channel. The transport keeps
// retrying on its own; the engine re-joins and re-fetches once it recovers.
type ChannelError struct {
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("chatsync: push channel error: %v", e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }
