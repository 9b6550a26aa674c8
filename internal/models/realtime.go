package models

// Push-channel frame types.
const (
	FrameJoinRoom       = "join_room"
	FrameLeaveRoom      = "leave_room"
	FrameReceiveMessage = "receive_message"
)

// ClientFrame is what a client writes on the push channel: a room
// subscription change. Fire-and-forget, no acknowledgement is sent back.
type ClientFrame struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

// ServerFrame is what the server pushes to room members when a new
// message lands in their conversation.
type ServerFrame struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}
