package signaling

import "encoding/json"

// Message defines the structure for all C2S (Client to Server)
// and S2C (Server to Client) websocket messages.
type Message struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"room_id,omitempty"`
	ID      string          `json:"id,omitempty"`
	To      string          `json:"to,omitempty"`
	From    string          `json:"from,omitempty"`
	Body    string          `json:"body,omitempty"`
	Sender  string          `json:"sender,omitempty"`
	Members []string        `json:"members,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants.
const (
	// Client to server.
	MessageTypeJoin   = "join"
	MessageTypeSignal = "signal"
	MessageTypeChat   = "chat"

	// Server to client. MessageTypeSignal is shared on the wire; the
	// two directions are kept apart in code via SignalRequest and
	// SignalEvent so a forwarded signal can never be confused with a
	// client-originated one.
	MessageTypeWelcome         = "welcome"
	MessageTypeExistingMembers = "existing-members"
	MessageTypePeerJoined      = "peer-joined"
	MessageTypePeerLeft        = "peer-left"
	MessageTypeError           = "error"
)

// SignalRequest is the client-originated half of the signal exchange:
// a connection asks the relay to deliver an opaque payload to a named
// target connection. The relay never parses Payload.
type SignalRequest struct {
	To      string
	Payload json.RawMessage
}

// SignalEvent is the server-forwarded half: the same opaque payload,
// tagged with the sending connection's id.
type SignalEvent struct {
	From    string
	Payload json.RawMessage
}

func welcomeMessage(connID string) *Message {
	return &Message{Type: MessageTypeWelcome, ID: connID}
}

func existingMembersMessage(members []string) *Message {
	return &Message{Type: MessageTypeExistingMembers, Members: members}
}

func peerJoinedMessage(connID string, members []string) *Message {
	return &Message{Type: MessageTypePeerJoined, From: connID, Members: members}
}

func peerLeftMessage(connID string) *Message {
	return &Message{Type: MessageTypePeerLeft, From: connID}
}

func signalEventMessage(ev SignalEvent) *Message {
	return &Message{Type: MessageTypeSignal, From: ev.From, Payload: ev.Payload}
}

func chatMessage(msg ChatMessage) *Message {
	return &Message{
		Type:   MessageTypeChat,
		Body:   msg.Body,
		Sender: msg.Sender,
		From:   msg.OriginConn,
	}
}
