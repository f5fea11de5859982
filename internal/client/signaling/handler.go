package signaling

import (
	"github.com/neelgujarathi/ZoomProject/internal/signaling"
)

// PeerJoinedEvent carries the id of a peer that entered the room plus the
// room's full member list as the server saw it at that moment.
type PeerJoinedEvent struct {
	ID      string
	Members []string
}

// ChatEvent is a delivered chat message; From is the originating
// connection id, which is how the UI tells its own echoes apart.
type ChatEvent struct {
	Body   string
	Sender string
	From   string
}

// Handler routes incoming signaling messages to appropriate channels.
//
// The event channels are never closed; Start may still be routing when a
// consumer stops reading. Shutdown is signalled solely through Done, so
// consumers select on it and simply stop receiving.
type Handler struct {
	client          *Client
	Welcome         chan string
	ExistingMembers chan []string
	PeerJoined      chan *PeerJoinedEvent
	PeerLeft        chan string
	Signal          chan *signaling.SignalEvent
	Chat            chan *ChatEvent
	Error           chan string

	// Done is closed when the server connection ends for any reason.
	Done chan struct{}
}

// NewHandler creates a new message handler.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:          client,
		Welcome:         make(chan string, 1),
		ExistingMembers: make(chan []string, 1),
		PeerJoined:      make(chan *PeerJoinedEvent, 8),
		PeerLeft:        make(chan string, 8),
		Signal:          make(chan *signaling.SignalEvent, 32),
		Chat:            make(chan *ChatEvent, 32),
		Error:           make(chan string, 1),
		Done:            make(chan struct{}),
	}
}

// Start begins listening to incoming messages and routing them. Returns
// when the connection closes.
func (h *Handler) Start() {
	defer close(h.Done)

	for msg := range h.client.Incoming() {

		switch msg.Type {

		case signaling.MessageTypeWelcome:
			h.Welcome <- msg.ID

		case signaling.MessageTypeExistingMembers:
			h.ExistingMembers <- msg.Members

		case signaling.MessageTypePeerJoined:
			h.PeerJoined <- &PeerJoinedEvent{ID: msg.From, Members: msg.Members}

		case signaling.MessageTypePeerLeft:
			h.PeerLeft <- msg.From

		case signaling.MessageTypeSignal:
			h.Signal <- &signaling.SignalEvent{From: msg.From, Payload: msg.Payload}

		case signaling.MessageTypeChat:
			h.Chat <- &ChatEvent{Body: msg.Body, Sender: msg.Sender, From: msg.From}

		case signaling.MessageTypeError:
			h.Error <- msg.Body

		default:

		}
	}
}
