package signaling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestClient builds a client with no websocket behind it; the hub only
// ever touches ID and the send queue.
func newTestClient(id string) *Client {
	return &Client{
		ID:   id,
		Send: make(chan *Message, 64),
		done: make(chan struct{}),
	}
}

func drain(c *Client) []*Message {
	var out []*Message
	for {
		select {
		case m := <-c.Send:
			out = append(out, m)
		default:
			return out
		}
	}
}

func register(h *Hub, id string) *Client {
	c := newTestClient(id)
	h.Register(c)
	drain(c) // discard the welcome
	return c
}

func TestHub_WelcomeCarriesConnID(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	c := newTestClient("A")
	h.Register(c)

	msgs := drain(c)
	req.Len(msgs, 1)
	req.Equal(MessageTypeWelcome, msgs[0].Type)
	req.Equal("A", msgs[0].ID)
}

func TestHub_FirstJoinerGetsEmptyMemberList(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")

	h.Join(a, "room1")

	msgs := drain(a)
	req.Len(msgs, 1)
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
	req.Empty(msgs[0].Members)
	req.Equal([]string{"A"}, h.MemberIDs("room1"))
}

func TestHub_JoinNotifiesInJoinOrder(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	b := register(h, "B")
	c := register(h, "C")

	h.Join(a, "room1")
	h.Join(b, "room1")
	drain(a)
	drain(b)

	h.Join(c, "room1")

	// Pre-existing members hear about the joiner with the full list.
	for _, member := range []*Client{a, b} {
		msgs := drain(member)
		req.Len(msgs, 1)
		req.Equal(MessageTypePeerJoined, msgs[0].Type)
		req.Equal("C", msgs[0].From)
		req.Equal([]string{"A", "B", "C"}, msgs[0].Members)
	}

	// The joiner gets everyone but itself, in join order.
	msgs := drain(c)
	req.Len(msgs, 1)
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
	req.Equal([]string{"A", "B"}, msgs[0].Members)
}

func TestHub_LateJoinerReceivesHistoryBeforeNewChat(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	h.Join(a, "room1")
	drain(a)

	h.Chat(a, "hello", "alice")
	h.Chat(a, "anyone there?", "alice")
	drain(a)

	b := register(h, "B")
	h.Join(b, "room1")
	h.Chat(a, "hi b", "alice")

	msgs := drain(b)
	req.Len(msgs, 4) // existing-members, two replayed entries, live chat
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
	req.Equal("hello", msgs[1].Body)
	req.Equal("anyone there?", msgs[2].Body)
	req.Equal("hi b", msgs[3].Body)
}

func TestHub_ChatReachesEveryMemberIncludingSender(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	b := register(h, "B")
	h.Join(a, "room1")
	h.Join(b, "room1")
	drain(a)
	drain(b)

	h.Chat(a, "hi", "alice")

	for _, member := range []*Client{a, b} {
		msgs := drain(member)
		req.Len(msgs, 1)
		req.Equal(MessageTypeChat, msgs[0].Type)
		req.Equal("hi", msgs[0].Body)
		req.Equal("alice", msgs[0].Sender)
		req.Equal("A", msgs[0].From)
	}
}

func TestHub_ChatOutsideAnyRoomIsDropped(t *testing.T) {
	h := NewHub()
	a := register(h, "A")

	h.Chat(a, "into the void", "alice")
	require.Empty(t, drain(a))
}

func TestHub_ForwardDeliversTaggedPayload(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	b := register(h, "B")
	h.Join(a, "room1")
	h.Join(b, "room1")
	drain(a)
	drain(b)

	payload := json.RawMessage(`{"sdp":{"type":"offer","sdp":"v=0"}}`)
	h.Forward("A", SignalRequest{To: "B", Payload: payload})

	msgs := drain(b)
	req.Len(msgs, 1)
	req.Equal(MessageTypeSignal, msgs[0].Type)
	req.Equal("A", msgs[0].From)
	req.JSONEq(string(payload), string(msgs[0].Payload))
	req.Empty(drain(a))
}

func TestHub_ForwardToDisconnectedTargetIsSilent(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	b := register(h, "B")
	h.Join(a, "room1")
	h.Join(b, "room1")
	drain(a)
	drain(b)

	h.Forward("A", SignalRequest{To: "nobody", Payload: json.RawMessage(`{}`)})

	// The drop affects neither the sender nor later forwards.
	req.Empty(drain(a))
	h.Forward("A", SignalRequest{To: "B", Payload: json.RawMessage(`{}`)})
	req.Len(drain(b), 1)
}

func TestHub_DisconnectNotifiesRemainingAndPurgesEmptyRoom(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	b := register(h, "B")
	h.Join(a, "room1")
	h.Join(b, "room1")
	h.Chat(a, "hi", "alice")
	drain(a)
	drain(b)

	h.Disconnect(b)
	msgs := drain(a)
	req.Len(msgs, 1)
	req.Equal(MessageTypePeerLeft, msgs[0].Type)
	req.Equal("B", msgs[0].From)
	req.Equal([]string{"A"}, h.MemberIDs("room1"))

	h.Disconnect(a)
	req.Empty(h.MemberIDs("room1"))
	req.Zero(h.RoomCount())

	// A fresh join with the same room id starts with empty history.
	c := register(h, "C")
	h.Join(c, "room1")
	msgs = drain(c)
	req.Len(msgs, 1)
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
}

func TestHub_DisconnectWithoutRoomIsNoop(t *testing.T) {
	h := NewHub()
	a := register(h, "A")
	h.Disconnect(a)
	require.Zero(t, h.RoomCount())
}

func TestHub_RejoinDoesNotMoveConnection(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	h.Join(a, "room1")
	drain(a)

	h.Join(a, "room2")
	req.Equal([]string{"A"}, h.MemberIDs("room1"))
	req.Empty(h.MemberIDs("room2"))

	// The connection is answered with its current view, not moved.
	msgs := drain(a)
	req.Len(msgs, 1)
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
}

// The end-to-end room1 scenario: A joins, B joins, A chats, B leaves,
// A leaves, room gone.
func TestHub_Room1Scenario(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	b := register(h, "B")

	h.Join(a, "room1")
	msgs := drain(a)
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
	req.Empty(msgs[0].Members)

	h.Join(b, "room1")
	msgs = drain(a)
	req.Equal(MessageTypePeerJoined, msgs[0].Type)
	req.Equal("B", msgs[0].From)
	req.Equal([]string{"A", "B"}, msgs[0].Members)
	msgs = drain(b)
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
	req.Equal([]string{"A"}, msgs[0].Members)

	h.Chat(a, "hi", "alice")
	for _, member := range []*Client{a, b} {
		msgs = drain(member)
		req.Len(msgs, 1)
		req.Equal("hi", msgs[0].Body)
		req.Equal("A", msgs[0].From)
	}

	h.Disconnect(b)
	msgs = drain(a)
	req.Equal(MessageTypePeerLeft, msgs[0].Type)
	req.Equal("B", msgs[0].From)

	h.Disconnect(a)
	req.Zero(h.RoomCount())
}

func TestHub_EmptiedRoomIsTombstonedAndReplaced(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	h.Join(a, "room1")
	h.Chat(a, "hi", "alice")
	drain(a)

	h.mu.RLock()
	stale := h.rooms["room1"]
	h.mu.RUnlock()

	h.Disconnect(a)
	req.True(stale.purged)
	req.Zero(h.RoomCount())

	b := register(h, "B")
	h.Join(b, "room1")
	h.mu.RLock()
	fresh := h.rooms["room1"]
	h.mu.RUnlock()
	req.NotSame(stale, fresh)
	req.Equal([]string{"B"}, h.MemberIDs("room1"))

	// No stale history is replayed into the replacement room.
	msgs := drain(b)
	req.Len(msgs, 1)
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
}

func TestHub_JoinRetriesPastTombstonedRoom(t *testing.T) {
	req := require.New(t)
	h := NewHub()
	a := register(h, "A")
	h.Join(a, "room1")
	h.Chat(a, "old", "alice")
	drain(a)

	// Freeze the moment where a disconnect has tombstoned the room but
	// not yet pruned the directory entry.
	h.mu.RLock()
	stale := h.rooms["room1"]
	h.mu.RUnlock()
	stale.mu.Lock()
	stale.remove("A")
	stale.purged = true
	stale.mu.Unlock()

	b := register(h, "B")
	h.Join(b, "room1")

	h.mu.RLock()
	fresh := h.rooms["room1"]
	h.mu.RUnlock()
	req.NotSame(stale, fresh)
	req.Equal([]string{"B"}, h.MemberIDs("room1"))

	msgs := drain(b)
	req.Len(msgs, 1)
	req.Equal(MessageTypeExistingMembers, msgs[0].Type)
	req.Empty(msgs[0].Members)
}
