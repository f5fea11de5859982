package signaling

import (
	"log/slog"
	"sync"
	"time"
)

// Hub is the central brain of the signaling server. It owns the room
// directory, the connection registry and the chat history, and carries
// out the join/leave/forward/chat operations the clients ask for.
//
// Locking: h.mu guards the rooms and conns maps only, and is always
// released before a Room's mutex is taken, so a busy room never stalls
// directory lookups or events in other rooms. A room emptied between the
// two locks carries a tombstone (Room.purged) that joins detect and
// retry past. Delivery to a client is a non-blocking push into its
// buffered send queue, so no room state is ever held across network I/O.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	conns map[string]*Client

	registry *ConnectionRegistry
	history  *ChatHistoryStore

	log *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[string]*Room),
		conns:    make(map[string]*Client),
		registry: NewConnectionRegistry(),
		history:  NewChatHistoryStore(),
		log:      slog.Default(),
	}
}

// Register records a freshly upgraded connection and tells it its id.
// The connection is not in any room until it sends a join.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.registry.Register(c.ID)
	h.mu.Unlock()

	c.trySend(welcomeMessage(c.ID))
	h.log.Info("client registered", "conn", c.ID)
}

// Join puts a connection into a room, creating the room on first join.
//
// Ordering per event: existing members are told about the joiner first
// (with the full updated member list), then the joiner receives the
// members it should dial, then the room's chat backlog in append order.
// The joiner is the one who proposes to each existing member.
func (h *Hub) Join(c *Client, roomID string) {
	if roomID == "" {
		h.log.Warn("join with empty room id", "conn", c.ID)
		return
	}

	for {
		h.mu.Lock()
		if current, ok := h.registry.RoomOf(c.ID); ok {
			// Re-joining mid-session is not supported: a connection stays
			// in its room for life. Re-send the current view and move on.
			room := h.rooms[current]
			h.mu.Unlock()
			h.log.Warn("join ignored, connection already in a room",
				"conn", c.ID, "room", current, "requested", roomID)
			room.mu.Lock()
			c.trySend(existingMembersMessage(room.memberIDsExcept(c.ID)))
			room.mu.Unlock()
			return
		}

		room, ok := h.rooms[roomID]
		if !ok {
			room = newRoom(roomID)
			h.rooms[roomID] = room
			h.log.Info("room created", "room", roomID)
		}
		h.mu.Unlock()

		room.mu.Lock()
		if room.purged {
			// The last member left between the two locks. Prune the stale
			// directory entry and retry with a fresh room.
			room.mu.Unlock()
			h.pruneRoom(roomID, room)
			continue
		}
		h.registry.Assign(c.ID, roomID)

		existing := room.memberIDs()
		room.add(c)
		full := room.memberIDs()

		for _, member := range room.clientsExcept(c.ID) {
			member.trySend(peerJoinedMessage(c.ID, full))
		}
		c.trySend(existingMembersMessage(existing))
		for _, msg := range h.history.History(roomID) {
			c.trySend(chatMessage(msg))
		}
		room.mu.Unlock()

		h.log.Info("client joined room", "conn", c.ID, "room", roomID, "members", len(full))
		return
	}
}

// Forward relays an opaque signaling payload to the named target
// connection, tagged with the sender's id. The payload is never parsed.
// A missing target means the peer is gone; the message is dropped
// silently and the sender is not told (negotiation messages are only
// meaningful to a live session).
func (h *Hub) Forward(fromConn string, req SignalRequest) {
	h.mu.RLock()
	target := h.conns[req.To]
	h.mu.RUnlock()

	if target == nil {
		h.log.Debug("signal dropped, target not connected",
			"from", fromConn, "to", req.To)
		return
	}
	target.trySend(signalEventMessage(SignalEvent{From: fromConn, Payload: req.Payload}))
}

// Chat appends a message to the sender's room log and fans it out to
// every member, the sender included.
func (h *Hub) Chat(c *Client, body, sender string) {
	roomID, ok := h.registry.RoomOf(c.ID)
	if !ok {
		h.log.Warn("chat from connection outside any room", "conn", c.ID)
		return
	}

	h.mu.RLock()
	room := h.rooms[roomID]
	h.mu.RUnlock()
	if room == nil {
		return
	}

	room.mu.Lock()
	if room.purged {
		room.mu.Unlock()
		return
	}
	msg := ChatMessage{
		Room:       roomID,
		OriginConn: c.ID,
		Sender:     sender,
		Body:       body,
		SentAt:     time.Now(),
	}
	h.history.Append(roomID, msg)
	for _, member := range room.clientList() {
		member.trySend(chatMessage(msg))
	}
	room.mu.Unlock()
}

// Disconnect cleans up after a closed transport: the connection leaves
// its room, the remaining members hear about it, and the room (with its
// chat log) is deleted once empty. A connection that never joined a room
// is simply unregistered.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	delete(h.conns, c.ID)

	roomID, ok := h.registry.RoomOf(c.ID)
	h.registry.Unregister(c.ID)
	if !ok {
		h.mu.Unlock()
		h.log.Info("client unregistered", "conn", c.ID)
		return
	}
	room := h.rooms[roomID]
	h.mu.Unlock()

	room.mu.Lock()
	remaining := room.remove(c.ID)
	empty := room.isEmpty()
	if empty {
		room.purged = true
	}
	for _, member := range room.clientList() {
		member.trySend(peerLeftMessage(c.ID))
	}
	room.mu.Unlock()

	if empty && h.pruneRoom(roomID, room) {
		h.log.Info("room deleted", "room", roomID)
	}

	h.log.Info("client left room", "conn", c.ID, "room", roomID, "remaining", len(remaining))
}

// pruneRoom removes a tombstoned room from the directory along with its
// chat history. The identity check makes the prune exactly-once when a
// racing join has already replaced the entry. Reports whether this call
// did the pruning.
func (h *Hub) pruneRoom(roomID string, room *Room) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] != room {
		return false
	}
	delete(h.rooms, roomID)
	h.history.Drop(roomID)
	return true
}

// MemberIDs reports a room's membership in join order. Empty for unknown
// rooms.
func (h *Hub) MemberIDs(roomID string) []string {
	h.mu.RLock()
	room := h.rooms[roomID]
	h.mu.RUnlock()
	if room == nil {
		return nil
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.memberIDs()
}

// RoomCount reports how many rooms currently exist.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
