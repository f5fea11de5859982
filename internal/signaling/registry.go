package signaling

import "sync"

// ConnectionRegistry is the single source of truth for which room a
// connection belongs to. It exists so the hub can resolve a sender's room
// in O(1) instead of scanning every room's member list, which is what
// chat delivery would otherwise cost on every message.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	rooms map[string]string // connId -> roomId ("" until assigned)
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{rooms: make(map[string]string)}
}

// Register records a connection that is not in any room yet.
func (r *ConnectionRegistry) Register(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[connID]; !ok {
		r.rooms[connID] = ""
	}
}

// Assign binds a connection to a room. A connection belongs to one room
// for its whole lifetime; assigning an already-assigned connection is a
// no-op, which makes Assign idempotent.
func (r *ConnectionRegistry) Assign(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.rooms[connID]; !ok || current != "" {
		return
	}
	r.rooms[connID] = roomID
}

// RoomOf returns the room a connection is assigned to. The second return
// is false when the connection is unknown or not in a room.
func (r *ConnectionRegistry) RoomOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.rooms[connID]
	if !ok || roomID == "" {
		return "", false
	}
	return roomID, true
}

// Unregister removes a connection. O(1) with respect to the total number
// of connections and rooms.
func (r *ConnectionRegistry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, connID)
}
