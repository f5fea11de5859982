package signaling

import (
	"sync"

	"github.com/samber/lo"
)

// Room groups the connections of one call. Member order is join order,
// which keeps notification contents deterministic.
//
// Room does no locking of its own: the hub takes r.mu for the whole of
// every join/leave/chat sequence touching the room, so a "joined" and a
// "left" notification for the same connection can never race past each
// other in an inconsistent order. Operations on different rooms run in
// parallel.
type Room struct {
	ID string

	// mu serializes every event touching this room. Held by the hub,
	// never by Room methods themselves. Never acquired while the hub
	// lock is held.
	mu sync.Mutex

	// purged marks a room whose last member left. The directory entry is
	// pruned afterwards; a join that raced in between sees the tombstone
	// and starts over with a fresh room.
	purged bool

	members []string
	clients map[string]*Client
}

func newRoom(id string) *Room {
	return &Room{
		ID:      id,
		clients: make(map[string]*Client),
	}
}

func (r *Room) add(c *Client) {
	if _, ok := r.clients[c.ID]; ok {
		return
	}
	r.members = append(r.members, c.ID)
	r.clients[c.ID] = c
}

// remove drops a member and returns the remaining ids in join order.
func (r *Room) remove(connID string) []string {
	if _, ok := r.clients[connID]; !ok {
		return r.memberIDs()
	}
	delete(r.clients, connID)
	r.members = lo.Without(r.members, connID)
	return r.memberIDs()
}

func (r *Room) memberIDs() []string {
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out
}

func (r *Room) memberIDsExcept(connID string) []string {
	return lo.Filter(r.memberIDs(), func(id string, _ int) bool {
		return id != connID
	})
}

func (r *Room) clientsExcept(connID string) []*Client {
	out := make([]*Client, 0, len(r.members))
	for _, id := range r.members {
		if id == connID {
			continue
		}
		out = append(out, r.clients[id])
	}
	return out
}

func (r *Room) clientList() []*Client {
	out := make([]*Client, 0, len(r.members))
	for _, id := range r.members {
		out = append(out, r.clients[id])
	}
	return out
}

func (r *Room) isEmpty() bool {
	return len(r.members) == 0
}
