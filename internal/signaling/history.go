package signaling

import (
	"sync"
	"time"
)

// ChatMessage is a single chat entry. Immutable once appended; log-append
// order is also delivery order.
type ChatMessage struct {
	Room       string
	OriginConn string
	Sender     string
	Body       string
	SentAt     time.Time
}

// ChatHistoryStore keeps an append-only chat log per room, replayed in
// order to late joiners. Logs live and die with their room.
type ChatHistoryStore struct {
	mu   sync.RWMutex
	logs map[string][]ChatMessage
}

func NewChatHistoryStore() *ChatHistoryStore {
	return &ChatHistoryStore{logs: make(map[string][]ChatMessage)}
}

func (s *ChatHistoryStore) Append(roomID string, msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[roomID] = append(s.logs[roomID], msg)
}

// History returns a snapshot of a room's log, so appends racing with an
// in-flight replay never retroactively change what the replay delivers.
// Unknown rooms yield an empty slice.
func (s *ChatHistoryStore) History(roomID string) []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[roomID]
	if len(log) == 0 {
		return nil
	}
	out := make([]ChatMessage, len(log))
	copy(out, log)
	return out
}

// Drop discards a room's log. Called when the room's last member leaves;
// a later join with the same room id starts from an empty history.
func (s *ChatHistoryStore) Drop(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.logs, roomID)
}
