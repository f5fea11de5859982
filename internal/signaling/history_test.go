package signaling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func entry(room, conn, body string) ChatMessage {
	return ChatMessage{
		Room:       room,
		OriginConn: conn,
		Sender:     "alice",
		Body:       body,
		SentAt:     time.Now(),
	}
}

func TestHistory_AppendOrderIsPreserved(t *testing.T) {
	req := require.New(t)
	store := NewChatHistoryStore()

	store.Append("room1", entry("room1", "a", "first"))
	store.Append("room1", entry("room1", "b", "second"))
	store.Append("room1", entry("room1", "a", "third"))

	log := store.History("room1")
	req.Len(log, 3)
	req.Equal("first", log[0].Body)
	req.Equal("second", log[1].Body)
	req.Equal("third", log[2].Body)
}

func TestHistory_UnknownRoomIsEmpty(t *testing.T) {
	require.Empty(t, NewChatHistoryStore().History("nowhere"))
}

func TestHistory_SnapshotIsStable(t *testing.T) {
	req := require.New(t)
	store := NewChatHistoryStore()

	store.Append("room1", entry("room1", "a", "first"))
	snapshot := store.History("room1")
	store.Append("room1", entry("room1", "b", "second"))

	// Appends after a read never leak into an in-flight replay.
	req.Len(snapshot, 1)
	req.Len(store.History("room1"), 2)
}

func TestHistory_DropForgetsTheRoom(t *testing.T) {
	req := require.New(t)
	store := NewChatHistoryStore()

	store.Append("room1", entry("room1", "a", "first"))
	store.Drop("room1")
	req.Empty(store.History("room1"))
}
