package signaling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/neelgujarathi/ZoomProject/internal/signaling"
)

func TestHandlerRoutesChat(t *testing.T) {
	req := require.New(t)
	c := NewClient("ws://unused")
	h := NewHandler(c)
	go h.Start()

	c.incoming <- &signaling.Message{
		Type:   signaling.MessageTypeChat,
		Body:   "hello",
		Sender: "alice",
		From:   "conn-a",
	}

	select {
	case ev := <-h.Chat:
		req.NotNil(ev)
		req.Equal("hello", ev.Body)
		req.Equal("alice", ev.Sender)
		req.Equal("conn-a", ev.From)
	case <-time.After(time.Second):
		t.Fatal("chat event not delivered")
	}

	close(c.incoming)
	select {
	case <-h.Done:
	case <-time.After(time.Second):
		t.Fatal("handler did not signal shutdown")
	}
}

// Frames that arrive after the consumer has walked away must still route
// without incident, and the event channels must stay open through
// shutdown so a receive blocks rather than yielding nil events.
func TestHandlerShutdownLeavesEventChannelsOpen(t *testing.T) {
	req := require.New(t)
	c := NewClient("ws://unused")
	h := NewHandler(c)
	go h.Start()

	// Nobody is draining the event channels at this point.
	c.incoming <- &signaling.Message{
		Type:   signaling.MessageTypeChat,
		Body:   "parting words",
		Sender: "bob",
		From:   "conn-b",
	}
	close(c.incoming)

	select {
	case <-h.Done:
	case <-time.After(time.Second):
		t.Fatal("handler did not wind down")
	}

	// The buffered late frame is still intact.
	ev := <-h.Chat
	req.NotNil(ev)
	req.Equal("parting words", ev.Body)

	// A drained channel blocks; a successful receive here would mean the
	// channel was closed and handed out a nil event.
	select {
	case <-h.Chat:
		t.Fatal("chat channel should be open and empty")
	default:
	}
	select {
	case <-h.PeerJoined:
		t.Fatal("peer-joined channel should be open and empty")
	default:
	}
	select {
	case <-h.Signal:
		t.Fatal("signal channel should be open and empty")
	default:
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	req := require.New(t)
	c := NewClient("ws://unused")

	req.NotPanics(func() {
		c.Close()
		c.Close()
	})
}
