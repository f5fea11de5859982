package signaling

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024 // 64 KB - enough for SDP payloads
)

// Client is a wrapper for a single websocket connection (one endpoint in
// a call). Delivery happens through the buffered Send channel so the hub
// never blocks on a slow connection; the channel is drained by WritePump.
type Client struct {
	// ID is the opaque connection identifier, minted at upgrade time.
	ID string

	hub  *Hub
	conn *websocket.Conn

	// Send is the outbound queue. A full queue drops the message rather
	// than block room state (fire-and-forget semantics).
	Send chan *Message

	done     chan struct{}
	doneOnce sync.Once
}

// NewClient wraps an upgraded websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		Send: make(chan *Message, 256),
		done: make(chan struct{}),
	}
}

// trySend queues a message without blocking. The Send channel is never
// closed, so queuing after shutdown is harmless; the message just rots
// in the buffer.
func (c *Client) trySend(msg *Message) {
	select {
	case c.Send <- msg:
	default:
		slog.Warn("send queue full, dropping message", "conn", c.ID, "type", msg.Type)
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection
// by executing all reads from this goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.doneOnce.Do(func() { close(c.done) })
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				slog.Error("websocket read failed", "conn", c.ID, "err", err)
			}
			break
		}

		// A malformed frame never takes the session down; log and keep
		// reading.
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("dropping malformed message", "conn", c.ID, "err", err)
			continue
		}

		switch msg.Type {
		case MessageTypeJoin:
			c.hub.Join(c, msg.RoomID)
		case MessageTypeSignal:
			c.hub.Forward(c.ID, SignalRequest{To: msg.To, Payload: msg.Payload})
		case MessageTypeChat:
			c.hub.Chat(c, msg.Body, msg.Sender)
		default:
			slog.Warn("dropping message of unknown type", "conn", c.ID, "type", msg.Type)
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection
// by executing all writes from this goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				slog.Debug("websocket write failed", "conn", c.ID, "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
