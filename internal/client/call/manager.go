package call

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// ConnFactory builds the underlying peer connection for a remote peer.
type ConnFactory func(remoteID string) (SessionConn, error)

// SignalSender delivers an opaque payload to a remote connection via the
// relay.
type SignalSender func(toConn string, payload []byte) error

// Manager keeps one Link per remote peer in the room, creating them as
// remotes are observed (existing-members list or a join notification)
// and discarding them when the remote disconnects.
type Manager struct {
	localID string

	mu    sync.Mutex
	links map[string]*Link

	dial ConnFactory
	send SignalSender
	log  *slog.Logger
}

func NewManager(localID string, dial ConnFactory, send SignalSender) *Manager {
	return &Manager{
		localID: localID,
		links:   make(map[string]*Link),
		dial:    dial,
		send:    send,
		log:     slog.With("conn", localID),
	}
}

// HandleExistingMembers dials every member already in the room. The new
// joiner always proposes, so each link sends an offer immediately.
func (m *Manager) HandleExistingMembers(members []string) {
	for _, remote := range members {
		if remote == m.localID {
			continue
		}
		link, err := m.ensureLink(remote)
		if err != nil {
			m.log.Error("failed to dial peer", "peer", remote, "err", err)
			continue
		}
		if err := link.Propose(); err != nil {
			m.log.Error("offer failed", "peer", remote, "err", err)
		}
	}
}

// HandlePeerJoined prepares a link for a peer that just joined. The
// joiner proposes, so this side only waits for the offer.
func (m *Manager) HandlePeerJoined(remoteID string) {
	if remoteID == m.localID {
		return
	}
	if _, err := m.ensureLink(remoteID); err != nil {
		m.log.Error("failed to prepare link", "peer", remoteID, "err", err)
	}
}

// HandlePeerLeft discards the link; no renegotiation is attempted.
func (m *Manager) HandlePeerLeft(remoteID string) {
	m.mu.Lock()
	link := m.links[remoteID]
	delete(m.links, remoteID)
	m.mu.Unlock()

	if link != nil {
		if err := link.Close(); err != nil {
			m.log.Debug("link close failed", "peer", remoteID, "err", err)
		}
	}
}

// HandleSignal routes a forwarded signal to the sender's link, creating
// it on first contact. Malformed payloads are logged and dropped; a bad
// message from one peer never disturbs the others.
func (m *Manager) HandleSignal(fromConn string, payload []byte) {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		m.log.Warn("dropping malformed signal", "peer", fromConn, "err", err)
		return
	}

	link, lerr := m.ensureLink(fromConn)
	if lerr != nil {
		m.log.Error("failed to dial peer", "peer", fromConn, "err", lerr)
		return
	}
	if err := link.HandleRemote(env); err != nil {
		m.log.Warn("signal handling failed", "peer", fromConn, "err", err)
	}
}

// Link returns the link for a remote, if any.
func (m *Manager) Link(remoteID string) *Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.links[remoteID]
}

// Peers lists the remotes with an active link.
func (m *Manager) Peers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.links))
	for id := range m.links {
		out = append(out, id)
	}
	return out
}

// Close tears down every link.
func (m *Manager) Close() {
	m.mu.Lock()
	links := m.links
	m.links = make(map[string]*Link)
	m.mu.Unlock()

	for id, link := range links {
		if err := link.Close(); err != nil {
			m.log.Debug("link close failed", "peer", id, "err", err)
		}
	}
}

func (m *Manager) ensureLink(remoteID string) (*Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if link, ok := m.links[remoteID]; ok {
		return link, nil
	}

	conn, err := m.dial(remoteID)
	if err != nil {
		return nil, NewPeerError("dial", remoteID, err)
	}

	link := NewLink(m.localID, remoteID, conn, func(env Envelope) error {
		payload, err := json.Marshal(env)
		if err != nil {
			return err
		}
		return m.send(remoteID, payload)
	})
	m.links[remoteID] = link
	return link, nil
}
