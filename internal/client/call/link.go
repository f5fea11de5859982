package call

import (
	"log/slog"
	"strings"
	"sync"
)

// LinkState tracks where a link is in the offer/answer exchange.
type LinkState int

const (
	LinkIdle LinkState = iota
	LinkOffering
	LinkAwaitingAnswer
	LinkStable
)

func (s LinkState) String() string {
	switch s {
	case LinkIdle:
		return "idle"
	case LinkOffering:
		return "offering"
	case LinkAwaitingAnswer:
		return "awaiting-answer"
	case LinkStable:
		return "stable"
	}
	return "unknown"
}

// SignalingState mirrors the underlying connection's signaling state.
type SignalingState int

const (
	SignalingStable SignalingState = iota
	SignalingHaveLocalOffer
	SignalingHaveRemoteOffer
)

// SessionConn is the slice of a peer connection the negotiation machine
// drives. Narrow on purpose: the collision logic is exercised in tests
// against a fake, and the pion adapter implements it for real calls.
type SessionConn interface {
	CreateOffer() (Description, error)
	CreateAnswer() (Description, error)
	SetLocalDescription(Description) error
	SetRemoteDescription(Description) error
	// Rollback discards the pending local offer, returning the
	// connection to a stable signaling state.
	Rollback() error
	AddCandidate(CandidateInit) error
	SignalingState() SignalingState
	Close() error
}

// maxPendingCandidates bounds the per-peer buffer for candidates that
// arrive before any remote description; overflow drops the oldest.
const maxPendingCandidates = 16

// Link runs perfect negotiation against one remote peer. Every endpoint
// has one Link per remote, and both ends run the same code with opposite
// politeness; there is no central arbiter.
//
// Politeness is derived from the two connection ids before any message
// flows: the lexicographically lower id is impolite. Both sides compute
// the same answer from the same pair, so exactly one side of every link
// yields when offers collide.
type Link struct {
	remote string
	polite bool

	mu          sync.Mutex
	state       LinkState
	makingOffer bool
	ignoreOffer bool
	haveRemote  bool
	pending     []CandidateInit
	closed      bool

	conn SessionConn
	send func(Envelope) error
	log  *slog.Logger
}

// NewLink wires a negotiation machine for the (local, remote) pair.
// send delivers an envelope to the remote through the relay; it must not
// block on acknowledgment.
func NewLink(localID, remoteID string, conn SessionConn, send func(Envelope) error) *Link {
	return &Link{
		remote: remoteID,
		polite: strings.Compare(localID, remoteID) > 0,
		conn:   conn,
		send:   send,
		log:    slog.With("peer", remoteID),
	}
}

func (l *Link) Polite() bool {
	return l.polite
}

func (l *Link) State() LinkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Propose generates and sends an offer. Called when local media or a
// negotiation-needed event fires, and by the joiner for every existing
// member of the room.
func (l *Link) Propose() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return NewPeerError("propose", l.remote, ErrLinkClosed)
	}

	l.makingOffer = true
	l.state = LinkOffering

	offer, err := l.conn.CreateOffer()
	if err == nil {
		err = l.conn.SetLocalDescription(offer)
	}
	if err == nil {
		err = l.send(Envelope{SDP: &offer})
	}
	l.makingOffer = false

	if err != nil {
		l.state = LinkIdle
		return NewPeerError("propose", l.remote, err)
	}
	l.state = LinkAwaitingAnswer
	return nil
}

// HandleRemote applies a forwarded signal from the remote peer. Errors
// are non-fatal to the call; the caller logs and carries on.
func (l *Link) HandleRemote(env Envelope) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	if env.SDP != nil {
		return l.handleDescription(*env.SDP)
	}
	if env.ICE != nil {
		return l.handleCandidate(*env.ICE)
	}
	l.log.Debug("empty signal envelope ignored")
	return nil
}

func (l *Link) handleDescription(desc Description) error {
	readyForOffer := !l.makingOffer &&
		(l.conn.SignalingState() == SignalingStable || l.ignoreOffer)
	collision := desc.IsOffer() && !readyForOffer

	l.ignoreOffer = !l.polite && collision
	if l.ignoreOffer {
		// The impolite side discards the colliding offer wholesale: no
		// apply, no answer. Its own offer stays pending.
		l.log.Debug("ignoring colliding offer")
		return nil
	}

	if collision {
		// Polite side yields: drop our pending offer before taking theirs.
		if err := l.conn.Rollback(); err != nil {
			return NewPeerError("rollback", l.remote, err)
		}
		l.state = LinkIdle
	}

	if err := l.conn.SetRemoteDescription(desc); err != nil {
		return NewPeerError("apply remote description", l.remote, err)
	}
	l.haveRemote = true
	l.flushPending()

	if !desc.IsOffer() {
		l.state = LinkStable
		return nil
	}

	answer, err := l.conn.CreateAnswer()
	if err == nil {
		err = l.conn.SetLocalDescription(answer)
	}
	if err == nil {
		err = l.send(Envelope{SDP: &answer})
	}
	if err != nil {
		return NewPeerError("answer", l.remote, err)
	}
	l.state = LinkStable
	return nil
}

func (l *Link) handleCandidate(c CandidateInit) error {
	if !l.haveRemote {
		// No remote description yet; hold the candidate and replay it
		// once the first description lands.
		if len(l.pending) >= maxPendingCandidates {
			l.pending = l.pending[1:]
		}
		l.pending = append(l.pending, c)
		return nil
	}

	if err := l.conn.AddCandidate(c); err != nil {
		if l.ignoreOffer {
			// Candidates trailing an ignored offer are expected to fail.
			l.log.Debug("candidate after ignored offer", "err", err)
			return nil
		}
		return NewPeerError("add candidate", l.remote, err)
	}
	return nil
}

func (l *Link) flushPending() {
	for _, c := range l.pending {
		if err := l.conn.AddCandidate(c); err != nil {
			l.log.Debug("buffered candidate rejected", "err", err)
		}
	}
	l.pending = nil
}

// Close tears the link down; any in-flight negotiation is abandoned and
// never retried.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.pending = nil
	l.state = LinkIdle
	return l.conn.Close()
}
