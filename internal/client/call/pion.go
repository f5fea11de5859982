package call

import (
	pion "github.com/pion/webrtc/v4"

	"github.com/neelgujarathi/ZoomProject/internal/client/config"
)

// NewPeerConnection builds a pion peer connection from the client
// configuration (STUN always, TURN when configured).
func NewPeerConnection(cfg *config.Config) (*pion.PeerConnection, error) {
	iceServers := []pion.ICEServer{{URLs: cfg.GetSTUNServers()}}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	policy := pion.ICETransportPolicyAll
	if turnServers != nil && cfg.ForceRelay {
		policy = pion.ICETransportPolicyRelay
	}

	pc, err := pion.NewPeerConnection(pion.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	})
	if err != nil {
		return nil, NewError("create peer connection", err)
	}
	return pc, nil
}

// MediaSource attaches the local media to a new peer connection. Capture
// and encoding live behind this interface; the negotiation machine only
// cares that attaching changes what the SDP advertises.
type MediaSource interface {
	Attach(pc *pion.PeerConnection) error

	// State reports which local tracks the source publishes, announced
	// to each peer over the control channel.
	State() MediaStatePayload
}

// ReceiveOnlyMedia is the CLI's default source: no outgoing tracks, one
// recvonly transceiver per kind so remote audio and video still flow.
type ReceiveOnlyMedia struct{}

func (ReceiveOnlyMedia) State() MediaStatePayload {
	return MediaStatePayload{}
}

func (ReceiveOnlyMedia) Attach(pc *pion.PeerConnection) error {
	for _, kind := range []pion.RTPCodecType{pion.RTPCodecTypeAudio, pion.RTPCodecTypeVideo} {
		if _, err := pc.AddTransceiverFromKind(kind, pion.RTPTransceiverInit{
			Direction: pion.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			return NewError("add transceiver", err)
		}
	}
	return nil
}

// SetupICEHandlers forwards trickle candidates into the signaling path
// and reports terminal connection states.
func SetupICEHandlers(pc *pion.PeerConnection, onCandidate func(CandidateInit), onDown func()) {
	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		init := c.ToJSON()
		onCandidate(CandidateInit{
			Candidate:        init.Candidate,
			SDPMid:           init.SDPMid,
			SDPMLineIndex:    init.SDPMLineIndex,
			UsernameFragment: init.UsernameFragment,
		})
	})

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		if state == pion.PeerConnectionStateFailed || state == pion.PeerConnectionStateClosed {
			onDown()
		}
	})
}

// PionConn adapts *pion.PeerConnection to SessionConn.
type PionConn struct {
	pc *pion.PeerConnection
}

func NewPionConn(pc *pion.PeerConnection) *PionConn {
	return &PionConn{pc: pc}
}

func (p *PionConn) CreateOffer() (Description, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return Description{}, err
	}
	return descriptionFromPion(offer), nil
}

func (p *PionConn) CreateAnswer() (Description, error) {
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return Description{}, err
	}
	return descriptionFromPion(answer), nil
}

func (p *PionConn) SetLocalDescription(d Description) error {
	desc, err := descriptionToPion(d)
	if err != nil {
		return err
	}
	return p.pc.SetLocalDescription(desc)
}

func (p *PionConn) SetRemoteDescription(d Description) error {
	desc, err := descriptionToPion(d)
	if err != nil {
		return err
	}
	return p.pc.SetRemoteDescription(desc)
}

func (p *PionConn) Rollback() error {
	return p.pc.SetLocalDescription(pion.SessionDescription{Type: pion.SDPTypeRollback})
}

func (p *PionConn) AddCandidate(c CandidateInit) error {
	return p.pc.AddICECandidate(pion.ICECandidateInit{
		Candidate:        c.Candidate,
		SDPMid:           c.SDPMid,
		SDPMLineIndex:    c.SDPMLineIndex,
		UsernameFragment: c.UsernameFragment,
	})
}

func (p *PionConn) SignalingState() SignalingState {
	switch p.pc.SignalingState() {
	case pion.SignalingStateHaveLocalOffer, pion.SignalingStateHaveLocalPranswer:
		return SignalingHaveLocalOffer
	case pion.SignalingStateHaveRemoteOffer, pion.SignalingStateHaveRemotePranswer:
		return SignalingHaveRemoteOffer
	default:
		return SignalingStable
	}
}

func (p *PionConn) Close() error {
	return p.pc.Close()
}

func descriptionFromPion(desc pion.SessionDescription) Description {
	return Description{Type: desc.Type.String(), SDP: desc.SDP}
}

func descriptionToPion(d Description) (pion.SessionDescription, error) {
	var t pion.SDPType
	switch d.Type {
	case "offer":
		t = pion.SDPTypeOffer
	case "answer":
		t = pion.SDPTypeAnswer
	default:
		return pion.SessionDescription{}, NewError("convert description", ErrUnexpectedSignal)
	}
	return pion.SessionDescription{Type: t, SDP: d.SDP}, nil
}
