package call

import "encoding/json"

// Description is a session description proposal or reply, carried inside
// the opaque signal payload. The relay never sees these field names.
type Description struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

func (d Description) IsOffer() bool  { return d.Type == "offer" }
func (d Description) IsAnswer() bool { return d.Type == "answer" }

// CandidateInit is an incremental connectivity-path hint.
type CandidateInit struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdpMid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdpMLineIndex,omitempty"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}

// Envelope is the wire shape of a peer-to-peer signal: exactly one of
// SDP or ICE is set.
type Envelope struct {
	SDP *Description   `json:"sdp,omitempty"`
	ICE *CandidateInit `json:"ice,omitempty"`
}

func EncodeEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

func DecodeEnvelope(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}
