package call

import (
	"log/slog"

	pion "github.com/pion/webrtc/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// ControlChannelLabel names the data channel each pair of peers shares
// for lightweight in-call control traffic (media-state toggles). Media
// itself never flows here.
const ControlChannelLabel = "control"

const controlTypeMediaState = "media-state"

// ControlMessage represents all control data channel messages
type ControlMessage struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// MediaStatePayload announces which of the sender's tracks are live.
type MediaStatePayload struct {
	Audio bool `msgpack:"audio"`
	Video bool `msgpack:"video"`
}

// DecodePayload decodes the message payload into the provided struct
func (m ControlMessage) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// NewControlMessage creates a new ControlMessage with the given type and payload
func NewControlMessage(t string, payload any) (ControlMessage, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return ControlMessage{}, err
	}

	return ControlMessage{
		Type:    t,
		Payload: b,
	}, nil
}

// OpenControlChannel creates the ordered control channel on a fresh peer
// connection, announces the local track state once the channel opens, and
// decodes incoming media-state updates. The channel is negotiated with a
// fixed id so both ends share one channel instead of racing to create two.
func OpenControlChannel(pc *pion.PeerConnection, local MediaStatePayload, onMediaState func(MediaStatePayload)) (*pion.DataChannel, error) {
	ordered := true
	negotiated := true
	id := uint16(0)
	dc, err := pc.CreateDataChannel(ControlChannelLabel, &pion.DataChannelInit{
		Ordered:    &ordered,
		Negotiated: &negotiated,
		ID:         &id,
	})
	if err != nil {
		return nil, NewError("create control channel", err)
	}

	dc.OnOpen(func() {
		if err := SendMediaState(dc, local); err != nil {
			slog.Debug("media state announce failed", "err", err)
		}
	})

	dc.OnMessage(func(msg pion.DataChannelMessage) {
		var cm ControlMessage
		if err := msgpack.Unmarshal(msg.Data, &cm); err != nil {
			return
		}
		if cm.Type != controlTypeMediaState {
			return
		}
		var state MediaStatePayload
		if err := cm.DecodePayload(&state); err != nil {
			return
		}
		if onMediaState != nil {
			onMediaState(state)
		}
	})

	return dc, nil
}

// SendMediaState publishes the local track state to the remote peer.
func SendMediaState(dc *pion.DataChannel, state MediaStatePayload) error {
	data, err := encodeMediaState(state)
	if err != nil {
		return err
	}
	return dc.Send(data)
}

func encodeMediaState(state MediaStatePayload) ([]byte, error) {
	msg, err := NewControlMessage(controlTypeMediaState, state)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(msg)
}
