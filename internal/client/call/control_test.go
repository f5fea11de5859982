package call

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestMediaStateEncodesAsControlMessage(t *testing.T) {
	req := require.New(t)

	data, err := encodeMediaState(MediaStatePayload{Audio: true})
	req.NoError(err)

	var cm ControlMessage
	req.NoError(msgpack.Unmarshal(data, &cm))
	req.Equal(controlTypeMediaState, cm.Type)

	var state MediaStatePayload
	req.NoError(cm.DecodePayload(&state))
	req.True(state.Audio)
	req.False(state.Video)
}

func TestReceiveOnlyMediaPublishesNoTracks(t *testing.T) {
	req := require.New(t)

	state := ReceiveOnlyMedia{}.State()
	req.False(state.Audio)
	req.False(state.Video)
}
