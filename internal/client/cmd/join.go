package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/neelgujarathi/ZoomProject/internal/client/call"
	"github.com/neelgujarathi/ZoomProject/internal/client/config"
	"github.com/neelgujarathi/ZoomProject/internal/client/ui"
	"github.com/neelgujarathi/ZoomProject/internal/signaling"
)

var (
	flagName     string
	flagServer   string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
	flagRelay    bool
)

const joinTimeout = 15 * time.Second

var joinCmd = &cobra.Command{
	Use:     "join <room-id>",
	Aliases: []string{"j"},
	Short:   "Join a room and connect to every participant",
	Long: `Join a room on the signaling server and set up a direct WebRTC
connection to every other participant.

Examples:
  huddle join standup
  huddle join standup --name alice
  huddle join standup --server ws://calls.example.com/ws --relay`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return joinRoom(args[0])
	},
}

func init() {
	joinCmd.Flags().StringVarP(&flagName, "name", "n", "", "display name shown in chat")
	joinCmd.Flags().StringVarP(&flagServer, "server", "s", "", "signaling server websocket URL")
	joinCmd.Flags().StringVar(&flagSTUN, "stun", "", "STUN server URL")
	joinCmd.Flags().StringVar(&flagTURN, "turn", "", "TURN server URL")
	joinCmd.Flags().StringVar(&flagTURNUser, "turn-user", "", "TURN username")
	joinCmd.Flags().StringVar(&flagTURNPass, "turn-pass", "", "TURN password")
	joinCmd.Flags().BoolVar(&flagRelay, "relay", false, "force all media through the TURN relay")

	rootCmd.AddCommand(joinCmd)
}

func joinRoom(roomID string) error {
	cfg, err := LoadConfig(config.Options{
		ServerURL:   flagServer,
		DisplayName: flagName,
		STUNServer:  flagSTUN,
		TURNServer:  flagTURN,
		TURNUser:    flagTURNUser,
		TURNPass:    flagTURNPass,
		ForceRelay:  flagRelay,
	})
	if err != nil {
		return err
	}

	ctx, err := NewConnectionContext(cfg)
	if err != nil {
		return err
	}
	defer ctx.Close()

	localID, err := awaitWelcome(ctx)
	if err != nil {
		return err
	}

	ctx.Client.SendMessage(&signaling.Message{
		Type:   signaling.MessageTypeJoin,
		RoomID: roomID,
	})

	members, err := awaitMembers(ctx)
	if err != nil {
		return err
	}

	displayRoster(roomID, localID, members)

	chat := ui.NewChatUI(func(body string) {
		ctx.Client.SendMessage(&signaling.Message{
			Type:   signaling.MessageTypeChat,
			Body:   body,
			Sender: cfg.DisplayName,
		})
	})

	manager := newCallManager(ctx, chat, localID, call.ReceiveOnlyMedia{})
	defer manager.Close()

	manager.HandleExistingMembers(members)

	go pumpEvents(ctx, manager, chat, localID)

	return chat.Run(roomID)
}

func awaitWelcome(ctx *ConnectionContext) (string, error) {
	select {
	case id := <-ctx.Handler.Welcome:
		return id, nil
	case errMsg := <-ctx.Handler.Error:
		return "", call.NewError("join", fmt.Errorf("%w: %s", call.ErrSignalingError, errMsg))
	case <-time.After(joinTimeout):
		return "", call.NewError("join", fmt.Errorf("timed out waiting for server welcome"))
	}
}

func awaitMembers(ctx *ConnectionContext) ([]string, error) {
	select {
	case members := <-ctx.Handler.ExistingMembers:
		return members, nil
	case errMsg := <-ctx.Handler.Error:
		return nil, call.NewError("join", fmt.Errorf("%w: %s", call.ErrSignalingError, errMsg))
	case <-time.After(joinTimeout):
		return nil, call.NewError("join", fmt.Errorf("timed out waiting for room membership"))
	}
}

func displayRoster(roomID, localID string, members []string) {
	rows := make([]ui.RosterRow, 0, len(members)+1)
	for _, id := range members {
		rows = append(rows, ui.RosterRow{ConnID: id, Role: "participant"})
	}
	rows = append(rows, ui.RosterRow{ConnID: localID, Role: "participant", Local: true})
	ui.RenderRoster(roomID, rows)
}

// newCallManager builds the per-peer connection fabric: each remote gets
// a fresh pion connection carrying the given media source, trickle ICE
// routed through the relay, and the shared control channel. The local
// track state is announced to each peer when its channel opens.
func newCallManager(ctx *ConnectionContext, chat *ui.ChatUI, localID string, media call.MediaSource) *call.Manager {
	sendSignal := func(toConn string, payload []byte) error {
		ctx.Client.SendMessage(&signaling.Message{
			Type:    signaling.MessageTypeSignal,
			To:      toConn,
			Payload: payload,
		})
		return nil
	}

	dial := func(remoteID string) (call.SessionConn, error) {
		pc, err := call.NewPeerConnection(ctx.Config)
		if err != nil {
			return nil, err
		}

		if err := media.Attach(pc); err != nil {
			pc.Close()
			return nil, err
		}

		call.SetupICEHandlers(pc,
			func(candidate call.CandidateInit) {
				payload, err := call.EncodeEnvelope(call.Envelope{ICE: &candidate})
				if err != nil {
					return
				}
				sendSignal(remoteID, payload)
			},
			func() {
				chat.AppendLine(ui.ChatLine{
					System: true,
					Body:   fmt.Sprintf("connection to %s lost", shortID(remoteID)),
				})
			},
		)

		if _, err := call.OpenControlChannel(pc, media.State(), func(state call.MediaStatePayload) {
			chat.AppendLine(ui.ChatLine{
				System: true,
				Body: fmt.Sprintf("%s media: audio=%v video=%v",
					shortID(remoteID), state.Audio, state.Video),
			})
		}); err != nil {
			pc.Close()
			return nil, err
		}

		return call.NewPionConn(pc), nil
	}

	return call.NewManager(localID, dial, sendSignal)
}

// pumpEvents feeds server events into the call manager and the chat
// transcript until the connection ends.
func pumpEvents(ctx *ConnectionContext, manager *call.Manager, chat *ui.ChatUI, localID string) {
	h := ctx.Handler
	for {
		select {
		case ev := <-h.PeerJoined:
			manager.HandlePeerJoined(ev.ID)
			chat.AppendLine(ui.ChatLine{
				System: true,
				Body:   fmt.Sprintf("%s joined (%d in room)", shortID(ev.ID), len(ev.Members)),
			})

		case id := <-h.PeerLeft:
			manager.HandlePeerLeft(id)
			chat.AppendLine(ui.ChatLine{
				System: true,
				Body:   fmt.Sprintf("%s left", shortID(id)),
			})

		case ev := <-h.Signal:
			manager.HandleSignal(ev.From, ev.Payload)

		case ev := <-h.Chat:
			chat.AppendLine(ui.ChatLine{
				Sender: ev.Sender,
				Body:   ev.Body,
				Local:  ev.From == localID,
			})

		case errMsg := <-h.Error:
			chat.AppendLine(ui.ChatLine{
				System: true,
				Body:   fmt.Sprintf("server error: %s", errMsg),
			})

		case <-h.Done:
			chat.AppendLine(ui.ChatLine{System: true, Body: "disconnected from server"})
			chat.Quit()
			return
		}
	}
}

// shortID trims a connection id down to a chat-friendly handle.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
