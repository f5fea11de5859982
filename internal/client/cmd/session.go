package cmd

import (
	"fmt"

	"github.com/neelgujarathi/ZoomProject/internal/client/call"
	"github.com/neelgujarathi/ZoomProject/internal/client/config"
	"github.com/neelgujarathi/ZoomProject/internal/client/signaling"
)

// ConnectionContext bundles the live server connection with its message
// router for the duration of one command.
type ConnectionContext struct {
	Client  *signaling.Client
	Handler *signaling.Handler
	Config  *config.Config
}

func NewConnectionContext(cfg *config.Config) (*ConnectionContext, error) {
	client := signaling.NewClient(cfg.ServerURL)
	if err := client.Connect(); err != nil {
		return nil, call.NewError("connect to server", err)
	}

	handler := signaling.NewHandler(client)
	go handler.Start()

	return &ConnectionContext{
		Client:  client,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (c *ConnectionContext) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

func LoadConfig(opts config.Options) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, call.NewError("load config", err)
	}

	if cfg.ForceRelay && cfg.GetTURNServers() == nil {
		return nil, fmt.Errorf("cannot force relay mode without TURN server configured")
	}

	return cfg, nil
}
