package config

import (
	"fmt"
	"os"
	"strings"
)

// Default configuration values
const (
	DefaultServerURL = "ws://localhost:8080/ws"
	DefaultSTUN      = "stun:stun.l.google.com:19302"
)

// Config holds client configuration
type Config struct {
	// ServerURL is the signaling relay websocket endpoint
	ServerURL string

	// DisplayName is shown to other participants in chat
	DisplayName string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	// ForceRelay restricts candidates to the TURN relay
	ForceRelay bool
}

// Options for loading config with CLI flag overrides
type Options struct {
	ServerURL   string
	DisplayName string
	STUNServer  string
	TURNServer  string
	TURNUser    string
	TURNPass    string
	ForceRelay  bool
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	serverURL := opts.ServerURL
	if serverURL == "" {
		serverURL = os.Getenv("HUDDLE_SERVER_URL")
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}

	displayName := opts.DisplayName
	if displayName == "" {
		displayName = os.Getenv("HUDDLE_DISPLAY_NAME")
	}
	if displayName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("resolve display name: %w", err)
		}
		displayName = hostname
	}

	stunServer := opts.STUNServer
	if stunServer == "" {
		stunServer = os.Getenv("HUDDLE_STUN_SERVER")
	}
	if stunServer == "" {
		stunServer = DefaultSTUN
	}

	// TURN is opt-in; empty means direct and STUN-derived paths only.
	turnServer := opts.TURNServer
	if turnServer == "" {
		turnServer = os.Getenv("HUDDLE_TURN_SERVER")
	}

	turnUser := opts.TURNUser
	if turnUser == "" {
		turnUser = os.Getenv("HUDDLE_TURN_USERNAME")
	}

	turnPass := opts.TURNPass
	if turnPass == "" {
		turnPass = os.Getenv("HUDDLE_TURN_PASSWORD")
	}

	return &Config{
		ServerURL:   serverURL,
		DisplayName: displayName,
		STUNServer:  stunServer,
		TURNServer:  turnServer,
		TURNUser:    turnUser,
		TURNPass:    turnPass,
		ForceRelay:  opts.ForceRelay,
	}, nil
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	host := strings.TrimPrefix(c.TURNServer, "turn:")
	return []string{
		fmt.Sprintf("turn:%s:3478?transport=udp", host),
		fmt.Sprintf("turn:%s:3478?transport=tcp", host),
		fmt.Sprintf("turns:%s:5349?transport=tcp", host),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
