package server

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the relay service configuration, read from HUDDLE_*
// environment variables.
type Config struct {
	// Addr is the listen address for the HTTP/websocket server.
	Addr string `envconfig:"ADDR" default:":8080"`

	// ShutdownTimeout bounds how long a graceful shutdown may take.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	// AllowedOrigin restricts websocket upgrades to a single Origin
	// header value. Empty allows any origin (development).
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("huddle", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
