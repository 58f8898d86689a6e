package api

import "time"

// ServerConfig represents the API flag group.
type ServerConfig struct {
	Addr              string        `help:"API server listen address, empty to disable" default:":3243" env:"VIASHIFT_API_ADDR"`
	Password          string        `help:"API password; clients must authenticate when set" env:"VIASHIFT_API_PASSWORD"`
	RequireAuth       bool          `help:"Reject unauthenticated clients; generates a password file when no password is set" env:"VIASHIFT_API_REQUIRE_AUTH"`
	ConnectionTimeout time.Duration `help:"Time a client has to send its request" default:"10s" env:"VIASHIFT_API_CONNECTION_TIMEOUT"`
}
