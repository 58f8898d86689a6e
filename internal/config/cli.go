// Package config holds the root command line of viashift.
package config

import (
	"github.com/Alia5/viashift/internal/cmd"
	"github.com/Alia5/viashift/internal/log"
)

// CLI is the kong root. Global flags come first, then one field per command.
type CLI struct {
	Log    log.Config `embed:"" prefix:"log."`
	Config string     `help:"Configuration file (json, yaml or toml)" type:"path" env:"VIASHIFT_CONFIG"`

	Serve     cmd.Serve         `cmd:"" help:"Encode key presses from the enabled sources onto the lines"`
	Probe     cmd.Probe         `cmd:"" help:"Check for a running host clock on the sense line"`
	Table     cmd.Table         `cmd:"" help:"Print the code table"`
	Type      cmd.Type          `cmd:"" help:"Type text, or forward the terminal, to a running server"`
	Configure cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
	Install   cmd.Install       `cmd:"" help:"Install serve as a systemd service"`
	Uninstall cmd.Uninstall     `cmd:"" help:"Remove the systemd service"`
}
