package cmd

import "log/slog"

// Install registers serve as a system service.
type Install struct{}

// Run is called by Kong when the install command is executed.
func (i *Install) Run(logger *slog.Logger) error { return install(logger) }

// Uninstall stops and removes the system service.
type Uninstall struct{}

// Run is called by Kong when the uninstall command is executed.
func (u *Uninstall) Run(logger *slog.Logger) error { return uninstall(logger) }
