//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errNoServiceManager = errors.New("service installation requires linux with systemd")

func install(*slog.Logger) error   { return errNoServiceManager }
func uninstall(*slog.Logger) error { return errNoServiceManager }
