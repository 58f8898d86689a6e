//go:build !linux

// Package evdev reads keyboards through the Linux input subsystem.
package evdev

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Alia5/viashift/internal/bridge"
)

// Config is the evdev source flag group.
type Config struct {
	Enable  bool     `help:"Read keyboards from the Linux input subsystem (Linux only)" env:"VIASHIFT_EVDEV_ENABLE"`
	Devices []string `help:"Device nodes to open" env:"VIASHIFT_EVDEV_DEVICES"`
	Grab    bool     `help:"Grab devices exclusively" env:"VIASHIFT_EVDEV_GRAB"`
	Bypass  string   `help:"Skip devices whose name matches this regular expression" env:"VIASHIFT_EVDEV_BYPASS"`
	Watch   bool     `help:"Attach keyboards plugged in after startup" env:"VIASHIFT_EVDEV_WATCH"`
}

// ErrUnsupported is returned on systems without evdev.
var ErrUnsupported = errors.New("evdev: only supported on linux")

// Source is unavailable on this platform.
type Source struct{}

func New(Config, bridge.Opener, *slog.Logger) (*Source, error) {
	return nil, ErrUnsupported
}

func (*Source) Run(context.Context) error { return ErrUnsupported }
