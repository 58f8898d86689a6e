// Package serial reads transition frames from a serial link, the way a
// keyboard controller forwards its key matrix changes.
package serial

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tarm/serial"

	"github.com/Alia5/viashift/internal/bridge"
	"github.com/Alia5/viashift/internal/log"
	"github.com/Alia5/viashift/keys"
)

// Config is the serial source flag group.
type Config struct {
	Port string `help:"Serial device delivering transition frames (e.g. /dev/ttyACM0), empty to disable" env:"VIASHIFT_SERIAL_PORT"`
	Baud int    `help:"Baud rate, ignored by USB CDC devices" default:"115200" env:"VIASHIFT_SERIAL_BAUD"`
}

// Source reads frames from a serial port.
type Source struct {
	cfg    Config
	op     bridge.Opener
	logger *slog.Logger
	raw    log.RawLogger
}

// New returns a source for cfg. raw may be nil.
func New(cfg Config, op bridge.Opener, logger *slog.Logger, raw log.RawLogger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return &Source{cfg: cfg, op: op, logger: logger.With("source", "serial"), raw: raw}
}

// Run opens the port and reads frames until ctx ends or the link fails.
func (s *Source) Run(ctx context.Context) error {
	port, err := serial.OpenPort(&serial.Config{Name: s.cfg.Port, Baud: s.cfg.Baud})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.cfg.Port, err)
	}
	s.logger.Info("serial link open", "port", s.cfg.Port, "baud", s.cfg.Baud)

	stop := context.AfterFunc(ctx, func() { _ = port.Close() })
	defer func() {
		if stop() {
			_ = port.Close()
		}
	}()

	err = s.Serve(ctx, port)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// Serve submits every frame read from r in one bridge session. It returns nil
// at a clean end of stream. Keys still held when r ends are released.
func (s *Source) Serve(ctx context.Context, r io.Reader) error {
	sub := s.op.Open("serial " + s.cfg.Port)
	defer sub.Close()

	br := bufio.NewReader(r)
	for {
		t, err := keys.ReadTransition(br)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("serial: %w", keys.ErrShortFrame)
		case err != nil:
			return fmt.Errorf("serial read: %w", err)
		}
		if frame, err := t.MarshalBinary(); err == nil {
			s.raw.Log(true, frame)
		}
		if err := sub.Submit(ctx, t); err != nil {
			return err
		}
	}
}
