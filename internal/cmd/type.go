package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Alia5/viashift/apiclient"
	"github.com/Alia5/viashift/keys"

	"golang.org/x/term"
)

const (
	ctrlC = 0x03
	ctrlD = 0x04
)

// Type sends text to a running server. Without TEXT it forwards each key
// typed on the terminal until Ctrl-D.
type Type struct {
	Text     []string `arg:"" optional:"" help:"Text to type; joined with spaces"`
	Addr     string   `help:"API server address" default:"localhost:3243" env:"VIASHIFT_API_ADDR"`
	Password string   `help:"API password" env:"VIASHIFT_API_PASSWORD"`
}

// Run is called by Kong when the type command is executed.
func (t *Type) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	c := apiclient.NewWithPassword(t.Addr, t.Password)

	if len(t.Text) > 0 {
		resp, err := c.TypeCtx(ctx, strings.Join(t.Text, " "))
		if err != nil {
			return err
		}
		if len(resp.Skipped) > 0 {
			logger.Warn("characters without a key were skipped", "skipped", resp.Skipped)
		}
		logger.Info("typed", "characters", resp.Typed)
		return nil
	}

	stream, err := c.OpenKeyStream(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() { _ = term.Restore(fd, state) }()
		fmt.Fprint(os.Stderr, "typing to "+t.Addr+", Ctrl-D to stop\r\n")
	}
	n, err := forwardKeys(bufio.NewReader(os.Stdin), stream, logger)
	logger.Debug("key forwarding ended", "keys", n)
	return err
}

// keySender is the part of an apiclient.KeyStream used for forwarding.
type keySender interface {
	TypeKey(k keys.Key) error
}

// forwardKeys types every byte read from r until EOF, Ctrl-C or Ctrl-D.
// Bytes without a key are logged and skipped.
func forwardKeys(r io.ByteReader, s keySender, logger *slog.Logger) (int, error) {
	n := 0
	for {
		c, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if c == ctrlC || c == ctrlD {
			return n, nil
		}
		k, ok := keys.ForChar(c)
		if !ok {
			logger.Debug("no key for input byte", "byte", c)
			continue
		}
		if err := s.TypeKey(k); err != nil {
			return n, err
		}
		n++
	}
}
