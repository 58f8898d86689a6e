package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/Alia5/viashift/internal/bridge"
	"github.com/Alia5/viashift/internal/log"
	"github.com/Alia5/viashift/internal/server/api"
	"github.com/Alia5/viashift/keys"
)

// KeyStream returns a stream handler reading transition frames until the
// client closes the connection. Each connection is its own session: keys it
// leaves held are released when it ends. raw may be nil.
func KeyStream(op bridge.Opener, raw log.RawLogger) api.StreamHandlerFunc {
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return func(ctx context.Context, conn net.Conn, params map[string]string, logger *slog.Logger) error {
		sub := op.Open("keys " + conn.RemoteAddr().String())
		defer sub.Close()

		r := bufio.NewReader(conn)
		n := 0
		for {
			t, err := keys.ReadTransition(r)
			switch {
			case errors.Is(err, io.EOF):
				logger.Info("key stream closed by client", "transitions", n)
				return nil
			case errors.Is(err, io.ErrUnexpectedEOF):
				return fmt.Errorf("key stream: %w", keys.ErrShortFrame)
			case err != nil:
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("key stream: %w", err)
			}
			if frame, merr := t.MarshalBinary(); merr == nil {
				raw.Log(true, frame)
			}
			if err := sub.Submit(ctx, t); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("key stream: %w", err)
			}
			n++
		}
	}
}
