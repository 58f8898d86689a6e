package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/Alia5/viashift/keys"
)

// KeyStreamPath is the stream route accepting transition frames.
const KeyStreamPath = "keys"

// ErrStreamClosed is returned by Send after Close.
var ErrStreamClosed = errors.New("stream closed")

// KeyStream is a write-only connection carrying key transitions to the server.
type KeyStream struct {
	conn   net.Conn
	mu     sync.Mutex
	closed bool
}

// OpenKeyStream connects to the key stream route. Every transition sent on
// it is handled as if a local keyboard produced it.
func (c *Client) OpenKeyStream(ctx context.Context) (*KeyStream, error) {
	if c.transport.mock != nil {
		return nil, fmt.Errorf("stream connections not supported with mock transport")
	}
	conn, err := c.transport.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(KeyStreamPath + "\x00")); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	_ = conn.SetWriteDeadline(time.Time{})
	return &KeyStream{conn: conn}, nil
}

// Send writes one transition frame.
func (s *KeyStream) Send(t keys.Transition) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	_, err = s.conn.Write(data)
	return err
}

// TypeKey sends the press and release transitions typing k once.
func (s *KeyStream) TypeKey(k keys.Key) error {
	for _, t := range keys.TypeKey(k) {
		if err := s.Send(t); err != nil {
			return err
		}
	}
	return nil
}

// SetWriteDeadline sets the write deadline for the underlying connection.
func (s *KeyStream) SetWriteDeadline(t time.Time) error {
	return s.conn.SetWriteDeadline(t)
}

// Close closes the stream connection. The server sees a clean end of stream.
func (s *KeyStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
