// Package bridge funnels key transitions from every event source into one
// consumer goroutine that owns the held-key state and drives the shifter.
//
// Each source talks to the bridge through its own Session. Held keys are
// tracked per session, so a modifier held on one keyboard never leaks into
// the bytes of another, and closing a session forgets whatever it left held.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Alia5/viashift/internal/log"
	"github.com/Alia5/viashift/keys"
)

var (
	// ErrStopped is returned by Submit once Run has returned.
	ErrStopped = errors.New("bridge: stopped")
	// ErrSessionClosed is returned by Submit after the session was closed.
	ErrSessionClosed = errors.New("bridge: session closed")
)

// Sink receives one event per newly pressed key.
type Sink interface {
	OnKeyObserved(ev keys.Event)
}

// Submitter accepts transitions from an event source.
type Submitter interface {
	Submit(ctx context.Context, t keys.Transition) error
}

// Session is one event source's connection to the bridge.
type Session interface {
	Submitter
	// Close releases every key the session still holds. Later submits fail
	// with ErrSessionClosed.
	Close() error
}

// Opener hands out sessions, one per event source.
type Opener interface {
	Open(name string) Session
}

type message struct {
	session uint64
	t       keys.Transition
	end     bool
}

// Bridge hands transitions to its consumer without buffering: Submit
// returns only after the consumer has taken the transition.
type Bridge struct {
	sink   Sink
	logger *slog.Logger

	// trackers is owned by the Run goroutine.
	trackers map[uint64]*keys.Tracker
	nextID   atomic.Uint64

	in       chan message
	done     chan struct{}
	stopOnce sync.Once
}

// New returns a bridge delivering to sink.
func New(sink Sink, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		sink:     sink,
		logger:   logger,
		trackers: make(map[uint64]*keys.Tracker),
		in:       make(chan message),
		done:     make(chan struct{}),
	}
}

// Open starts a session named name, used in logs only.
func (b *Bridge) Open(name string) Session {
	s := &session{b: b, id: b.nextID.Add(1), name: name}
	b.logger.Debug("session opened", "session", name, "id", s.id)
	return s
}

func (b *Bridge) send(ctx context.Context, m message) error {
	select {
	case b.in <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrStopped
	}
}

// Run consumes transitions until ctx ends. Each press runs the sink to
// completion before the next transition is accepted.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.stopOnce.Do(func() { close(b.done) })
	for {
		select {
		case <-ctx.Done():
			clear(b.trackers)
			return nil
		case m := <-b.in:
			b.handle(m)
		}
	}
}

func (b *Bridge) handle(m message) {
	if m.end {
		if tr, ok := b.trackers[m.session]; ok {
			if held := tr.Held(); len(held) > 0 {
				b.logger.Debug("session closed with keys held", "id", m.session, "held", len(held))
			}
			delete(b.trackers, m.session)
		}
		return
	}
	tr, ok := b.trackers[m.session]
	if !ok {
		tr = keys.NewTracker()
		b.trackers[m.session] = tr
	}
	ev, ok := tr.Apply(m.t)
	b.logger.Log(context.Background(), log.LevelTrace, "transition",
		"id", m.session, "key", m.t.Key, "down", m.t.Down, "press", ok)
	if !m.t.Down && len(tr.Held()) == 0 {
		delete(b.trackers, m.session)
	}
	if ok {
		b.sink.OnKeyObserved(ev)
	}
}

type session struct {
	b      *Bridge
	id     uint64
	name   string
	closed atomic.Bool
}

func (s *session) Submit(ctx context.Context, t keys.Transition) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return s.b.send(ctx, message{session: s.id, t: t})
}

func (s *session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.b.logger.Debug("session closed", "session", s.name, "id", s.id)
	err := s.b.send(context.Background(), message{session: s.id, end: true})
	if errors.Is(err, ErrStopped) {
		return nil
	}
	return err
}
