// Package shifter turns observed key presses into bytes on the transmission
// lines.
//
// A Shifter is driven through two calls: OnKeyObserved for every newly
// pressed key and Shutdown once at the end. OnKeyObserved never reports
// errors to its caller; problems are logged and counted in Stats.
package shifter

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/viashift/codetable"
	"github.com/Alia5/viashift/encoder"
	"github.com/Alia5/viashift/internal/log"
	"github.com/Alia5/viashift/keys"
	"github.com/Alia5/viashift/line"
	"github.com/Alia5/viashift/liveness"
	"github.com/Alia5/viashift/transmit"
)

// Mode selects the transmitter variant.
type Mode string

const (
	ModeSelf     Mode = "self"
	ModeExternal Mode = "external"
)

// Config is the shifter flag group.
type Config struct {
	Mode        string        `help:"Clocking mode: self drives clock and ready, external follows a host clock on the sense line" enum:"self,external" default:"self" env:"VIASHIFT_MODE"`
	Modifiers   string        `help:"Modifier scope: held ORs in every held modifier key, key uses only the pressed key's own tags" enum:"held,key" default:"held" env:"VIASHIFT_MODIFIERS"`
	ProbeWindow time.Duration `help:"How long to watch the host clock at startup (external mode)" default:"1500ms" env:"VIASHIFT_PROBE_WINDOW"`
	Morse       string        `help:"Pattern flashed on the data line at startup (self mode), empty to disable" default:"---   -.-" env:"VIASHIFT_MORSE"`
	MorseDit    time.Duration `help:"Morse dit length" default:"100ms" env:"VIASHIFT_MORSE_DIT"`
}

// Options carries the collaborators of a Shifter. Zero values select
// defaults.
type Options struct {
	Logger   *slog.Logger
	Raw      log.RawLogger
	Resolver codetable.Resolver
	Clock    liveness.Clock
}

// Stats is a snapshot of a Shifter's counters.
type Stats struct {
	Mode    Mode
	Enabled bool
	State   transmit.State
	// Sent counts bytes fully shifted out without a line error.
	Sent uint64
	// Unmapped counts presses whose code has no table entry.
	Unmapped uint64
	// Ignored counts modifier and internal key presses.
	Ignored uint64
	// Dropped counts presses discarded while transmission is disabled.
	Dropped uint64
	// Errors counts bytes during which a line write failed.
	Errors   uint64
	LastByte byte
	HasLast  bool
}

// Shifter owns the line set and the transmitter.
type Shifter struct {
	mode   Mode
	scope  encoder.Scope
	logger *slog.Logger
	raw    log.RawLogger
	table  *codetable.Table
	lines  *line.Set
	tx     transmit.Transmitter
	probe  liveness.Result

	mu      sync.Mutex
	stats   Stats
	enabled bool
	closed  bool
}

// New builds the code table and the transmitter for cfg.Mode. In external
// mode it probes the host clock once and disables transmission when the
// clock is not running; this is not an error. In self mode it flashes the
// Morse pattern on the data line.
//
// The Shifter takes ownership of lines, also on error.
func New(cfg Config, lines *line.Set, opts Options) (*Shifter, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Raw == nil {
		opts.Raw = log.NewRaw(nil)
	}
	if opts.Resolver == nil {
		opts.Resolver = keys.Default
	}
	if opts.Clock == nil {
		opts.Clock = liveness.SystemClock
	}

	s := &Shifter{
		mode:    Mode(cfg.Mode),
		scope:   encoder.Scope(cfg.Modifiers),
		logger:  opts.Logger,
		raw:     opts.Raw,
		lines:   lines,
		enabled: true,
	}
	if s.mode == "" {
		s.mode = ModeSelf
	}
	if s.scope == "" {
		s.scope = encoder.ScopeHeld
	}
	s.table = codetable.Build(opts.Resolver, s.logger)

	var err error
	switch s.mode {
	case ModeSelf:
		s.tx, err = transmit.NewSelfClocked(lines)
		if err == nil && cfg.Morse != "" {
			if merr := transmit.Morse(lines.Data, cfg.Morse, cfg.MorseDit, opts.Clock.Sleep); merr != nil {
				s.logger.Warn("morse pattern failed", "error", merr)
			}
		}
	case ModeExternal:
		s.tx, err = transmit.NewSynced(lines)
		if err == nil {
			err = s.probeClock(cfg.ProbeWindow, opts.Clock)
		}
	default:
		err = fmt.Errorf("unknown mode %q", s.mode)
	}
	if err != nil {
		_ = lines.Close()
		return nil, fmt.Errorf("shifter: %w", err)
	}

	s.logger.Info("shifter ready", "mode", s.mode, "modifiers", s.scope, "entries", s.table.Len(), "enabled", s.enabled)
	return s, nil
}

func (s *Shifter) probeClock(window time.Duration, clock liveness.Clock) error {
	m, err := liveness.New(s.lines.Sense, clock)
	if err != nil {
		return err
	}
	if window <= 0 {
		window = m.MinDuration + m.MinDuration/2
	}
	s.probe = m.Measure(window)
	if !s.probe.Active {
		s.enabled = false
		s.logger.Warn("host clock not active, transmission disabled",
			"edges", s.probe.Edges, "elapsed", s.probe.Elapsed)
		return nil
	}
	s.logger.Info("host clock active", "edges", s.probe.Edges, "elapsed", s.probe.Elapsed)
	return nil
}

// OnKeyObserved encodes and transmits one key press. It blocks until the
// byte is fully shifted out. Calls must not overlap.
func (s *Shifter) OnKeyObserved(ev keys.Event) {
	k := ev.Key
	if k.Modifier || k.Internal() {
		s.count(func(st *Stats) { st.Ignored++ })
		return
	}

	s.mu.Lock()
	active := s.enabled && !s.closed
	s.mu.Unlock()
	if !active {
		s.count(func(st *Stats) { st.Dropped++ })
		return
	}

	mask := encoder.ResolveScope(s.scope, ev)
	b, ok := encoder.Encode(k.Code, mask, s.table)
	if !ok {
		s.logger.Warn("no code for key", "key", k, "code", uint16(k.Code))
		s.count(func(st *Stats) { st.Unmapped++ })
		return
	}

	s.logger.Debug("sending byte",
		"key", k, "mask", mask, "byte", fmt.Sprintf("0x%02x", b), "char", encoder.Printable(b))
	err := s.tx.Send(b)
	s.raw.Log(false, []byte{b})

	s.count(func(st *Stats) {
		st.LastByte, st.HasLast = b, true
		if err != nil {
			st.Errors++
		} else {
			st.Sent++
		}
	})
	if err != nil {
		s.logger.Error("line write failed", "byte", fmt.Sprintf("0x%02x", b), "error", err)
	}
}

func (s *Shifter) count(f func(st *Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(&s.stats)
}

// Shutdown releases the lines. Later presses are dropped. It is safe to call
// more than once.
func (s *Shifter) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.lines.Close()
	if err != nil {
		s.logger.Error("release lines", "error", err)
	} else {
		s.logger.Info("lines released")
	}
	return err
}

// Stats returns a snapshot of the counters.
func (s *Shifter) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Mode = s.mode
	st.Enabled = s.enabled && !s.closed
	st.State = s.tx.State()
	return st
}

// Table returns the code table.
func (s *Shifter) Table() *codetable.Table { return s.table }

// Probe returns the startup clock measurement. It is zero in self mode.
func (s *Shifter) Probe() liveness.Result { return s.probe }

// Mode returns the clocking mode.
func (s *Shifter) Mode() Mode { return s.mode }
