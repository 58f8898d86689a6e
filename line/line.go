// Package line abstracts the three single-bit lines the transmitter drives:
// data, clock, and either a ready/latch output or an external clock sense
// input.
package line

import (
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by drivers whose handle has been released.
var ErrClosed = errors.New("line: closed")

// Output is a digital output line.
type Output interface {
	// Set drives the line high (true) or low (false).
	Set(high bool) error
}

// Edge selects a clock transition.
type Edge uint8

const (
	Rising Edge = iota
	Falling
)

func (e Edge) String() string {
	if e == Falling {
		return "falling"
	}
	return "rising"
}

// EdgeCounter counts transitions on an input line. The counts only grow;
// callers remember a mark and compare against it.
type EdgeCounter interface {
	Edges(e Edge) uint64
}

// Since returns the number of e edges observed after mark.
func Since(c EdgeCounter, e Edge, mark uint64) uint64 {
	return c.Edges(e) - mark
}

// Set is the exclusively owned group of transmission lines. Ready is used in
// self-clocked mode, Sense in externally-clocked mode.
type Set struct {
	Data  Output
	Clock Output
	Ready Output
	Sense EdgeCounter

	mu      sync.Mutex
	closers []io.Closer
	closed  bool
}

// Own registers handles released by Close.
func (s *Set) Own(c ...io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, c...)
}

// Close drives the outputs low and releases every owned handle once.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, o := range []Output{s.Data, s.Clock, s.Ready} {
		if o != nil {
			if err := o.Set(false); err != nil && !errors.Is(err, ErrClosed) {
				errs = append(errs, err)
			}
		}
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config selects the driver and the line assignment.
type Config struct {
	Driver     string `help:"Line driver" enum:"gpiocdev,sim" default:"sim" env:"VIASHIFT_LINES_DRIVER"`
	Chip       string `help:"GPIO character device for the gpiocdev driver" default:"gpiochip0" env:"VIASHIFT_LINES_CHIP"`
	Data       int    `help:"Data line offset" default:"13" env:"VIASHIFT_LINES_DATA"`
	Clock      int    `help:"Shift clock line offset" default:"14" env:"VIASHIFT_LINES_CLOCK"`
	Ready      int    `help:"Ready/latch line offset (self-clocked mode)" default:"12" env:"VIASHIFT_LINES_READY"`
	Sense      int    `help:"External clock sense line offset (externally-clocked mode)" default:"11" env:"VIASHIFT_LINES_SENSE"`
	SimClockHz int    `help:"Simulated host clock frequency for the sim driver, 0 for a dead clock" default:"1000" env:"VIASHIFT_LINES_SIM_CLOCK_HZ"`
}
