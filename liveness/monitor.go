// Package liveness decides once whether an external clock is running.
package liveness

import (
	"errors"
	"time"

	"github.com/Alia5/viashift/line"
)

// ErrNoSense is returned when the line set has no sense input.
var ErrNoSense = errors.New("liveness: no sense line")

// Defaults for Monitor.
const (
	DefaultMinDuration = time.Second
	DefaultMinEdges    = 3
	DefaultPoll        = time.Millisecond
)

// Clock is the time source of a probe.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock uses the time package.
var SystemClock Clock = systemClock{}

// Result describes one probe.
type Result struct {
	Active  bool
	Edges   uint64
	Elapsed time.Duration
}

// Monitor samples falling edges on the sense line.
type Monitor struct {
	sense line.EdgeCounter
	clock Clock

	// MinDuration must be exceeded by the elapsed probe time.
	MinDuration time.Duration
	// MinEdges must be exceeded by the edge count.
	MinEdges uint64
	// Poll is the sleep between samples.
	Poll time.Duration
}

// New returns a monitor with the default thresholds. A nil clock means
// SystemClock.
func New(sense line.EdgeCounter, clock Clock) (*Monitor, error) {
	if sense == nil {
		return nil, ErrNoSense
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Monitor{
		sense:       sense,
		clock:       clock,
		MinDuration: DefaultMinDuration,
		MinEdges:    DefaultMinEdges,
		Poll:        DefaultPoll,
	}, nil
}

// Measure counts falling edges for window and classifies the clock.
func (m *Monitor) Measure(window time.Duration) Result {
	poll := m.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}
	start := m.clock.Now()
	mark := m.sense.Edges(line.Falling)
	for m.clock.Now().Sub(start) < window {
		m.clock.Sleep(poll)
	}
	r := Result{
		Edges:   line.Since(m.sense, line.Falling, mark),
		Elapsed: m.clock.Now().Sub(start),
	}
	r.Active = r.Elapsed > m.MinDuration && r.Edges > m.MinEdges
	return r
}

// Probe reports whether the clock is active.
func (m *Monitor) Probe(window time.Duration) bool {
	return m.Measure(window).Active
}
