// Package linetest provides deterministic line fakes for tests.
package linetest

import (
	"slices"
	"sync"
	"time"

	"github.com/Alia5/viashift/line"
)

// Change is one recorded output transition.
type Change struct {
	Line string
	High bool
}

// Bus records the writes of every Recorder attached to it, in order.
type Bus struct {
	mu      sync.Mutex
	changes []Change
	levels  map[string]bool
	onSet   []func(name string, high bool)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{levels: make(map[string]bool)}
}

// Output returns a Recorder named name attached to the bus.
func (b *Bus) Output(name string) *Recorder {
	return &Recorder{name: name, bus: b}
}

// OnSet registers f to run after every write, with the bus unlocked.
func (b *Bus) OnSet(f func(name string, high bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onSet = append(b.onSet, f)
}

// Changes returns a copy of the recorded writes.
func (b *Bus) Changes() []Change {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Change(nil), b.changes...)
}

// Level returns the last value written to name.
func (b *Bus) Level(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.levels[name]
}

// Pulses returns how many low-to-high transitions name saw.
func (b *Bus) Pulses(name string) int {
	n := 0
	prev := false
	for _, c := range b.Changes() {
		if c.Line != name {
			continue
		}
		if c.High && !prev {
			n++
		}
		prev = c.High
	}
	return n
}

func (b *Bus) record(name string, high bool) {
	b.mu.Lock()
	b.changes = append(b.changes, Change{Line: name, High: high})
	b.levels[name] = high
	hooks := slices.Clone(b.onSet)
	b.mu.Unlock()
	for _, f := range hooks {
		f(name, high)
	}
}

// Recorder is a line.Output that records into its Bus.
type Recorder struct {
	name string
	bus  *Bus
	// Err, when set, is returned by every Set after recording the write.
	Err error
}

func (r *Recorder) Set(high bool) error {
	r.bus.record(r.name, high)
	return r.Err
}

// HostClock is a free-running square wave that advances half a period each
// time it is polled, so busy-wait loops make progress without real time.
// A stopped clock never produces edges.
type HostClock struct {
	mu      sync.Mutex
	high    bool
	stopped bool
	rising  uint64
	falling uint64
	polls   int
	onEdge  func(e line.Edge)
}

// NewHostClock returns a running clock, initially low.
func NewHostClock() *HostClock { return &HostClock{} }

// StoppedClock returns a clock that never moves.
func StoppedClock() *HostClock { return &HostClock{stopped: true} }

// OnEdge registers f to run on every generated edge.
func (c *HostClock) OnEdge(f func(e line.Edge)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEdge = f
}

// Stop freezes the clock.
func (c *HostClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

// Polls returns how many times Edges was called.
func (c *HostClock) Polls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls
}

// Edges implements line.EdgeCounter.
func (c *HostClock) Edges(e line.Edge) uint64 {
	c.mu.Lock()
	c.polls++
	var hook func(line.Edge)
	var fired line.Edge
	if !c.stopped {
		c.high = !c.high
		if c.high {
			c.rising++
			fired = line.Rising
		} else {
			c.falling++
			fired = line.Falling
		}
		hook = c.onEdge
	}
	n := c.rising
	if e == line.Falling {
		n = c.falling
	}
	c.mu.Unlock()
	if hook != nil {
		hook(fired)
	}
	return n
}

// FakeClock is a manual time source. Sleep advances it.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a clock starting at an arbitrary fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ScheduledEdges reports falling and rising edges at fixed offsets from the
// fake clock's start, one full cycle per offset.
type ScheduledEdges struct {
	clock *FakeClock
	start time.Time
	at    []time.Duration
}

// EdgesAt returns an edge counter producing one edge of each kind at every
// offset in at, measured from clock's current time.
func EdgesAt(clock *FakeClock, at ...time.Duration) *ScheduledEdges {
	return &ScheduledEdges{clock: clock, start: clock.Now(), at: at}
}

func (s *ScheduledEdges) Edges(line.Edge) uint64 {
	elapsed := s.clock.Now().Sub(s.start)
	var n uint64
	for _, t := range s.at {
		if t <= elapsed {
			n++
		}
	}
	return n
}
