// Package sim is an in-process stand-in for the receiving hardware: a shift
// register fed by the transmitter's outputs and a free-running host clock on
// the sense line.
package sim

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Alia5/viashift/encoder"
	"github.com/Alia5/viashift/line"
)

// ShiftRegister shifts in data on every rising clock edge. In latched mode a
// rising ready edge publishes the last eight bits, like a 74HC595. Otherwise
// every eighth clock publishes a byte, like a 6522 VIA in external shift mode.
type ShiftRegister struct {
	logger  *slog.Logger
	latched bool

	mu     sync.Mutex
	data   bool
	clock  bool
	ready  bool
	reg    byte
	count  int
	bytes  []byte
	onByte func(b byte)
}

// NewShiftRegister returns an empty register. logger may be nil.
func NewShiftRegister(latched bool, logger *slog.Logger) *ShiftRegister {
	if logger == nil {
		logger = slog.Default()
	}
	return &ShiftRegister{logger: logger, latched: latched}
}

// OnByte registers f to run, unlocked, for every published byte.
func (r *ShiftRegister) OnByte(f func(b byte)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onByte = f
}

// Bytes returns every published byte.
func (r *ShiftRegister) Bytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.bytes...)
}

// Data, Clock and Ready return the register's input pins.
func (r *ShiftRegister) Data() line.Output  { return pin{r, r.setData} }
func (r *ShiftRegister) Clock() line.Output { return pin{r, r.setClock} }
func (r *ShiftRegister) Ready() line.Output { return pin{r, r.setReady} }

type pin struct {
	r   *ShiftRegister
	set func(high bool) (byte, bool)
}

func (p pin) Set(high bool) error {
	p.r.mu.Lock()
	b, ok := p.set(high)
	f := p.r.onByte
	p.r.mu.Unlock()
	if ok {
		p.r.logger.Info("sim received byte", "byte", fmt.Sprintf("0x%02x", b), "char", encoder.Printable(b))
		if f != nil {
			f(b)
		}
	}
	return nil
}

func (r *ShiftRegister) setData(high bool) (byte, bool) {
	r.data = high
	return 0, false
}

func (r *ShiftRegister) setClock(high bool) (byte, bool) {
	rising := high && !r.clock
	r.clock = high
	if !rising {
		return 0, false
	}
	r.reg <<= 1
	if r.data {
		r.reg |= 1
	}
	r.count++
	if !r.latched && r.count == 8 {
		return r.publish(), true
	}
	return 0, false
}

func (r *ShiftRegister) setReady(high bool) (byte, bool) {
	rising := high && !r.ready
	r.ready = high
	if !rising || !r.latched {
		return 0, false
	}
	return r.publish(), true
}

func (r *ShiftRegister) publish() byte {
	b := r.reg
	r.bytes = append(r.bytes, b)
	r.count = 0
	return b
}

// HostClock is a square wave generated by a goroutine. A zero frequency
// produces a dead clock that never has an edge.
type HostClock struct {
	rising  atomic.Uint64
	falling atomic.Uint64

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHostClock starts a clock at hz.
func StartHostClock(hz int) *HostClock {
	c := &HostClock{stop: make(chan struct{}), done: make(chan struct{})}
	if hz <= 0 {
		close(c.done)
		return c
	}
	go c.run(time.Second / time.Duration(2*hz))
	return c
}

func (c *HostClock) run(half time.Duration) {
	defer close(c.done)
	t := time.NewTicker(half)
	defer t.Stop()
	high := false
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			high = !high
			if high {
				c.rising.Add(1)
			} else {
				c.falling.Add(1)
			}
		}
	}
}

// Edges implements line.EdgeCounter.
func (c *HostClock) Edges(e line.Edge) uint64 {
	if e == line.Falling {
		return c.falling.Load()
	}
	return c.rising.Load()
}

// Close stops the clock.
func (c *HostClock) Close() error {
	c.once.Do(func() { close(c.stop) })
	<-c.done
	return nil
}

// Open builds a simulated line set from cfg. External selects the VIA-style
// receiver and a host clock on the sense line; otherwise the register is
// latched by the ready line.
func Open(cfg line.Config, external bool, logger *slog.Logger) (*line.Set, *ShiftRegister) {
	reg := NewShiftRegister(!external, logger)
	set := &line.Set{Data: reg.Data(), Clock: reg.Clock()}
	if external {
		clk := StartHostClock(cfg.SimClockHz)
		set.Sense = clk
		set.Own(clk)
	} else {
		set.Ready = reg.Ready()
	}
	return set, reg
}
