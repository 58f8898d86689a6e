// Package transmit shifts bytes out MSB first over the data and clock lines.
//
// Two variants exist. SelfClocked generates its own shift clock and finishes
// every byte with a ready pulse, which makes a 74HC595 style register move the
// byte to its outputs. Synced phase-aligns every bit to a host's free-running
// clock, as a 6522 VIA shift register expects.
//
// Neither variant can abort a byte: all eight bits are always driven.
package transmit

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// State is the transmitter's position in a byte.
type State int32

const (
	Idle State = iota
	Shifting
	Latching
)

func (s State) String() string {
	switch s {
	case Shifting:
		return "shifting"
	case Latching:
		return "latching"
	default:
		return "idle"
	}
}

// Transmitter sends one byte at a time. Send must not be called concurrently.
type Transmitter interface {
	Send(b byte) error
	State() State
}

// progress tracks state for observers on other goroutines.
type progress struct {
	state atomic.Int32
	bit   atomic.Int32
}

func (p *progress) State() State { return State(p.state.Load()) }

// Bit returns the index of the bit being shifted, 0 for the MSB.
func (p *progress) Bit() int { return int(p.bit.Load()) }

func (p *progress) enter(s State, bit int) {
	p.bit.Store(int32(bit))
	p.state.Store(int32(s))
}

// firstError keeps the first failure of a byte without stopping it.
type firstError struct {
	err error
}

func (f *firstError) keep(err error) {
	if err != nil && f.err == nil {
		f.err = err
	}
}

var errMissingLine = errors.New("transmit: missing line")

func require(name string, ok bool) error {
	if !ok {
		return fmt.Errorf("%w: %s", errMissingLine, name)
	}
	return nil
}
