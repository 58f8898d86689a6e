package transmit

import (
	"errors"
	"runtime"

	"github.com/Alia5/viashift/line"
)

// Synced aligns every bit to the rising edge of an external clock on the
// sense line. The host samples on its own falling edge; waiting for the
// rising edge keeps our clock transition half a cycle away from it.
//
// There is no timeout: a clock that stops mid-byte blocks Send forever.
// Probe the clock before enabling a Synced transmitter.
type Synced struct {
	progress
	data, clock line.Output
	sense       line.EdgeCounter
}

// NewSynced takes the Data, Clock and Sense lines of s.
func NewSynced(s *line.Set) (*Synced, error) {
	if err := errors.Join(
		require("data", s.Data != nil),
		require("clock", s.Clock != nil),
		require("sense", s.Sense != nil),
	); err != nil {
		return nil, err
	}
	return &Synced{data: s.Data, clock: s.Clock, sense: s.Sense}, nil
}

// Send shifts b out MSB first. For each bit it sets data, waits for a rising
// host edge, raises the clock, waits two more rising edges so the receiver
// has latched, and drops the clock.
func (t *Synced) Send(b byte) error {
	var fe firstError
	for i := 0; i < 8; i++ {
		t.enter(Shifting, i)
		fe.keep(t.data.Set(b&0x80 != 0))
		b <<= 1

		t.await(1)
		fe.keep(t.clock.Set(true))
		t.await(2)
		fe.keep(t.clock.Set(false))
	}

	t.enter(Latching, 7)
	fe.keep(t.data.Set(false))

	t.enter(Idle, 0)
	return fe.err
}

func (t *Synced) await(n uint64) {
	mark := t.sense.Edges(line.Rising)
	for line.Since(t.sense, line.Rising, mark) < n {
		runtime.Gosched()
	}
}
