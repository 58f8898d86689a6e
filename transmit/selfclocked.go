package transmit

import (
	"errors"

	"github.com/Alia5/viashift/line"
)

// SelfClocked drives its own shift clock and pulses ready after each byte.
type SelfClocked struct {
	progress
	data, clock, ready line.Output
}

// NewSelfClocked takes the Data, Clock and Ready lines of s.
func NewSelfClocked(s *line.Set) (*SelfClocked, error) {
	if err := errors.Join(
		require("data", s.Data != nil),
		require("clock", s.Clock != nil),
		require("ready", s.Ready != nil),
	); err != nil {
		return nil, err
	}
	return &SelfClocked{data: s.Data, clock: s.Clock, ready: s.Ready}, nil
}

// Send shifts b out MSB first, one clock pulse per bit, then clears data and
// pulses ready. The register shifts on the rising clock edge and latches on
// the ready pulse.
func (t *SelfClocked) Send(b byte) error {
	var fe firstError
	for i := 0; i < 8; i++ {
		t.enter(Shifting, i)
		fe.keep(t.data.Set(b&0x80 != 0))
		b <<= 1
		fe.keep(t.clock.Set(true))
		fe.keep(t.clock.Set(false))
	}

	t.enter(Latching, 7)
	fe.keep(t.data.Set(false))
	fe.keep(t.ready.Set(true))
	fe.keep(t.ready.Set(false))

	t.enter(Idle, 0)
	return fe.err
}
