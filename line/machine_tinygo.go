//go:build tinygo

package line

import (
	"machine"
	"sync/atomic"
)

type machineOutput machine.Pin

func (o machineOutput) Set(high bool) error {
	machine.Pin(o).Set(high)
	return nil
}

type machineSense struct {
	pin     machine.Pin
	rising  atomic.Uint64
	falling atomic.Uint64
}

func (s *machineSense) Edges(e Edge) uint64 {
	if e == Falling {
		return s.falling.Load()
	}
	return s.rising.Load()
}

func (s *machineSense) interrupt(p machine.Pin) {
	if p.Get() {
		s.rising.Add(1)
	} else {
		s.falling.Add(1)
	}
}

// OpenPins configures MCU pins as a line set. Sense counts both edges with a
// pin change interrupt.
func OpenPins(data, clock, ready, sense machine.Pin, withReady, withSense bool) (*Set, error) {
	s := &Set{}
	for _, p := range []machine.Pin{data, clock} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}
	s.Data = machineOutput(data)
	s.Clock = machineOutput(clock)
	if withReady {
		ready.Configure(machine.PinConfig{Mode: machine.PinOutput})
		ready.Low()
		s.Ready = machineOutput(ready)
	}
	if withSense {
		ms := &machineSense{pin: sense}
		sense.Configure(machine.PinConfig{Mode: machine.PinInput})
		if err := sense.SetInterrupt(machine.PinToggle, ms.interrupt); err != nil {
			return nil, err
		}
		s.Sense = ms
	}
	return s, nil
}
