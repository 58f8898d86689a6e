//go:build linux && !tinygo

package line

import (
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "viashift"

type cdevOutput struct {
	l *gpiocdev.Line
}

func (o cdevOutput) Set(high bool) error {
	v := 0
	if high {
		v = 1
	}
	return o.l.SetValue(v)
}

// cdevSense counts edge events delivered by the kernel for one input line.
type cdevSense struct {
	l       *gpiocdev.Line
	rising  atomic.Uint64
	falling atomic.Uint64
}

func (s *cdevSense) Edges(e Edge) uint64 {
	if e == Falling {
		return s.falling.Load()
	}
	return s.rising.Load()
}

func (s *cdevSense) handle(ev gpiocdev.LineEvent) {
	switch ev.Type {
	case gpiocdev.LineEventRisingEdge:
		s.rising.Add(1)
	case gpiocdev.LineEventFallingEdge:
		s.falling.Add(1)
	}
}

// OpenChip requests the lines on a GPIO character device. Data and Clock are
// always requested; Ready when withReady, Sense (both edges) when withSense.
func OpenChip(cfg Config, withReady, withSense bool) (*Set, error) {
	s := &Set{}
	fail := func(err error) (*Set, error) {
		_ = s.Close()
		return nil, err
	}

	out := func(name string, offset int) (Output, error) {
		l, err := gpiocdev.RequestLine(cfg.Chip, offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
		if err != nil {
			return nil, fmt.Errorf("request %s line %s:%d: %w", name, cfg.Chip, offset, err)
		}
		s.Own(l)
		return cdevOutput{l: l}, nil
	}

	var err error
	if s.Data, err = out("data", cfg.Data); err != nil {
		return fail(err)
	}
	if s.Clock, err = out("clock", cfg.Clock); err != nil {
		return fail(err)
	}
	if withReady {
		if s.Ready, err = out("ready", cfg.Ready); err != nil {
			return fail(err)
		}
	}
	if withSense {
		sense := &cdevSense{}
		l, err := gpiocdev.RequestLine(cfg.Chip, cfg.Sense,
			gpiocdev.AsInput,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(sense.handle),
			gpiocdev.WithConsumer(consumer))
		if err != nil {
			return fail(fmt.Errorf("request sense line %s:%d: %w", cfg.Chip, cfg.Sense, err))
		}
		sense.l = l
		s.Own(l)
		s.Sense = sense
	}
	return s, nil
}
