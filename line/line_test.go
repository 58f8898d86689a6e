package line_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/viashift/line"
	"github.com/Alia5/viashift/line/linetest"
)

type closer struct {
	name  string
	order *[]string
	err   error
}

func (c *closer) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestSet_Close(t *testing.T) {
	bus := linetest.NewBus()
	data, clk, ready := bus.Output("data"), bus.Output("clock"), bus.Output("ready")
	a := assert.New(t)

	a.NoError(data.Set(true))
	a.NoError(ready.Set(true))

	var order []string
	s := &line.Set{Data: data, Clock: clk, Ready: ready}
	s.Own(&closer{name: "chip", order: &order}, &closer{name: "lines", order: &order})

	a.NoError(s.Close())
	a.False(bus.Level("data"))
	a.False(bus.Level("clock"))
	a.False(bus.Level("ready"))
	a.Equal([]string{"lines", "chip"}, order)

	writes := len(bus.Changes())
	a.NoError(s.Close())
	a.Len(bus.Changes(), writes)
	a.Equal([]string{"lines", "chip"}, order)
}

func TestSet_CloseJoinsErrors(t *testing.T) {
	bus := linetest.NewBus()
	data := bus.Output("data")
	data.Err = errors.New("stuck")
	closedClock := bus.Output("clock")
	closedClock.Err = line.ErrClosed

	var order []string
	boom := errors.New("release failed")
	s := &line.Set{Data: data, Clock: closedClock}
	s.Own(&closer{name: "chip", order: &order, err: boom})

	err := s.Close()
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "stuck")
	assert.NotErrorIs(t, err, line.ErrClosed)
	assert.Equal(t, []string{"chip"}, order)
}

func TestSince(t *testing.T) {
	c := linetest.NewHostClock()
	mark := c.Edges(line.Falling)
	for i := 0; i < 6; i++ {
		c.Edges(line.Rising)
	}
	// Since polls once more, which toggles the clock low again.
	assert.Equal(t, uint64(4), line.Since(c, line.Falling, mark))
	assert.Equal(t, "falling", line.Falling.String())
	assert.Equal(t, "rising", line.Rising.String())
}
