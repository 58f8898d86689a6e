package shifter_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/viashift/internal/sim"
	th "github.com/Alia5/viashift/internal/testing"
	"github.com/Alia5/viashift/keys"
	"github.com/Alia5/viashift/line"
	"github.com/Alia5/viashift/line/linetest"
	"github.com/Alia5/viashift/shifter"
	"github.com/Alia5/viashift/transmit"
)

func press(k keys.Key, held ...keys.Key) keys.Event {
	return keys.Event{Key: k, Held: append(held, k)}
}

var a = keys.Plain(keys.KeyA)

func newSelf(t *testing.T, cfg shifter.Config) (*shifter.Shifter, *sim.ShiftRegister, *th.LogRecorder) {
	t.Helper()
	logger, rec := th.NewLogRecorder()
	reg := sim.NewShiftRegister(true, slog.New(slog.DiscardHandler))
	set := &line.Set{Data: reg.Data(), Clock: reg.Clock(), Ready: reg.Ready()}
	cfg.Mode = "self"
	s, err := shifter.New(cfg, set, shifter.Options{Logger: logger, Clock: linetest.NewFakeClock()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s, reg, rec
}

func TestOnKeyObserved_Encodes(t *testing.T) {
	tests := []struct {
		name  string
		scope string
		ev    keys.Event
		want  byte
	}{
		{"plain a", "held", press(a), 0x61},
		{"shift a", "held", press(a, keys.LeftShift), 0x41},
		{"right shift a", "held", press(a, keys.RightShift), 0x41},
		{"shift ctrl a", "held", press(a, keys.LeftShift, keys.LeftCtrl), 0x01},
		{"ctrl alt a", "held", press(a, keys.LeftCtrl, keys.LeftAlt), 0x81},
		{"cmd a", "held", press(a, keys.RightGUI), 0xE1},
		{"meh a", "held", press(a, keys.Meh), 0x81},
		{"tagged bang", "held", press(keys.Key{Code: keys.Key1, Mods: keys.ModLeftShift}), '!'},
		{"ctrl question mark passes through", "held", press(keys.Key{Code: keys.KeySlash, Mods: keys.ModLeftShift}, keys.LeftCtrl), '?'},
		{"key scope ignores held shift", "key", press(a, keys.LeftShift), 0x61},
		{"key scope uses tags", "key", press(keys.Key{Code: keys.KeyA, Mods: keys.ModLeftShift}), 0x41},
		{"return", "held", press(keys.Plain(keys.KeyReturn)), 0x0D},
		{"clear", "held", press(keys.Plain(keys.KeyClear)), 0x18},
		{"left arrow", "held", press(keys.Plain(keys.KeyLeft)), 0x08},
		{"keypad comma", "held", press(keys.Plain(keys.KeyKpComma)), '='},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, reg, rec := newSelf(t, shifter.Config{Modifiers: tt.scope})

			s.OnKeyObserved(tt.ev)

			assert.Equal(t, []byte{tt.want}, reg.Bytes())
			assert.Empty(t, rec.AtLeast(slog.LevelWarn))
			st := s.Stats()
			assert.Equal(t, uint64(1), st.Sent)
			assert.True(t, st.HasLast)
			assert.Equal(t, tt.want, st.LastByte)
			assert.Equal(t, transmit.Idle, st.State)
		})
	}
}

func TestOnKeyObserved_Unmapped(t *testing.T) {
	s, reg, rec := newSelf(t, shifter.Config{})

	s.OnKeyObserved(press(keys.Plain(keys.KeyF1)))

	assert.Empty(t, reg.Bytes())
	diag := rec.AtLeast(slog.LevelWarn)
	require.Len(t, diag, 1)
	assert.Equal(t, "no code for key", diag[0].Message)
	assert.Equal(t, uint64(1), s.Stats().Unmapped)
}

func TestOnKeyObserved_IgnoresModifiersAndInternal(t *testing.T) {
	s, reg, rec := newSelf(t, shifter.Config{})
	before := len(rec.Records())

	s.OnKeyObserved(press(keys.LeftShift))
	s.OnKeyObserved(press(keys.Hyper))
	s.OnKeyObserved(press(keys.Plain(keys.FirstInternalCode)))
	s.OnKeyObserved(press(keys.Plain(keys.FirstInternalCode + 42)))

	assert.Empty(t, reg.Bytes())
	assert.Len(t, rec.Records(), before)
	assert.Equal(t, uint64(4), s.Stats().Ignored)
}

func TestNew_MorseOnDataLine(t *testing.T) {
	bus := linetest.NewBus()
	set := &line.Set{Data: bus.Output("data"), Clock: bus.Output("clock"), Ready: bus.Output("ready")}
	clock := linetest.NewFakeClock()
	start := clock.Now()

	s, err := shifter.New(shifter.Config{Mode: "self", Morse: "-.", MorseDit: 10 * time.Millisecond},
		set, shifter.Options{Logger: slog.New(slog.DiscardHandler), Clock: clock})
	require.NoError(t, err)
	defer s.Shutdown()

	assert.Equal(t, 2, bus.Pulses("data"))
	assert.Zero(t, bus.Pulses("clock"))
	assert.Zero(t, bus.Pulses("ready"))
	assert.Equal(t, 60*time.Millisecond, clock.Now().Sub(start))
}

func TestOnKeyObserved_LineErrorCounted(t *testing.T) {
	bus := linetest.NewBus()
	ready := bus.Output("ready")
	ready.Err = errors.New("gpio gone")
	set := &line.Set{Data: bus.Output("data"), Clock: bus.Output("clock"), Ready: ready}
	logger, rec := th.NewLogRecorder()

	s, err := shifter.New(shifter.Config{Mode: "self"}, set, shifter.Options{Logger: logger})
	require.NoError(t, err)
	s.OnKeyObserved(press(a))

	assert.Equal(t, 8, bus.Pulses("clock"))
	assert.Equal(t, 1, rec.Count(slog.LevelError, "line write failed"))
	st := s.Stats()
	assert.Equal(t, uint64(1), st.Errors)
	assert.Zero(t, st.Sent)
}

// sumEdges adds a scheduled probe window to a free-running poll clock.
type sumEdges []line.EdgeCounter

func (s sumEdges) Edges(e line.Edge) uint64 {
	var n uint64
	for _, c := range s {
		n += c.Edges(e)
	}
	return n
}

func TestExternal_LiveClock(t *testing.T) {
	clock := linetest.NewFakeClock()
	sense := sumEdges{
		linetest.EdgesAt(clock, 100*time.Millisecond, 300*time.Millisecond, 500*time.Millisecond, 700*time.Millisecond, 900*time.Millisecond),
		linetest.NewHostClock(),
	}
	reg := sim.NewShiftRegister(false, slog.New(slog.DiscardHandler))
	set := &line.Set{Data: reg.Data(), Clock: reg.Clock(), Sense: sense}
	logger, rec := th.NewLogRecorder()

	s, err := shifter.New(shifter.Config{Mode: "external", ProbeWindow: 1500 * time.Millisecond},
		set, shifter.Options{Logger: logger, Clock: clock})
	require.NoError(t, err)
	defer s.Shutdown()

	assert.True(t, s.Probe().Active)
	assert.True(t, s.Stats().Enabled)
	assert.Equal(t, 1, rec.Count(slog.LevelInfo, "host clock active"))

	s.OnKeyObserved(press(a, keys.LeftShift))
	s.OnKeyObserved(press(keys.Plain(keys.KeyEnter)))
	assert.Equal(t, []byte{0x41, 0x0D}, reg.Bytes())
}

func TestExternal_DeadClockDisables(t *testing.T) {
	bus := linetest.NewBus()
	set := &line.Set{Data: bus.Output("data"), Clock: bus.Output("clock"), Sense: linetest.StoppedClock()}
	logger, rec := th.NewLogRecorder()

	s, err := shifter.New(shifter.Config{Mode: "external", ProbeWindow: 1500 * time.Millisecond},
		set, shifter.Options{Logger: logger, Clock: linetest.NewFakeClock()})
	require.NoError(t, err)
	defer s.Shutdown()

	assert.False(t, s.Probe().Active)
	warnings := rec.AtLeast(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, "host clock not active, transmission disabled", warnings[0].Message)

	before := len(bus.Changes())
	s.OnKeyObserved(press(a))
	s.OnKeyObserved(press(keys.Plain(keys.KeyF1)))
	assert.Len(t, bus.Changes(), before)
	assert.Len(t, rec.AtLeast(slog.LevelWarn), 1)

	st := s.Stats()
	assert.False(t, st.Enabled)
	assert.Equal(t, uint64(2), st.Dropped)
}

func TestExternal_FewEdgesInShortWindow(t *testing.T) {
	clock := linetest.NewFakeClock()
	sense := linetest.EdgesAt(clock, 10*time.Millisecond, 20*time.Millisecond, 30*time.Millisecond, 40*time.Millisecond)
	bus := linetest.NewBus()
	set := &line.Set{Data: bus.Output("data"), Clock: bus.Output("clock"), Sense: sense}

	s, err := shifter.New(shifter.Config{Mode: "external", ProbeWindow: 500 * time.Millisecond},
		set, shifter.Options{Logger: slog.New(slog.DiscardHandler), Clock: clock})
	require.NoError(t, err)
	defer s.Shutdown()

	assert.Equal(t, uint64(4), s.Probe().Edges)
	assert.False(t, s.Probe().Active)
}

func TestNew_MissingSense(t *testing.T) {
	bus := linetest.NewBus()
	set := &line.Set{Data: bus.Output("data"), Clock: bus.Output("clock")}
	_, err := shifter.New(shifter.Config{Mode: "external"}, set, shifter.Options{Logger: slog.New(slog.DiscardHandler)})
	assert.Error(t, err)
}

func TestShutdown(t *testing.T) {
	bus := linetest.NewBus()
	set := &line.Set{Data: bus.Output("data"), Clock: bus.Output("clock"), Ready: bus.Output("ready")}
	s, err := shifter.New(shifter.Config{Mode: "self"}, set, shifter.Options{Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)

	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())
	assert.False(t, bus.Level("data"))

	before := len(bus.Changes())
	s.OnKeyObserved(press(a))
	assert.Len(t, bus.Changes(), before)
	assert.False(t, s.Stats().Enabled)
}
